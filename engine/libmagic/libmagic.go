//go:build cgo

package libmagic

/*
#cgo LDFLAGS: -lmagic
#include <stdlib.h>
#include <magic.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/gobeaver/magickit/native"
)

// cookie is one magic_t and the C copies of the buffers it was loaded from.
// magic_load_buffers keeps pointing into those buffers, so they live until the
// next successful load or close.
type cookie struct {
	magic   C.magic_t
	buffers []unsafe.Pointer
}

func (c *cookie) freeBuffers() {
	for _, p := range c.buffers {
		C.free(p)
	}
	c.buffers = nil
}

// Library implements native.Library on top of the system libmagic. Handles are
// keys into a table of magic_t values; no C pointer leaves this package.
type Library struct {
	mu      sync.Mutex
	next    native.Handle
	cookies map[native.Handle]*cookie
}

var _ native.Library = (*Library)(nil)

// New creates a libmagic engine
func New() *Library {
	return &Library{cookies: make(map[native.Handle]*cookie)}
}

func (l *Library) lookup(h native.Handle) *cookie {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cookies[h]
}

// Open implements native.Library
func (l *Library) Open(flags int) (native.Handle, error) {
	m, err := C.magic_open(C.int(flags))
	if m == nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.cookies[l.next] = &cookie{magic: m}
	return l.next, nil
}

// Close implements native.Library
func (l *Library) Close(h native.Handle) {
	l.mu.Lock()
	c, ok := l.cookies[h]
	delete(l.cookies, h)
	l.mu.Unlock()

	if !ok {
		return
	}
	C.magic_close(c.magic)
	c.freeBuffers()
}

// Version implements native.Library
func (l *Library) Version() int {
	return int(C.magic_version())
}

// Error implements native.Library
func (l *Library) Error(h native.Handle) (string, bool) {
	c := l.lookup(h)
	if c == nil {
		return "", false
	}
	msg := C.magic_error(c.magic)
	if msg == nil {
		return "", false
	}
	return C.GoString(msg), true
}

// Errno implements native.Library
func (l *Library) Errno(h native.Handle) int {
	c := l.lookup(h)
	if c == nil {
		return 0
	}
	return int(C.magic_errno(c.magic))
}

// SetFlags implements native.Library
func (l *Library) SetFlags(h native.Handle, flags int) (int, error) {
	c := l.lookup(h)
	if c == nil {
		return native.Fail, nil
	}
	ret, err := C.magic_setflags(c.magic, C.int(flags))
	if ret == native.Fail {
		return native.Fail, err
	}
	return int(ret), nil
}

// Load implements native.Library
func (l *Library) Load(h native.Handle, filenames *string) int {
	return l.withPaths(h, filenames, func(m C.magic_t, name *C.char) C.int {
		return C.magic_load(m, name)
	}, true)
}

// Check implements native.Library
func (l *Library) Check(h native.Handle, filenames *string) int {
	return l.withPaths(h, filenames, func(m C.magic_t, name *C.char) C.int {
		return C.magic_check(m, name)
	}, false)
}

// Compile implements native.Library
func (l *Library) Compile(h native.Handle, filenames *string) int {
	return l.withPaths(h, filenames, func(m C.magic_t, name *C.char) C.int {
		return C.magic_compile(m, name)
	}, false)
}

// List implements native.Library
func (l *Library) List(h native.Handle, filenames *string) int {
	return l.withPaths(h, filenames, func(m C.magic_t, name *C.char) C.int {
		return C.magic_list(m, name)
	}, false)
}

func (l *Library) withPaths(h native.Handle, filenames *string, call func(C.magic_t, *C.char) C.int, replaces bool) int {
	c := l.lookup(h)
	if c == nil {
		return native.Fail
	}

	var name *C.char
	if filenames != nil {
		name = C.CString(*filenames)
		defer C.free(unsafe.Pointer(name))
	}

	ret := int(call(c.magic, name))
	if replaces && ret == native.OK {
		// the new database no longer references earlier buffers
		c.freeBuffers()
	}
	return ret
}

// LoadBuffers implements native.Library
func (l *Library) LoadBuffers(h native.Handle, buffers [][]byte) int {
	c := l.lookup(h)
	if c == nil {
		return native.Fail
	}

	n := len(buffers)
	// arrays of pointers and sizes for the call; libmagic keeps the buffers,
	// not the arrays
	ptrsC := C.malloc(C.size_t(max(n, 1)) * C.size_t(unsafe.Sizeof(unsafe.Pointer(nil))))
	defer C.free(ptrsC)
	sizesC := C.malloc(C.size_t(max(n, 1)) * C.size_t(unsafe.Sizeof(C.size_t(0))))
	defer C.free(sizesC)
	ptrs := unsafe.Slice((*unsafe.Pointer)(ptrsC), n)
	sizes := unsafe.Slice((*C.size_t)(sizesC), n)

	copies := make([]unsafe.Pointer, 0, n)
	for i, buf := range buffers {
		p := C.malloc(C.size_t(max(len(buf), 1)))
		if len(buf) > 0 {
			copy(unsafe.Slice((*byte)(p), len(buf)), buf)
		}
		copies = append(copies, p)
		ptrs[i] = p
		sizes[i] = C.size_t(len(buf))
	}

	ret := int(C.magic_load_buffers(c.magic, (*unsafe.Pointer)(ptrsC), (*C.size_t)(sizesC), C.size_t(n)))
	if ret != native.OK {
		for _, p := range copies {
			C.free(p)
		}
		return ret
	}
	c.freeBuffers()
	c.buffers = copies
	return ret
}

// File implements native.Library
func (l *Library) File(h native.Handle, filename string) (string, bool) {
	c := l.lookup(h)
	if c == nil {
		return "", false
	}

	name := C.CString(filename)
	defer C.free(unsafe.Pointer(name))

	res := C.magic_file(c.magic, name)
	if res == nil {
		return "", false
	}
	return C.GoString(res), true
}

// empty backs magic_buffer calls with no data; libmagic rejects a NULL buffer.
var empty = C.malloc(1)

// Buffer implements native.Library
func (l *Library) Buffer(h native.Handle, data []byte) (string, bool) {
	c := l.lookup(h)
	if c == nil {
		return "", false
	}

	var res *C.char
	if len(data) == 0 {
		res = C.magic_buffer(c.magic, empty, 0)
	} else {
		res = C.magic_buffer(c.magic, unsafe.Pointer(&data[0]), C.size_t(len(data)))
	}
	if res == nil {
		return "", false
	}
	return C.GoString(res), true
}
