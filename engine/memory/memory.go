// Package memory provides a pure-Go engine for magickit.
//
// It follows the libmagic calling conventions (NULL and -1 failures, a per-handle
// last-error slot, errno on open) over a small rule format, and records every
// open and close so tests can check that handles are released exactly once.
// Faults can be injected to exercise error paths and API-contract violations.
//
// It is not a replacement for libmagic's matcher: rules are fixed byte sequences
// at fixed offsets.
package memory

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/gobeaver/magickit/native"
)

// DefaultVersion is reported by Version when Config.Version is zero.
const DefaultVersion = 545

// handle is the state behind one native.Handle.
type handle struct {
	flags  int
	rules  []Rule
	loaded bool

	// last-error slot
	hasErr bool
	errMsg string
	errno  syscall.Errno
}

func (h *handle) reset() {
	h.hasErr = false
	h.errMsg = ""
	h.errno = 0
}

func (h *handle) fail(errno syscall.Errno, format string, args ...any) {
	h.hasErr = true
	h.errMsg = fmt.Sprintf(format, args...)
	h.errno = errno
}

// Stats counts handle lifecycle events
type Stats struct {
	Opens         int
	Closes        int
	DoubleCloses  int
	UseAfterClose int
}

// Live returns the number of handles opened but not closed
func (s Stats) Live() int {
	return s.Opens - s.Closes
}

// Config holds configuration for the memory engine
type Config struct {
	// UnsupportedFlags are rejected with EINVAL by Open and SetFlags.
	UnsupportedFlags int

	// Version is reported by Version (DefaultVersion if zero).
	Version int

	// ListOutput receives List output (discarded if nil).
	ListOutput io.Writer
}

// Library implements native.Library in memory
type Library struct {
	mu      sync.Mutex
	cfg     Config
	next    native.Handle
	handles map[native.Handle]*handle
	closed  map[native.Handle]bool
	stats   Stats

	openErr error
	silent  map[string]bool
	bogus   map[string]int
}

var _ native.Library = (*Library)(nil)

// New creates a new memory engine
func New(cfg ...Config) *Library {
	l := &Library{
		handles: make(map[native.Handle]*handle),
		closed:  make(map[native.Handle]bool),
		silent:  make(map[string]bool),
		bogus:   make(map[string]int),
	}
	if len(cfg) > 0 {
		l.cfg = cfg[0]
	}
	if l.cfg.Version == 0 {
		l.cfg.Version = DefaultVersion
	}
	if l.cfg.ListOutput == nil {
		l.cfg.ListOutput = io.Discard
	}
	return l
}

// Stats returns a snapshot of the lifecycle counters
func (l *Library) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// FailOpen makes every following Open fail with err; nil restores Open.
func (l *Library) FailOpen(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.openErr = err
}

// FailSilently makes function (a native.Func* name) signal failure without
// filling the last-error slot, a contract violation.
func (l *Library) FailSilently(function string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.silent[function] = true
}

// ReturnCode makes an int-returning function return code instead of its result,
// used to simulate undocumented return values.
func (l *Library) ReturnCode(function string, code int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bogus[function] = code
}

// Open implements native.Library
func (l *Library) Open(flags int) (native.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.openErr != nil {
		return 0, l.openErr
	}
	if flags&l.cfg.UnsupportedFlags != 0 {
		return 0, syscall.EINVAL
	}

	l.next++
	l.handles[l.next] = &handle{flags: flags}
	l.stats.Opens++
	return l.next, nil
}

// Close implements native.Library
func (l *Library) Close(h native.Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.handles[h]; !ok {
		if l.closed[h] {
			l.stats.DoubleCloses++
		}
		return
	}
	delete(l.handles, h)
	l.closed[h] = true
	l.stats.Closes++
}

// Version implements native.Library
func (l *Library) Version() int {
	return l.cfg.Version
}

// Error implements native.Library
func (l *Library) Error(h native.Handle) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	hd, ok := l.handles[h]
	if !ok || !hd.hasErr {
		return "", false
	}
	return hd.errMsg, true
}

// Errno implements native.Library
func (l *Library) Errno(h native.Handle) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	hd, ok := l.handles[h]
	if !ok {
		return 0
	}
	return int(hd.errno)
}

// SetFlags implements native.Library
func (l *Library) SetFlags(h native.Handle, flags int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	hd, ok := l.lookup(h)
	if !ok {
		return native.Fail, syscall.EBADF
	}
	if code, ok := l.bogus[native.FuncSetFlags]; ok {
		return code, nil
	}
	if flags&l.cfg.UnsupportedFlags != 0 {
		return native.Fail, syscall.EINVAL
	}
	hd.flags = flags
	return native.OK, nil
}

// Load implements native.Library
func (l *Library) Load(h native.Handle, filenames *string) int {
	return l.withHandle(native.FuncLoad, h, func(hd *handle) bool {
		// libmagic frees the loaded sets before reading the new ones
		hd.rules, hd.loaded = nil, false
		rules, ok := l.readDatabases(hd, filenames)
		if !ok {
			return false
		}
		hd.rules, hd.loaded = rules, true
		return true
	})
}

// LoadBuffers implements native.Library
func (l *Library) LoadBuffers(h native.Handle, buffers [][]byte) int {
	return l.withHandle(native.FuncLoadBuffers, h, func(hd *handle) bool {
		hd.rules, hd.loaded = nil, false
		var rules []Rule
		for i, buf := range buffers {
			parsed, err := ParseRules(buf)
			if err != nil {
				hd.fail(0, "buffer %d: %v", i, err)
				return false
			}
			rules = append(rules, parsed...)
		}
		hd.rules, hd.loaded = rules, true
		return true
	})
}

// Check implements native.Library
func (l *Library) Check(h native.Handle, filenames *string) int {
	return l.withHandle(native.FuncCheck, h, func(hd *handle) bool {
		_, ok := l.readDatabases(hd, filenames)
		return ok
	})
}

// Compile implements native.Library. Like libmagic it writes <base>.mgc for each
// source into the working directory.
func (l *Library) Compile(h native.Handle, filenames *string) int {
	return l.withHandle(native.FuncCompile, h, func(hd *handle) bool {
		if filenames == nil {
			hd.fail(syscall.EINVAL, "no magic files to compile")
			return false
		}
		for _, name := range splitList(*filenames) {
			rules, ok := l.readDatabase(hd, name)
			if !ok {
				return false
			}
			out := filepath.Base(name) + ".mgc"
			if err := os.WriteFile(out, CompileRules(rules), 0o644); err != nil {
				hd.fail(errnoOf(err), "cannot open `%s' (%v)", out, err)
				return false
			}
		}
		return true
	})
}

// List implements native.Library
func (l *Library) List(h native.Handle, filenames *string) int {
	return l.withHandle(native.FuncList, h, func(hd *handle) bool {
		rules, ok := l.readDatabases(hd, filenames)
		if !ok {
			return false
		}
		if _, err := l.cfg.ListOutput.Write(FormatRules(rules)); err != nil {
			hd.fail(errnoOf(err), "list: %v", err)
			return false
		}
		return true
	})
}

// File implements native.Library
func (l *Library) File(h native.Handle, filename string) (string, bool) {
	var res string
	ret := l.withHandle(native.FuncFile, h, func(hd *handle) bool {
		if !hd.loaded {
			hd.fail(0, "no magic files loaded")
			return false
		}

		info, err := os.Lstat(filename)
		if err == nil && info.Mode()&fs.ModeSymlink != 0 && hd.flags&flagSymlink != 0 {
			info, err = os.Stat(filename)
		}
		if err != nil {
			if hd.flags&flagError != 0 {
				hd.fail(errnoOf(err), "cannot stat `%s' (%s)", filename, reason(err))
				return false
			}
			res = fmt.Sprintf("cannot open `%s' (%s)", filename, reason(err))
			return true
		}

		switch {
		case info.IsDir():
			res = special(hd.flags, "directory", "inode/directory")
			return true
		case info.Mode()&fs.ModeSymlink != 0:
			target, _ := os.Readlink(filename)
			res = special(hd.flags, "symbolic link to "+target, "inode/symlink")
			return true
		case !info.Mode().IsRegular():
			res = special(hd.flags, "special", "inode/x-special")
			return true
		}

		data, err := os.ReadFile(filename)
		if err != nil {
			hd.fail(errnoOf(err), "cannot read `%s' (%s)", filename, reason(err))
			return false
		}
		res = render(classify(hd.rules, data, hd.flags), hd.flags)
		return true
	})
	return res, ret == native.OK
}

// Buffer implements native.Library
func (l *Library) Buffer(h native.Handle, data []byte) (string, bool) {
	var res string
	ret := l.withHandle(native.FuncBuffer, h, func(hd *handle) bool {
		if !hd.loaded {
			hd.fail(0, "no magic files loaded")
			return false
		}
		res = render(classify(hd.rules, data, hd.flags), hd.flags)
		return true
	})
	return res, ret == native.OK
}

// withHandle runs op on a live handle with a cleared last-error slot and turns
// the outcome into a libmagic return code, applying injected faults.
func (l *Library) withHandle(function string, h native.Handle, op func(hd *handle) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	hd, ok := l.lookup(h)
	if !ok {
		return native.Fail
	}
	hd.reset()

	if code, ok := l.bogus[function]; ok {
		return code
	}
	if l.silent[function] {
		return native.Fail
	}
	if !op(hd) {
		return native.Fail
	}
	return native.OK
}

func (l *Library) lookup(h native.Handle) (*handle, bool) {
	hd, ok := l.handles[h]
	if !ok {
		l.stats.UseAfterClose++
	}
	return hd, ok
}

func (l *Library) readDatabases(hd *handle, filenames *string) ([]Rule, bool) {
	if filenames == nil {
		return defaultRules, true
	}
	var rules []Rule
	for _, name := range splitList(*filenames) {
		parsed, ok := l.readDatabase(hd, name)
		if !ok {
			return nil, false
		}
		rules = append(rules, parsed...)
	}
	return rules, true
}

func (l *Library) readDatabase(hd *handle, name string) ([]Rule, bool) {
	data, err := os.ReadFile(name)
	if err != nil {
		hd.fail(errnoOf(err), "could not find any valid magic files! (%s: %s)", name, reason(err))
		return nil, false
	}
	rules, err := ParseRules(data)
	if err != nil {
		hd.fail(0, "%s, %v", name, err)
		return nil, false
	}
	return rules, true
}

func splitList(filenames string) []string {
	return strings.Split(filenames, string(os.PathListSeparator))
}

func special(flags int, description, mime string) string {
	switch {
	case flags&flagMIME == flagMIME:
		return mime + "; charset=binary"
	case flags&flagMIMEType != 0:
		return mime
	case flags&flagMIMEEncoding != 0:
		return "binary"
	default:
		return description
	}
}

func errnoOf(err error) syscall.Errno {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return 0
}

func reason(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	if errno := errnoOf(err); errno != 0 {
		// strerror style, capitalized as libmagic prints it
		msg := errno.Error()
		return strings.ToUpper(msg[:1]) + msg[1:]
	}
	return err.Error()
}
