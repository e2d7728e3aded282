package native

import (
	"errors"
	"strings"
	"syscall"
	"testing"
)

// stubLibrary returns fixed results and records closes.
type stubLibrary struct {
	openHandle Handle
	openErr    error
	ret        int
	result     string
	ok         bool
	errMsg     string
	hasErr     bool
	errno      int
	closed     []Handle
}

func (s *stubLibrary) Open(int) (Handle, error)             { return s.openHandle, s.openErr }
func (s *stubLibrary) Close(h Handle)                       { s.closed = append(s.closed, h) }
func (s *stubLibrary) Load(Handle, *string) int             { return s.ret }
func (s *stubLibrary) LoadBuffers(Handle, [][]byte) int     { return s.ret }
func (s *stubLibrary) File(Handle, string) (string, bool)   { return s.result, s.ok }
func (s *stubLibrary) Buffer(Handle, []byte) (string, bool) { return s.result, s.ok }
func (s *stubLibrary) SetFlags(Handle, int) (int, error)    { return s.ret, syscall.Errno(s.errno) }
func (s *stubLibrary) Check(Handle, *string) int            { return s.ret }
func (s *stubLibrary) Compile(Handle, *string) int          { return s.ret }
func (s *stubLibrary) List(Handle, *string) int             { return s.ret }
func (s *stubLibrary) Version() int                         { return 545 }
func (s *stubLibrary) Error(Handle) (string, bool)          { return s.errMsg, s.hasErr }
func (s *stubLibrary) Errno(Handle) int                     { return s.errno }

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		handle  Handle
		err     error
		wantErr error
	}{
		{"success", 7, nil, nil},
		{"success with stale errno", 7, syscall.ENOENT, nil},
		{"failure with errno", 0, syscall.ENOMEM, syscall.ENOMEM},
		{"failure without errno", 0, nil, ErrOpenFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := &stubLibrary{openHandle: tt.handle, openErr: tt.err}
			c, err := Open(lib, 0x10)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Open() error = %v", err)
				}
				if c.Handle() != tt.handle {
					t.Errorf("Handle() = %d, want %d", c.Handle(), tt.handle)
				}
				return
			}

			var openErr *OpenError
			if !errors.As(err, &openErr) || openErr.Flags != 0x10 {
				t.Fatalf("Open() error = %v, want *OpenError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Open() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCloseOnce(t *testing.T) {
	lib := &stubLibrary{openHandle: 3}
	c, _ := Open(lib, 0)

	c.Close()
	c.Close()
	if len(lib.closed) != 1 || lib.closed[0] != 3 {
		t.Errorf("closed = %v, want [3]", lib.closed)
	}
	if !c.Closed() {
		t.Error("Closed() = false")
	}
}

func TestStatus(t *testing.T) {
	lib := &stubLibrary{openHandle: 1}
	c, _ := Open(lib, 0)

	lib.ret = OK
	if err := c.Load(nil); err != nil {
		t.Errorf("Load() error = %v", err)
	}

	lib.ret, lib.hasErr, lib.errMsg, lib.errno = Fail, true, "could not find any valid magic files!", int(syscall.ENOENT)
	err := c.Compile(nil)
	var cookieErr *CookieError
	if !errors.As(err, &cookieErr) {
		t.Fatalf("Compile() error = %v, want *CookieError", err)
	}
	if cookieErr.Explanation != lib.errMsg || cookieErr.Errno != syscall.ENOENT {
		t.Errorf("CookieError = %+v", cookieErr)
	}
	if !errors.Is(err, syscall.ENOENT) {
		t.Error("CookieError does not unwrap to its errno")
	}
}

func TestViolations(t *testing.T) {
	tests := []struct {
		name string
		lib  *stubLibrary
		call func(c *Cookie)
		want string
	}{
		{
			name: "failure without last error",
			lib:  &stubLibrary{openHandle: 1, ret: Fail},
			call: func(c *Cookie) { c.Check(nil) },
			want: "magic_check() did not set last error",
		},
		{
			name: "null result without last error",
			lib:  &stubLibrary{openHandle: 1},
			call: func(c *Cookie) { c.File("x") },
			want: "magic_file() did not set last error",
		},
		{
			name: "undocumented return code",
			lib:  &stubLibrary{openHandle: 1, ret: 42},
			call: func(c *Cookie) { c.List(nil) },
			want: "expected 0 or -1 but magic_list() returned 42",
		},
		{
			name: "undocumented setflags code",
			lib:  &stubLibrary{openHandle: 1, ret: -2},
			call: func(c *Cookie) { c.SetFlags(0) },
			want: "expected 0 or -1 but magic_setflags() returned -2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := Open(tt.lib, 0)
			defer func() {
				v, ok := recover().(*APIViolation)
				if !ok {
					t.Fatal("expected *APIViolation panic")
				}
				if v.Description != tt.want {
					t.Errorf("Description = %q, want %q", v.Description, tt.want)
				}
				if !strings.HasPrefix(v.Error(), "libmagic API violation for magic cookie 0x1") {
					t.Errorf("Error() = %q", v.Error())
				}
			}()
			tt.call(c)
		})
	}
}

func TestSetFlagsError(t *testing.T) {
	lib := &stubLibrary{openHandle: 1, ret: Fail, errno: int(syscall.EINVAL)}
	c, _ := Open(lib, 0)

	err := c.SetFlags(0x80)
	var setErr *SetFlagsError
	if !errors.As(err, &setErr) || setErr.Flags != 0x80 {
		t.Fatalf("SetFlags() error = %v", err)
	}
	if !errors.Is(err, syscall.EINVAL) {
		t.Error("SetFlagsError does not unwrap to EINVAL")
	}
}
