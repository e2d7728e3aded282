package native

import (
	"fmt"
	"syscall"
)

// Function names reported in errors and violations.
const (
	FuncOpen        = "magic_open"
	FuncClose       = "magic_close"
	FuncLoad        = "magic_load"
	FuncLoadBuffers = "magic_load_buffers"
	FuncFile        = "magic_file"
	FuncBuffer      = "magic_buffer"
	FuncSetFlags    = "magic_setflags"
	FuncCheck       = "magic_check"
	FuncCompile     = "magic_compile"
	FuncList        = "magic_list"
)

// Cookie is an open engine handle together with the library that owns it.
//
// Cookie does not synchronize; callers serialize access so that the last-error
// slot read after a failure belongs to the call that failed.
type Cookie struct {
	lib    Library
	handle Handle
}

// Open allocates a handle with flags.
func Open(lib Library, flags int) (*Cookie, error) {
	h, err := lib.Open(flags)
	if h == 0 {
		if err == nil {
			// NULL is the failure signal, with or without errno
			err = ErrOpenFailed
		}
		return nil, &OpenError{Flags: flags, Err: err}
	}
	return &Cookie{lib: lib, handle: h}, nil
}

// Version reports the engine version of lib.
func Version(lib Library) int {
	return lib.Version()
}

// Handle returns the raw handle, 0 once closed.
func (c *Cookie) Handle() Handle {
	return c.handle
}

// Closed reports whether Close has been called.
func (c *Cookie) Closed() bool {
	return c.handle == 0
}

// Close releases the handle. Calling it again is a no-op.
func (c *Cookie) Close() {
	if c.handle == 0 {
		return
	}
	c.lib.Close(c.handle)
	c.handle = 0
}

// File classifies the named file.
func (c *Cookie) File(filename string) (string, error) {
	res, ok := c.lib.File(c.handle, filename)
	if !ok {
		return "", c.expectError(FuncFile)
	}
	return res, nil
}

// Buffer classifies data.
func (c *Cookie) Buffer(data []byte) (string, error) {
	res, ok := c.lib.Buffer(c.handle, data)
	if !ok {
		return "", c.expectError(FuncBuffer)
	}
	return res, nil
}

// SetFlags reconfigures the handle.
func (c *Cookie) SetFlags(flags int) error {
	ret, err := c.lib.SetFlags(c.handle, flags)
	switch ret {
	case OK:
		return nil
	case Fail:
		return &SetFlagsError{Flags: flags, Err: err}
	default:
		panic(c.violation(FuncSetFlags, fmt.Sprintf("expected 0 or -1 but %s() returned %d", FuncSetFlags, ret)))
	}
}

// Load loads the databases in filenames, or the default database when nil.
func (c *Cookie) Load(filenames *string) error {
	return c.status(FuncLoad, c.lib.Load(c.handle, filenames))
}

// LoadBuffers loads databases from memory.
func (c *Cookie) LoadBuffers(buffers [][]byte) error {
	return c.status(FuncLoadBuffers, c.lib.LoadBuffers(c.handle, buffers))
}

// Check validates the databases in filenames.
func (c *Cookie) Check(filenames *string) error {
	return c.status(FuncCheck, c.lib.Check(c.handle, filenames))
}

// Compile compiles the databases in filenames.
func (c *Cookie) Compile(filenames *string) error {
	return c.status(FuncCompile, c.lib.Compile(c.handle, filenames))
}

// List dumps the rules of the databases in filenames.
func (c *Cookie) List(filenames *string) error {
	return c.status(FuncList, c.lib.List(c.handle, filenames))
}

// LastError reads the last-error slot, nil when it is empty.
func (c *Cookie) LastError() *CookieError {
	explanation, ok := c.lib.Error(c.handle)
	if !ok {
		return nil
	}
	return &CookieError{
		Explanation: explanation,
		Errno:       syscall.Errno(c.lib.Errno(c.handle)),
	}
}

func (c *Cookie) status(function string, ret int) error {
	switch ret {
	case OK:
		return nil
	case Fail:
		return c.expectError(function)
	default:
		panic(c.violation(function, fmt.Sprintf("expected 0 or -1 but %s() returned %d", function, ret)))
	}
}

func (c *Cookie) expectError(function string) *CookieError {
	if err := c.LastError(); err != nil {
		return err
	}
	panic(c.violation(function, fmt.Sprintf("%s() did not set last error", function)))
}

func (c *Cookie) violation(function, description string) *APIViolation {
	return &APIViolation{Handle: c.handle, Function: function, Description: description}
}
