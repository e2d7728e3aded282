package native

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrOpenFailed is the cause of an OpenError when the engine returned no handle
// without setting errno.
var ErrOpenFailed = errors.New("no handle returned and no OS error set")

// CookieError is the detail of a failed call, read from the handle's last-error
// slot right after the failure signal.
type CookieError struct {
	// Explanation is the engine's error text.
	Explanation string

	// Errno is the OS error stored with it, 0 when the engine reported none.
	Errno syscall.Errno
}

// Error implements the error interface
func (e *CookieError) Error() string {
	if e.Errno == 0 {
		return fmt.Sprintf("magic cookie error (no OS errno): %s", e.Explanation)
	}
	return fmt.Sprintf("magic cookie error (OS errno: %v): %s", e.Errno, e.Explanation)
}

// Unwrap returns the OS error so that errors.Is(err, fs.ErrNotExist) and friends
// work on engine failures.
func (e *CookieError) Unwrap() error {
	if e.Errno == 0 {
		return nil
	}
	return e.Errno
}

// OpenError is returned when the engine could not allocate a handle. There is no
// handle yet to hold a last-error slot, so only the OS error is known.
type OpenError struct {
	Flags int
	Err   error
}

// Error implements the error interface
func (e *OpenError) Error() string {
	return fmt.Sprintf("could not open magic cookie with flags %#x: %v", e.Flags, e.Err)
}

// Unwrap returns the underlying OS error
func (e *OpenError) Unwrap() error {
	return e.Err
}

// SetFlagsError is returned when the engine rejects a flag update. magic_setflags
// does not fill the last-error slot; Err holds the OS error, if any.
type SetFlagsError struct {
	Flags int
	Err   error
}

// Error implements the error interface
func (e *SetFlagsError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not set magic cookie flags %#x", e.Flags)
	}
	return fmt.Sprintf("could not set magic cookie flags %#x: %v", e.Flags, e.Err)
}

// Unwrap returns the underlying OS error
func (e *SetFlagsError) Unwrap() error {
	return e.Err
}

// APIViolation is the panic value raised when an engine breaks the libmagic
// contract: a failure signal with an empty last-error slot, or a return code the
// API does not define. Continuing would mean inventing a result, so these are
// never returned as errors.
type APIViolation struct {
	Handle      Handle
	Function    string
	Description string
}

// Error implements the error interface
func (v *APIViolation) Error() string {
	return fmt.Sprintf("libmagic API violation for magic cookie %#x in %s: %s", uintptr(v.Handle), v.Function, v.Description)
}
