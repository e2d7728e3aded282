package magickit

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/gobeaver/magickit/native"
)

// Common errors
var (
	ErrInvalidDatabasePath = errors.New("invalid database files path")
	ErrInvalidFileName     = errors.New("file name contains a NUL byte")
	ErrInvalidFlag         = errors.New("invalid flag")
	ErrCookieMoved         = errors.New("magic cookie was moved by a load")
	ErrCookieClosed        = errors.New("magic cookie already closed")
	ErrEngineNotRegistered = errors.New("engine not registered")
)

// CookieError is the engine's error detail: the explanation text and the OS
// errno, if any.
type CookieError = native.CookieError

// Error records a failed engine call on a cookie and the libmagic function that
// failed.
type Error struct {
	Function string
	Err      error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("magic cookie error in libmagic function %s: %v", e.Function, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// LoadError is returned by Load and LoadBuffers. The cookie the load was called
// on is not consumed by a failed load; Cookie hands it back to the caller, who
// remains responsible for closing it.
type LoadError[C Cookie] struct {
	Function string
	Err      error
	cookie   C
}

// Error implements the error interface
func (e *LoadError[C]) Error() string {
	return fmt.Sprintf("magic cookie error in libmagic function %s: %v", e.Function, e.Err)
}

// Unwrap returns the underlying error
func (e *LoadError[C]) Unwrap() error {
	return e.Err
}

// Cookie returns the cookie in its original stage.
func (e *LoadError[C]) Cookie() C {
	return e.cookie
}

// OpenErrorKind classifies an OpenError
type OpenErrorKind int

const (
	// OpenErrorErrno is any failure other than rejected flags
	OpenErrorErrno OpenErrorKind = iota

	// OpenErrorUnsupportedFlags means the engine rejected the flags (EINVAL)
	OpenErrorUnsupportedFlags
)

// String returns the kind name
func (k OpenErrorKind) String() string {
	switch k {
	case OpenErrorUnsupportedFlags:
		return "unsupported flags"
	default:
		return "other error"
	}
}

// OpenError is returned by Open. Flags are the rejected flags so callers can retry
// with a reduced set.
type OpenError struct {
	Flags Flags
	Kind  OpenErrorKind
	Err   error
}

// Error implements the error interface
func (e *OpenError) Error() string {
	if e.Kind == OpenErrorUnsupportedFlags {
		return fmt.Sprintf("could not open magic cookie: unsupported flags %s: %v", e.Flags, e.Err)
	}
	return fmt.Sprintf("could not open magic cookie: other error: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *OpenError) Unwrap() error {
	return e.Err
}

// SetFlagsError is returned by SetFlags. Flags is FlagPreserveAtime, the only
// flag libmagic documents as possibly unsupported.
type SetFlagsError struct {
	Flags Flags
	Err   error
}

// Error implements the error interface
func (e *SetFlagsError) Error() string {
	return fmt.Sprintf("could not set magic cookie flags %s: %v", e.Flags, e.Err)
}

// Unwrap returns the underlying error
func (e *SetFlagsError) Unwrap() error {
	return e.Err
}

func newOpenError(flags Flags, err error) *OpenError {
	kind := OpenErrorErrno
	if errors.Is(err, syscall.EINVAL) {
		kind = OpenErrorUnsupportedFlags
	}
	return &OpenError{Flags: flags, Kind: kind, Err: err}
}

type functionError interface {
	function() string
}

func (e *Error) function() string { return e.Function }

func (e *LoadError[C]) function() string { return e.Function }

func (e *OpenError) function() string { return native.FuncOpen }

func (e *SetFlagsError) function() string { return native.FuncSetFlags }

// FunctionOf returns the libmagic function named by a magickit error, or empty
// string if err is not one
func FunctionOf(err error) string {
	for err != nil {
		if fe, ok := err.(functionError); ok {
			return fe.function()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// ErrnoOf returns the OS error code carried by err, if any
func ErrnoOf(err error) (syscall.Errno, bool) {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return errno, true
	}
	return 0, false
}

// ExplanationOf returns the engine's explanation text carried by err, or empty
// string if err has no CookieError
func ExplanationOf(err error) string {
	var cookieErr *CookieError
	if errors.As(err, &cookieErr) {
		return cookieErr.Explanation
	}
	return ""
}

// IsUnsupportedFlags reports whether err is an OpenError for rejected flags
func IsUnsupportedFlags(err error) bool {
	var openErr *OpenError
	if errors.As(err, &openErr) {
		return openErr.Kind == OpenErrorUnsupportedFlags
	}
	return false
}
