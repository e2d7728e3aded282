package magickit

import (
	"fmt"
	"io"
	"strings"

	"github.com/gobeaver/magickit/native"
)

// Stage is the lifecycle stage of a cookie
type Stage int

const (
	// StageUnloaded is a freshly opened cookie without databases
	StageUnloaded Stage = iota

	// StageLoaded is a cookie with at least one database loaded
	StageLoaded
)

// String returns the stage name
func (s Stage) String() string {
	switch s {
	case StageUnloaded:
		return "unloaded"
	case StageLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// DefaultMaxReaderBytes is how much of a reader Loaded.Reader inspects when no
// limit is given.
const DefaultMaxReaderBytes int64 = 1 << 20

// Cookie is the part of the API available in every stage. It is implemented by
// *Unloaded and *Loaded only.
//
// Loading is the one stage change: Load and LoadBuffers consume the value they are
// called on and return a *Loaded that owns the same native handle. The consumed
// value is stale afterwards; its methods return ErrCookieMoved and its Close does
// nothing, so both values can be closed with defer:
//
//	cookie, err := magickit.Open(magickit.FlagMIMEType)
//	if err != nil {
//	    return err
//	}
//	defer cookie.Close()
//
//	loaded, err := cookie.Load(magickit.DefaultDatabasePaths())
//	if err != nil {
//	    return err
//	}
//	defer loaded.Close()
//
// A cookie is not meant for concurrent use from several goroutines; calls are
// serialized, so sharing one only trades parallelism for correctness. Use one
// cookie per goroutine instead.
type Cookie interface {
	// Stage reports the stage of this value.
	Stage() Stage

	// SetFlags replaces the flags given to Open.
	SetFlags(flags Flags) error

	// Compile compiles the database files in paths.
	Compile(paths DatabasePaths) error

	// Check validates the database files in paths.
	Check(paths DatabasePaths) error

	// List dumps the rules of the database files in paths to the engine's stdout.
	List(paths DatabasePaths) error

	// Close releases the native handle.
	Close() error

	sealed()
}

var (
	_ Cookie = (*Unloaded)(nil)
	_ Cookie = (*Loaded)(nil)
)

// ref is what both stages share: the session and the generation this value owns.
type ref struct {
	s   *session
	gen uint64
}

func (ref) sealed() {}

// Engine returns the engine the cookie was opened on.
func (r ref) Engine() *Engine {
	return r.s.engine
}

// SetFlags replaces the cookie flags. The only flag libmagic may reject here is
// FlagPreserveAtime, on systems without utime(2)/utimes(2).
func (r ref) SetFlags(flags Flags) error {
	err := r.s.use(r.gen, func(c *native.Cookie) error {
		return c.SetFlags(int(flags.Bits()))
	})
	switch err {
	case nil:
		return nil
	case ErrCookieMoved, ErrCookieClosed:
		return &Error{Function: native.FuncSetFlags, Err: err}
	default:
		return &SetFlagsError{Flags: FlagPreserveAtime, Err: err}
	}
}

// Compile compiles the database files in paths. libmagic writes each output to
// the working directory as <name>.mgc.
func (r ref) Compile(paths DatabasePaths) error {
	return r.call(native.FuncCompile, func(c *native.Cookie) error {
		return c.Compile(paths.native())
	})
}

// Check validates the database files in paths.
func (r ref) Check(paths DatabasePaths) error {
	return r.call(native.FuncCheck, func(c *native.Cookie) error {
		return c.Check(paths.native())
	})
}

// List dumps the rules of the database files in paths.
func (r ref) List(paths DatabasePaths) error {
	return r.call(native.FuncList, func(c *native.Cookie) error {
		return c.List(paths.native())
	})
}

// Close releases the native handle. It must be called on the value that owns the
// handle; on a value consumed by a load it does nothing. Closing the owner twice
// returns ErrCookieClosed.
func (r ref) Close() error {
	return r.s.close(r.gen)
}

func (r ref) call(function string, fn func(c *native.Cookie) error) error {
	if err := r.s.use(r.gen, fn); err != nil {
		return &Error{Function: function, Err: err}
	}
	return nil
}

func (r ref) load(paths DatabasePaths) (*Loaded, error) {
	gen, err := r.s.transition(r.gen, func(c *native.Cookie) error {
		return c.Load(paths.native())
	})
	if err != nil {
		return nil, err
	}
	return &Loaded{ref{s: r.s, gen: gen}}, nil
}

func (r ref) loadBuffers(buffers [][]byte) (*Loaded, error) {
	gen, err := r.s.transition(r.gen, func(c *native.Cookie) error {
		return c.LoadBuffers(buffers)
	})
	if err != nil {
		return nil, err
	}
	return &Loaded{ref{s: r.s, gen: gen}}, nil
}

// Unloaded is an open cookie with no database loaded. Only the operations of
// Cookie plus loading are available.
type Unloaded struct {
	ref
}

// Stage returns StageUnloaded
func (u *Unloaded) Stage() Stage {
	return StageUnloaded
}

// Load loads the database files in paths and moves the cookie to StageLoaded.
//
// On failure u is untouched and returned inside a *LoadError[*Unloaded], so it can
// be retried or closed.
func (u *Unloaded) Load(paths DatabasePaths) (*Loaded, error) {
	l, err := u.load(paths)
	if err != nil {
		return nil, &LoadError[*Unloaded]{Function: native.FuncLoad, Err: err, cookie: u}
	}
	return l, nil
}

// LoadBuffers loads databases from memory and moves the cookie to StageLoaded.
//
// On failure u is untouched and returned inside a *LoadError[*Unloaded].
func (u *Unloaded) LoadBuffers(buffers [][]byte) (*Loaded, error) {
	l, err := u.loadBuffers(buffers)
	if err != nil {
		return nil, &LoadError[*Unloaded]{Function: native.FuncLoadBuffers, Err: err, cookie: u}
	}
	return l, nil
}

// Loaded is a cookie with databases loaded, ready for queries.
type Loaded struct {
	ref
}

// Stage returns StageLoaded
func (l *Loaded) Stage() Stage {
	return StageLoaded
}

// Load replaces the loaded databases with the files in paths. The result owns the
// handle; l is stale afterwards.
//
// On failure l is returned inside a *LoadError[*Loaded] and still owns the handle,
// but libmagic drops the previous databases before loading, so queries fail until
// a later load succeeds.
func (l *Loaded) Load(paths DatabasePaths) (*Loaded, error) {
	next, err := l.load(paths)
	if err != nil {
		return nil, &LoadError[*Loaded]{Function: native.FuncLoad, Err: err, cookie: l}
	}
	return next, nil
}

// LoadBuffers replaces the loaded databases with in-memory ones. The result owns
// the handle; l is stale afterwards.
//
// On failure l is returned inside a *LoadError[*Loaded] with no databases
// loaded, as for Load.
func (l *Loaded) LoadBuffers(buffers [][]byte) (*Loaded, error) {
	next, err := l.loadBuffers(buffers)
	if err != nil {
		return nil, &LoadError[*Loaded]{Function: native.FuncLoadBuffers, Err: err, cookie: l}
	}
	return next, nil
}

// File describes the named file.
func (l *Loaded) File(name string) (string, error) {
	if strings.IndexByte(name, 0) >= 0 {
		return "", &Error{Function: native.FuncFile, Err: ErrInvalidFileName}
	}

	var res string
	err := l.call(native.FuncFile, func(c *native.Cookie) error {
		var err error
		res, err = c.File(name)
		return err
	})
	return res, err
}

// Buffer describes data.
func (l *Loaded) Buffer(data []byte) (string, error) {
	var res string
	err := l.call(native.FuncBuffer, func(c *native.Cookie) error {
		var err error
		res, err = c.Buffer(data)
		return err
	})
	return res, err
}

// Reader describes the first maxBytes of r. A zero or negative maxBytes uses the
// limit the cookie was configured with, DefaultMaxReaderBytes unless set through
// Config.MaxReaderBytes.
func (l *Loaded) Reader(r io.Reader, maxBytes int64) (string, error) {
	data, err := l.readLimited(r, maxBytes)
	if err != nil {
		return "", err
	}
	return l.Buffer(data)
}

// alive fails with the error function would report if l is stale or closed.
func (l *Loaded) alive(function string) error {
	if err := l.s.alive(l.gen); err != nil {
		return &Error{Function: function, Err: err}
	}
	return nil
}

// readLimited reads nothing from r unless l can still describe the result.
func (l *Loaded) readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if err := l.alive(native.FuncBuffer); err != nil {
		return nil, err
	}
	if maxBytes <= 0 {
		maxBytes = l.s.maxReaderBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return data, nil
}
