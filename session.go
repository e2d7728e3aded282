package magickit

import (
	"runtime"
	"sync"

	"github.com/gobeaver/magickit/native"
)

// session owns one native cookie for its whole life, across stage changes.
//
// gen counts completed loads. Every Unloaded or Loaded value records the
// generation it was created for; a load bumps gen, which leaves the value the load
// was called on stale. Only the value holding the current generation may use or
// close the native cookie.
type session struct {
	mu      sync.Mutex
	engine  *Engine
	cookie  *native.Cookie
	gen     uint64
	closed  bool
	cleanup runtime.Cleanup

	maxReaderBytes int64
}

func newSession(e *Engine, c *native.Cookie) *session {
	s := &session{engine: e, cookie: c, maxReaderBytes: DefaultMaxReaderBytes}
	// Closes the handle if every value referring to the session is dropped
	// without Close. Stopped by close.
	s.cleanup = runtime.AddCleanup(s, closeNative, c)
	return s
}

func closeNative(c *native.Cookie) {
	c.Close()
}

func (s *session) check(gen uint64) error {
	if gen != s.gen {
		return ErrCookieMoved
	}
	if s.closed {
		return ErrCookieClosed
	}
	return nil
}

// alive reports whether gen still owns an open native cookie.
func (s *session) alive(gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check(gen)
}

// use runs fn on the native cookie while holding the session lock, so the
// last-error slot read after a failure belongs to fn's call.
func (s *session) use(gen uint64, fn func(c *native.Cookie) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(gen); err != nil {
		return err
	}
	return fn(s.cookie)
}

// transition runs a load and, when it succeeds, moves ownership to a new
// generation which it returns.
func (s *session) transition(gen uint64, load func(c *native.Cookie) error) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(gen); err != nil {
		return 0, err
	}
	if err := load(s.cookie); err != nil {
		return 0, err
	}
	s.gen++
	return s.gen, nil
}

func (s *session) close(gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		// ownership moved on; the current owner closes
		return nil
	}
	if s.closed {
		return ErrCookieClosed
	}
	s.closed = true
	s.cleanup.Stop()
	s.cookie.Close()
	return nil
}
