package magickit

import (
	"fmt"
	"sync"

	"github.com/gobeaver/magickit/native"
)

// DefaultEngine is the engine used by Open and Version.
const DefaultEngine = "libmagic"

// EngineFactory creates the native library for an engine
type EngineFactory func() (native.Library, error)

var (
	engineFactories = make(map[string]EngineFactory)
	factoryMutex    sync.RWMutex
)

// RegisterEngine registers an engine factory function. Engine packages call it
// from init, so importing the package for side effects makes the engine
// available:
//
//	import _ "github.com/gobeaver/magickit/engine/libmagic"
func RegisterEngine(name string, factory EngineFactory) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	engineFactories[name] = factory
}

// Engines returns the names of the registered engines
func Engines() []string {
	factoryMutex.RLock()
	defer factoryMutex.RUnlock()

	names := make([]string, 0, len(engineFactories))
	for name := range engineFactories {
		names = append(names, name)
	}
	return names
}

// Engine opens cookies on one native library
type Engine struct {
	name string
	lib  native.Library
}

// NewEngine wraps a native library
func NewEngine(name string, lib native.Library) *Engine {
	return &Engine{name: name, lib: lib}
}

// LookupEngine creates the registered engine called name
func LookupEngine(name string) (*Engine, error) {
	factoryMutex.RLock()
	factory, exists := engineFactories[name]
	factoryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrEngineNotRegistered, name)
	}

	lib, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create engine %s: %w", name, err)
	}
	return NewEngine(name, lib), nil
}

// Name returns the name the engine was registered or created with
func (e *Engine) Name() string {
	return e.name
}

// Version returns the engine version, e.g. 545 for file 5.45
func (e *Engine) Version() int {
	return native.Version(e.lib)
}

// Open allocates a new cookie with flags and no database loaded.
func (e *Engine) Open(flags Flags) (*Unloaded, error) {
	c, err := native.Open(e.lib, int(flags.Bits()))
	if err != nil {
		return nil, newOpenError(flags, err)
	}
	return &Unloaded{ref{s: newSession(e, c)}}, nil
}

// Open allocates a new cookie on the default engine.
func Open(flags Flags) (*Unloaded, error) {
	e, err := LookupEngine(DefaultEngine)
	if err != nil {
		return nil, err
	}
	return e.Open(flags)
}

// Version returns the version of the default engine.
func Version() (int, error) {
	e, err := LookupEngine(DefaultEngine)
	if err != nil {
		return 0, err
	}
	return e.Version(), nil
}
