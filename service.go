package magickit

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/gobeaver/beaver-kit/config"
)

// Global instance
var (
	defaultDescriber Describer
	defaultOnce      sync.Once
	defaultErr       error
)

// Builder provides a way to create cookies from environment variables with
// custom prefixes
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global Describer using the builder's prefix
func (b *Builder) Init() error {
	cfg, err := b.load()
	if err != nil {
		return err
	}
	return Init(cfg)
}

// New creates a loaded cookie using the builder's prefix
func (b *Builder) New() (*Loaded, error) {
	cfg, err := b.load()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// NewDescriber creates a Describer using the builder's prefix
func (b *Builder) NewDescriber() (Describer, error) {
	cfg, err := b.load()
	if err != nil {
		return nil, err
	}
	return NewDescriber(cfg)
}

func (b *Builder) load() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init initializes the global Describer. It is not safe for concurrent use from
// several goroutines; see Cookie.
func Init(configs ...*Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultDescriber, defaultErr = NewDescriber(cfg)
	})

	return defaultErr
}

// Default returns the global Describer, nil before a successful Init.
func Default() Describer {
	return defaultDescriber
}

// New opens a cookie on the configured engine and loads the configured
// databases.
func New(cfg *Config) (*Loaded, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	flags, err := ParseFlags(cfg.Flags)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	paths, err := NewDatabasePaths(filepath.SplitList(cfg.Database)...)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	engine, err := LookupEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}

	cookie, err := engine.Open(flags)
	if err != nil {
		return nil, err
	}
	if cfg.MaxReaderBytes > 0 {
		cookie.s.maxReaderBytes = cfg.MaxReaderBytes
	}

	var loaded *Loaded
	if cfg.DatabaseFromMemory {
		buffers, rerr := ReadDatabases(paths)
		if rerr != nil {
			cookie.Close()
			return nil, rerr
		}
		loaded, err = cookie.LoadBuffers(buffers)
	} else {
		loaded, err = cookie.Load(paths)
	}
	if err != nil {
		var loadErr *LoadError[*Unloaded]
		if errors.As(err, &loadErr) {
			loadErr.Cookie().Close()
		}
		return nil, err
	}
	return loaded, nil
}

// NewDescriber is New wrapped in a CachedDescriber with a MemoryCache when the
// cache is enabled.
func NewDescriber(cfg *Config) (Describer, error) {
	loaded, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.CacheEnabled {
		return loaded, nil
	}
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	return NewCachedDescriber(loaded, NewMemoryCache(), ttl), nil
}

// validateConfig checks configuration validity
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.Engine == "" {
		return errors.New("engine is required")
	}
	if cfg.DatabaseFromMemory && cfg.Database == "" {
		return errors.New("database is required to load it from memory")
	}
	if cfg.CacheTTLSeconds < 0 {
		return errors.New("cache TTL must not be negative")
	}
	return nil
}
