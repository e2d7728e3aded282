package magickit

import (
	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Engine to open cookies on (libmagic, memory)
	Engine string `env:"MAGICKIT_ENGINE,default:libmagic"`

	// Flags in ParseFlags syntax, e.g. "MIME_TYPE | SYMLINK"
	Flags string `env:"MAGICKIT_FLAGS"`

	// Database files joined with the OS path list separator; empty selects the
	// engine's default database
	Database string `env:"MAGICKIT_DATABASE"`

	// Read the database files in Go and hand them to the engine with LoadBuffers,
	// which also decompresses .gz and .zst databases
	DatabaseFromMemory bool `env:"MAGICKIT_DATABASE_FROM_MEMORY,default:false"`

	// Result cache used by NewDescriber
	CacheEnabled    bool `env:"MAGICKIT_CACHE_ENABLED,default:false"`
	CacheTTLSeconds int  `env:"MAGICKIT_CACHE_TTL_SECONDS,default:300"`

	// Default read limit for Reader
	MaxReaderBytes int64 `env:"MAGICKIT_MAX_READER_BYTES,default:1048576"` // 1MB default
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
