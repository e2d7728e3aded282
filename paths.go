package magickit

import (
	"os"
	"strings"
)

// DatabasePaths is the list of magic database files passed to Load, Check,
// Compile and List, or the engine's compiled-in default when empty.
//
// The zero value is the default database. A DatabasePaths is read-only and can be
// reused for any number of calls.
type DatabasePaths struct {
	filenames string
	set       bool
}

// NewDatabasePaths joins paths with the platform list separator (';' on Windows,
// ':' elsewhere). No paths, or only empty ones, select the default database.
// It fails with ErrInvalidDatabasePath when a path contains a NUL byte, which the
// engine cannot receive.
func NewDatabasePaths(paths ...string) (DatabasePaths, error) {
	filenames := strings.Join(paths, string(os.PathListSeparator))
	if filenames == "" {
		return DatabasePaths{}, nil
	}
	if strings.IndexByte(filenames, 0) >= 0 {
		return DatabasePaths{}, ErrInvalidDatabasePath
	}
	return DatabasePaths{filenames: filenames, set: true}, nil
}

// DefaultDatabasePaths selects the engine's default database.
func DefaultDatabasePaths() DatabasePaths {
	return DatabasePaths{}
}

// IsDefault reports whether the default database is selected.
func (p DatabasePaths) IsDefault() bool {
	return !p.set
}

// Paths returns the individual paths, nil for the default database.
func (p DatabasePaths) Paths() []string {
	if !p.set {
		return nil
	}
	return strings.Split(p.filenames, string(os.PathListSeparator))
}

// String returns the joined path list, "" for the default database.
func (p DatabasePaths) String() string {
	return p.filenames
}

// native returns the argument for the engine, nil for the default database.
func (p DatabasePaths) native() *string {
	if !p.set {
		return nil
	}
	s := p.filenames
	return &s
}
