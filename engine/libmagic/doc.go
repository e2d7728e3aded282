// Package libmagic is the magickit engine backed by the system libmagic
// (the library behind file(1)).
//
// Importing the package registers the "libmagic" engine, which is
// magickit.DefaultEngine:
//
//	import _ "github.com/gobeaver/magickit/engine/libmagic"
//
// The package needs cgo and libmagic headers at build time (libmagic-dev on
// Debian, file-devel on Fedora, libmagic on Homebrew). Without cgo it compiles to
// nothing and the engine is not registered.
package libmagic
