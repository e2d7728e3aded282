// Package magickit identifies file types with libmagic, the classification
// engine behind file(1), through a handle API that makes misuse hard to express.
//
// A cookie moves through two stages. [Open] returns an [*Unloaded] cookie, which
// can only be configured or loaded. Loading returns a [*Loaded] cookie, which can
// also classify files, buffers and streams. Operations available in both stages
// are collected in the [Cookie] interface.
//
// # Engines
//
// Engines register themselves when their package is imported:
//
//   - libmagic through cgo (github.com/gobeaver/magickit/engine/libmagic)
//   - a pure-Go in-memory engine (github.com/gobeaver/magickit/engine/memory)
//
// [Open] uses the engine named [DefaultEngine]; [LookupEngine] selects another
// one and [NewEngine] wraps any native.Library.
//
// # Basic Usage
//
//	import _ "github.com/gobeaver/magickit/engine/libmagic"
//
//	cookie, err := magickit.Open(magickit.FlagMIMEType)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cookie.Close()
//
//	loaded, err := cookie.Load(magickit.DefaultDatabasePaths())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer loaded.Close()
//
//	mimeType, err := loaded.File("photo.jpg")
//
// A load consumes the cookie it is called on. Calls on the consumed value return
// [ErrCookieMoved] and its Close does nothing, which is why both values above can
// be closed with defer. A failed load returns a [*LoadError] that hands the
// cookie back in its original stage:
//
//	loaded, err := cookie.Load(paths)
//	var loadErr *magickit.LoadError[*magickit.Unloaded]
//	if errors.As(err, &loadErr) {
//	    loaded, err = loadErr.Cookie().Load(magickit.DefaultDatabasePaths())
//	}
//
// # Error Handling
//
// Engine failures carry the libmagic function that failed and, when the engine
// reported one, the OS error:
//
//	_, err := loaded.File("missing.txt")
//	if errors.Is(err, fs.ErrNotExist) {
//	    // FlagError was set and the file does not exist
//	}
//	fmt.Println(magickit.FunctionOf(err), magickit.ExplanationOf(err))
//
// An engine that breaks the libmagic calling contract causes a panic with a
// *native.APIViolation instead of an error.
//
// # Configuration
//
// magickit can be configured via environment variables with the
// BEAVER_MAGICKIT_ prefix, or programmatically via the [Config] struct:
//
//	loaded, err := magickit.New(&magickit.Config{
//	    Engine:   "libmagic",
//	    Flags:    "MIME_TYPE | SYMLINK",
//	    Database: "/usr/share/misc/magic.mgc",
//	})
//
// [NewDescriber] adds a result cache on top, see [CachedDescriber].
package magickit
