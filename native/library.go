// Package native is the boundary between magickit and a content-sniffing engine
// that follows the libmagic C API.
//
// [Library] is the raw primitive surface with the engine's own return conventions:
// nil results and -1 signal failure and the detail sits in a per-handle last-error
// slot. [Cookie] adapts a Library handle to Go error values and panics with an
// [*APIViolation] when the engine breaks its own contract.
//
// Engines live in separate packages (engine/libmagic, engine/memory) and only
// implement Library; they never see the higher level typestate API.
package native

// Handle identifies one engine instance (a libmagic magic_t). The zero Handle is
// never returned by a successful Open.
type Handle uintptr

// Result codes shared by the int-returning primitives.
const (
	OK   = 0
	Fail = -1
)

// Library is the set of primitives an engine provides. Implementations translate
// each method one-to-one to the native function of the same name and must not
// interpret failures themselves.
//
// A Library may be shared by many handles, but a single handle is not safe for
// concurrent use: its last-error slot is overwritten by every call.
type Library interface {
	// Open allocates a handle configured with flags. On failure it returns a zero
	// Handle and the OS error (errno) reported by the engine.
	Open(flags int) (Handle, error)

	// Close releases the handle. It has no failure signal.
	Close(h Handle)

	// Load loads databases from a path list, or the default database when
	// filenames is nil. Returns OK or Fail.
	Load(h Handle, filenames *string) int

	// LoadBuffers loads databases from memory. Returns OK or Fail.
	LoadBuffers(h Handle, buffers [][]byte) int

	// File classifies the named file. ok is false when the engine returned NULL.
	File(h Handle, filename string) (result string, ok bool)

	// Buffer classifies data. ok is false when the engine returned NULL.
	Buffer(h Handle, data []byte) (result string, ok bool)

	// SetFlags reconfigures the handle. Returns Fail and the OS error when the
	// flags are rejected.
	SetFlags(h Handle, flags int) (int, error)

	// Check validates database files. Returns OK or Fail.
	Check(h Handle, filenames *string) int

	// Compile compiles database files. Returns OK or Fail.
	Compile(h Handle, filenames *string) int

	// List dumps the loaded rules of database files. Returns OK or Fail.
	List(h Handle, filenames *string) int

	// Version reports the engine version, e.g. 545 for file 5.45.
	Version() int

	// Error reads the last-error slot. ok is false when the slot is empty.
	Error(h Handle) (explanation string, ok bool)

	// Errno reads the OS error code stored with the last error, 0 if none.
	Errno(h Handle) int
}
