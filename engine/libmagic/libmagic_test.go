//go:build cgo

package libmagic_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gobeaver/magickit"
	"github.com/gobeaver/magickit/engine/libmagic"
)

// openLoaded loads the system database, skipping the test when there is none.
func openLoaded(t *testing.T, flags magickit.Flags) *magickit.Loaded {
	t.Helper()
	e := magickit.NewEngine(magickit.DefaultEngine, libmagic.New())

	cookie, err := e.Open(flags)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	loaded, err := cookie.Load(magickit.DefaultDatabasePaths())
	if err != nil {
		cookie.Close()
		t.Skipf("no system magic database: %v", err)
	}
	t.Cleanup(func() { loaded.Close() })
	return loaded
}

func TestVersion(t *testing.T) {
	v, err := magickit.Version()
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if v < 500 {
		t.Errorf("Version() = %d, want a 5.x release", v)
	}
}

func TestBuffer(t *testing.T) {
	loaded := openLoaded(t, magickit.FlagMIMEType)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, "application/x-empty"},
		{"text", []byte("hello world\n"), "text/plain"},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00"), "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loaded.Buffer(tt.data)
			if err != nil {
				t.Fatalf("Buffer() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Buffer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFile(t *testing.T) {
	loaded := openLoaded(t, magickit.FlagMIMEType|magickit.FlagError)

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("plain text\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := loaded.File(path)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if got != "text/plain" {
		t.Errorf("File() = %q", got)
	}

	_, err = loaded.File(filepath.Join(dir, "missing"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("File() of missing file error = %v, want ErrNotExist", err)
	}
	if magickit.FunctionOf(err) != "magic_file" {
		t.Errorf("FunctionOf() = %q", magickit.FunctionOf(err))
	}
}

func TestLoadMissingDatabase(t *testing.T) {
	e := magickit.NewEngine(magickit.DefaultEngine, libmagic.New())
	cookie, err := e.Open(magickit.FlagNone)
	if err != nil {
		t.Fatal(err)
	}
	defer cookie.Close()

	paths, _ := magickit.NewDatabasePaths(filepath.Join(t.TempDir(), "missing.mgc"))
	_, err = cookie.Load(paths)

	var loadErr *magickit.LoadError[*magickit.Unloaded]
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *LoadError[*Unloaded]", err)
	}
	if magickit.ExplanationOf(err) == "" {
		t.Error("no explanation from libmagic")
	}
}

func TestFailedReload(t *testing.T) {
	loaded := openLoaded(t, magickit.FlagNone)

	paths, _ := magickit.NewDatabasePaths(filepath.Join(t.TempDir(), "missing.mgc"))
	_, err := loaded.Load(paths)

	var loadErr *magickit.LoadError[*magickit.Loaded]
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *LoadError[*Loaded]", err)
	}
	if _, err := loadErr.Cookie().Buffer([]byte("%PDF-1.4")); err == nil {
		t.Error("Buffer() succeeded although libmagic dropped its databases")
	}

	reloaded, err := loadErr.Cookie().Load(magickit.DefaultDatabasePaths())
	if err != nil {
		t.Fatalf("Load() after failed reload error = %v", err)
	}
	defer reloaded.Close()
	if got, err := reloaded.Buffer([]byte("hello world\n")); err != nil || !strings.Contains(got, "text") {
		t.Errorf("Buffer() after reload = %q, %v", got, err)
	}
}

func TestLoadBuffers(t *testing.T) {
	// compiled databases are what magic_load_buffers accepts
	candidates := []string{"/usr/share/misc/magic.mgc", "/usr/share/file/magic.mgc", "/usr/lib/file/magic.mgc"}
	var data []byte
	for _, c := range candidates {
		if d, err := magickit.ReadDatabase(c); err == nil {
			data = d
			break
		}
	}
	if data == nil {
		t.Skip("no compiled magic database found")
	}

	e := magickit.NewEngine(magickit.DefaultEngine, libmagic.New())
	cookie, err := e.Open(magickit.FlagMIMEType)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := cookie.LoadBuffers([][]byte{data})
	if err != nil {
		cookie.Close()
		t.Fatalf("LoadBuffers() error = %v", err)
	}
	defer loaded.Close()

	got, err := loaded.Buffer([]byte("hello world\n"))
	if err != nil {
		t.Fatalf("Buffer() error = %v", err)
	}
	if !strings.HasPrefix(got, "text/") {
		t.Errorf("Buffer() = %q", got)
	}
}
