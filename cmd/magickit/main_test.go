package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/gobeaver/magickit"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--engine", "memory"}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	if err != nil {
		t.Logf("stderr: %s", stderr.String())
	}
	return stdout.String(), err
}

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.pdf":         "%PDF-1.7\n",
		"b.txt":         "hello\n",
		"sub/c.gif":     "GIF89a......",
		"sub/skip.tmp":  "\x00\x01\x02",
		"sub/deep/d.gz": "\x1f\x8b\x08\x00",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestScanText(t *testing.T) {
	dir := writeTree(t)

	out, err := run(t, "scan", "-j", "3", dir)
	if err != nil {
		t.Fatalf("scan error = %v", err)
	}

	// WalkDir order is lexical
	want := strings.Join([]string{
		filepath.Join(dir, "a.pdf") + ": PDF document",
		filepath.Join(dir, "b.txt") + ": ASCII text",
		filepath.Join(dir, "sub/c.gif") + ": GIF image data, version 89a",
		filepath.Join(dir, "sub/deep/d.gz") + ": gzip compressed data",
		filepath.Join(dir, "sub/skip.tmp") + ": data",
	}, "\n") + "\n"
	if out != want {
		t.Errorf("scan output =\n%s\nwant\n%s", out, want)
	}
}

func TestScanSingleFile(t *testing.T) {
	dir := writeTree(t)
	path := filepath.Join(dir, "a.pdf")

	out, err := run(t, "--flags", "MIME_TYPE", "scan", path)
	if err != nil {
		t.Fatal(err)
	}
	if out != path+": application/pdf\n" {
		t.Errorf("scan output = %q", out)
	}
}

func TestScanFilters(t *testing.T) {
	dir := writeTree(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"include", []string{"--include", "*.pdf"}, []string{"a.pdf"}},
		{"include nested", []string{"--include", "**.gz"}, []string{"sub/deep/d.gz"}},
		{"exclude", []string{"--exclude", "sub/**"}, []string{"a.pdf", "b.txt"}},
		{"both", []string{"--include", "sub/**", "--exclude", "**.tmp"}, []string{"sub/c.gif", "sub/deep/d.gz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"scan"}, tt.args...)
			out, err := run(t, append(args, dir)...)
			if err != nil {
				t.Fatal(err)
			}

			var got []string
			for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
				path, _, _ := strings.Cut(line, ": ")
				rel, _ := filepath.Rel(dir, path)
				got = append(got, filepath.ToSlash(rel))
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("scanned %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanFormats(t *testing.T) {
	dir := writeTree(t)

	out, err := run(t, "-o", "json", "scan", "--include", "*.pdf", dir)
	if err != nil {
		t.Fatal(err)
	}
	var r result
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if r.Path != filepath.Join(dir, "a.pdf") || r.Description != "PDF document" {
		t.Errorf("JSON result = %+v", r)
	}

	out, err = run(t, "-o", "yaml", "scan", "--include", "*.txt", dir)
	if err != nil {
		t.Fatal(err)
	}
	var rs []result
	if err := yaml.Unmarshal([]byte(out), &rs); err != nil {
		t.Fatalf("invalid YAML %q: %v", out, err)
	}
	if len(rs) != 1 || rs[0].Description != "ASCII text" {
		t.Errorf("YAML results = %+v", rs)
	}
}

func TestScanErrors(t *testing.T) {
	if _, err := run(t, "scan", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("scan of a missing path succeeded")
	}
	if _, err := run(t, "scan", "--include", "[", t.TempDir()); err == nil {
		t.Error("invalid glob accepted")
	}
	if _, err := run(t, "-o", "xml", "scan", t.TempDir()); err == nil {
		t.Error("unknown format accepted")
	}
	if _, err := run(t, "--log-level", "loud", "version"); err == nil {
		t.Error("unknown log level accepted")
	}
	if _, err := run(t, "--flags", "SHINY", "scan", t.TempDir()); err == nil {
		t.Error("unknown flag accepted")
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "memory version: 545 (file 5.45)\n" {
		t.Errorf("version output = %q", out)
	}

	out, err = run(t, "-o", "json", "version")
	if err != nil {
		t.Fatal(err)
	}
	var info versionInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatal(err)
	}
	if info.Version != 545 || info.Release != "5.45" {
		t.Errorf("version info = %+v", info)
	}
}

func TestDBCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	src := filepath.Join(dir, "local")
	if err := os.WriteFile(src, []byte("0 string MKIT magickit data\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if out, err := run(t, "db", "check", src); err != nil || out != "ok\n" {
		t.Errorf("db check = %q, %v", out, err)
	}
	if _, err := run(t, "db", "check", filepath.Join(dir, "missing")); err == nil {
		t.Error("db check of a missing file succeeded")
	}

	if _, err := run(t, "db", "compile", src); err != nil {
		t.Fatalf("db compile error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "local.mgc")); err != nil {
		t.Errorf("compiled database missing: %v", err)
	}
	lockPath := filepath.Join(dir, ".magickit-compile.lock")
	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("lock file removed: %v", err)
	}
	fileLock := flock.New(lockPath)
	if locked, err := fileLock.TryLock(); err != nil || !locked {
		t.Fatalf("lock not released after compile: %v, %v", locked, err)
	}
	fileLock.Unlock()
	// an existing lock file does not block the next compile
	if _, err := run(t, "db", "compile", src); err != nil {
		t.Errorf("second db compile error = %v", err)
	}

	// the compiled database is usable for scanning
	target := filepath.Join(dir, "target")
	os.WriteFile(target, []byte("MKIT"), 0o644)
	out, err := run(t, "-m", filepath.Join(dir, "local.mgc"), "scan", target)
	if err != nil {
		t.Fatal(err)
	}
	if out != target+": magickit data\n" {
		t.Errorf("scan with compiled database = %q", out)
	}

	if _, err := run(t, "db", "list", src); err != nil {
		t.Errorf("db list error = %v", err)
	}
}

func TestPathFilter(t *testing.T) {
	f, err := newPathFilter([]string{"*.go", "docs/**"}, []string{"*_test.go"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"main_test.go", false},
		{"pkg/main.go", false},
		{"docs/a/b.md", true},
		{"README.md", false},
	}
	for _, tt := range tests {
		if got := f.match(tt.path); got != tt.want {
			t.Errorf("match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestRelease(t *testing.T) {
	for v, want := range map[int]string{545: "5.45", 501: "5.01", 600: "6.00"} {
		if got := release(v); got != want {
			t.Errorf("release(%d) = %q, want %q", v, got, want)
		}
	}
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	opts := &options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	d, err := magickit.NewDescriber(&magickit.Config{Engine: "memory"})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	var out syncBuffer
	p, _ := newPrinter(&out, "text")
	filter, _ := newPathFilter(nil, []string{"*.tmp"})

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, opts, d, p, filter, []string{dir}, ready)
	}()
	<-ready

	skipped := filepath.Join(dir, "x.tmp")
	os.WriteFile(skipped, []byte("%PDF-1.7"), 0o644)
	path := filepath.Join(dir, "new.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatal(err)
	}

	want := path + ": PDF document"
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), want) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watch() error = %v", err)
	}
	if !strings.Contains(out.String(), want) {
		t.Errorf("watch output = %q, want a line %q", out.String(), want)
	}
	if strings.Contains(out.String(), skipped) {
		t.Errorf("excluded file reported: %q", out.String())
	}
}
