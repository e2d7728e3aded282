package magickit

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1F, 0x8B}
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// Shared decoder, safe for concurrent use.
var zstdDecoder, _ = zstd.NewReader(nil)

// ReadDatabase reads a magic database file into memory for LoadBuffers. Files
// compressed with gzip or zstd, as some distributions ship magic.mgc, are
// decompressed.
func ReadDatabase(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read database: %w", err)
	}

	switch {
	case bytes.HasPrefix(data, zstdMagic):
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress database %s: %w", path, err)
		}
		return out, nil

	case bytes.HasPrefix(data, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decompress database %s: %w", path, err)
		}
		defer zr.Close()

		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress database %s: %w", path, err)
		}
		return out, nil
	}
	return data, nil
}

// ReadDatabases reads every path of paths with ReadDatabase. The default database
// has no files to read and yields ErrInvalidDatabasePath.
func ReadDatabases(paths DatabasePaths) ([][]byte, error) {
	if paths.IsDefault() {
		return nil, fmt.Errorf("%w: the default database cannot be read into memory", ErrInvalidDatabasePath)
	}

	var buffers [][]byte
	for _, p := range paths.Paths() {
		data, err := ReadDatabase(p)
		if err != nil {
			return nil, err
		}
		buffers = append(buffers, data)
	}
	return buffers, nil
}
