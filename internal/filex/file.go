// Package filex reads local files the CLI attaches as event images.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is a named blob read from disk.
type File struct {
	Name string
	Data []byte
}

// ReadLimited reads path, refusing directories and files larger than
// maxBytes. A maxBytes of zero or less disables the limit.
func ReadLimited(path string, maxBytes int64) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	if maxBytes > 0 && fi.Size() > maxBytes {
		return File{}, fmt.Errorf("%s is larger than %d bytes", path, maxBytes)
	}

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return File{}, fmt.Errorf("%s is larger than %d bytes", path, maxBytes)
	}

	return File{Name: filepath.Base(path), Data: data}, nil
}
