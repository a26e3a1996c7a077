package intake

import (
	"bytes"
	"io"
	"mime/multipart"
)

// Source is one user-selected image file.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type fileHeaderSource struct {
	fh *multipart.FileHeader
}

// FromFileHeader adapts a multipart upload.
func FromFileHeader(fh *multipart.FileHeader) Source {
	return fileHeaderSource{fh: fh}
}

// FromFileHeaders adapts a multi-file form field, keeping selection order.
func FromFileHeaders(fhs []*multipart.FileHeader) []Source {
	out := make([]Source, 0, len(fhs))
	for _, fh := range fhs {
		out = append(out, FromFileHeader(fh))
	}
	return out
}

func (s fileHeaderSource) Name() string { return s.fh.Filename }

func (s fileHeaderSource) Open() (io.ReadCloser, error) {
	return s.fh.Open()
}

type bytesSource struct {
	name string
	data []byte
}

// FromBytes wraps raw file contents received some other way (gRPC, JSON).
func FromBytes(name string, data []byte) Source {
	return bytesSource{name: name, data: data}
}

func (s bytesSource) Name() string { return s.name }

func (s bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}
