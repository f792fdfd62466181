package attach

import (
	"bytes"
	"io"
	"os"
)

// Source is a lazy handle to an attachment's content. Content is not
// materialized until submission time, when the payload builder reads
// every source fully.
type Source interface {
	Open() (io.ReadCloser, error)
}

// PathSource reads the attachment from disk when opened.
type PathSource struct {
	Path string
}

// Open opens the underlying file. Missing or unreadable files surface
// as a file-read failure during payload construction.
func (s PathSource) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// BytesSource holds the attachment content in memory. Used for
// uploads that arrive as raw bytes and for tests.
type BytesSource struct {
	Data []byte
}

// Open returns a reader over the in-memory content.
func (s BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}
