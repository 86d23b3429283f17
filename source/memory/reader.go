package memory

import (
	"bytes"
)

// Reader serves an in-memory buffer.
type Reader struct {
	*bytes.Reader
}

func NewReader(buf []byte) *Reader {
	return &Reader{
		Reader: bytes.NewReader(buf),
	}
}

func (r *Reader) Close() error {
	return nil
}
