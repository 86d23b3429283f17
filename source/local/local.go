package local

import (
	"os"

	"github.com/hexbee-net/errors"
)

// Reader reads a file of the local file system.
type Reader struct {
	FilePath string

	file *os.File
	size int64
}

// NewReader opens a local file Reader.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open source file")
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "failed to stat source file")
	}

	return &Reader{
		FilePath: path,
		file:     f,
		size:     info.Size(),
	}, nil
}

func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	return r.file.ReadAt(p, off)
}

func (r *Reader) Size() int64 {
	return r.size
}

func (r *Reader) Close() error {
	return r.file.Close()
}
