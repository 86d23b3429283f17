package source

import (
	"io"

	"github.com/hexbee-net/errors"
)

const errInvalidRange = errors.Error("invalid byte range")

// Reader gives random access to a stored object of known size.
type Reader interface {
	io.ReaderAt
	io.Closer

	Size() int64
}

// Section returns a reader of the size bytes of r starting at offset.
// A size of zero reads up to the end of r.
func Section(r Reader, offset, size int64) (*io.SectionReader, error) {
	total := r.Size()

	if size == 0 {
		size = total - offset
	}

	if offset < 0 || size < 0 || offset+size > total {
		return nil, errors.WithFields(
			errors.WithStack(errInvalidRange),
			errors.Fields{
				"offset": offset,
				"size":   size,
				"total":  total,
			})
	}

	return io.NewSectionReader(r, offset, size), nil
}
