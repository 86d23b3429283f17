package deserialize

import (
	"bytes"
	"io"

	"github.com/hexbee-net/dictcol/encoding"
	"github.com/hexbee-net/errors"
)

// indexStream reads the dictionary indices of a data page.
type indexStream struct {
	dec *encoding.HybridDecoder

	// err is set when the values buffer could not be read; it is only
	// returned once an index is actually needed.
	err error
}

func newIndexStream(values []byte) *indexStream {
	dec, err := encoding.NewDictIndexDecoder(values)

	return &indexStream{dec: dec, err: err}
}

func (s *indexStream) next() (int32, error) {
	if s.err != nil {
		return 0, s.err
	}

	v, err := s.dec.Next()
	if err != nil {
		return 0, streamError(err, "failed to read dictionary index")
	}

	return v, nil
}

func (s *indexStream) skip(n int) error {
	if n == 0 {
		return nil
	}

	if s.err != nil {
		return s.err
	}

	if err := s.dec.Skip(n); err != nil {
		return streamError(err, "failed to skip dictionary indices")
	}

	return nil
}

// levelStream reads the definition levels of an optional flat column: a
// level of 1 is a valid row, 0 a null one.
type levelStream struct {
	dec *encoding.HybridDecoder
}

func newLevelStream(levels []byte) (*levelStream, error) {
	dec, err := encoding.NewHybridDecoder(1)
	if err != nil {
		return nil, err
	}

	if err := dec.Init(bytes.NewReader(levels)); err != nil {
		return nil, err
	}

	return &levelStream{dec: dec}, nil
}

func (s *levelStream) next() (bool, error) {
	v, err := s.dec.Next()
	if err != nil {
		return false, streamError(err, "failed to read definition level")
	}

	return v == 1, nil
}

// countValid consumes n levels and returns how many of them are valid.
func (s *levelStream) countValid(n int) (int, error) {
	valid := 0

	for i := 0; i < n; i++ {
		ok, err := s.next()
		if err != nil {
			return 0, err
		}

		if ok {
			valid++
		}
	}

	return valid, nil
}

// streamError reports the end of a stream before the expected number of
// values as a truncated stream.
func streamError(err error, msg string) error {
	if errors.Cause(err) == io.EOF {
		err = encoding.ErrTruncatedStream
	}

	return errors.Wrap(err, msg)
}
