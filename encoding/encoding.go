package encoding

import (
	"io"

	"github.com/hexbee-net/errors"
)

const (
	errNilReader       = errors.Error("reader is nil")
	errNilWriter       = errors.Error("writer is nil")
	errInvalidBitWidth = errors.Error("invalid bit-width")
	errOutOfRange      = errors.Error("out of range")
)

const (
	// ErrInvalidRun is returned when a run header of a hybrid stream is inconsistent.
	ErrInvalidRun = errors.Error("invalid hybrid run")
	// ErrTruncatedStream is returned when a stream ends in the middle of a run.
	ErrTruncatedStream = errors.Error("truncated stream")
)

const maxBitWidth = 32

type Decoder interface {
	Init(io.Reader) error
	InitSize(io.Reader) error

	Next() (int32, error)
}
