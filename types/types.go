package types

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hexbee-net/errors"
)

const (
	errInvalidType     = errors.Error("invalid type")
	errInvalidEncoding = errors.Error("invalid dictionary page encoding")
	errShortBuffer     = errors.Error("buffer too short for values")
	errNegativeCount   = errors.Error("negative values count")
)

// ValuesDecoder decodes count PLAIN encoded values into an arrow array.
type ValuesDecoder interface {
	DataType() arrow.DataType
	DecodeValues(mem memory.Allocator, buf []byte, count int) (arrow.Array, error)
}
