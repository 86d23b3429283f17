package types

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

const sizeInt96 = 12

// Int96PlainDecoder keeps the 12 bytes of each value as fixed size binary.
type Int96PlainDecoder struct {
}

func (d Int96PlainDecoder) DataType() arrow.DataType {
	return &arrow.FixedSizeBinaryType{ByteWidth: sizeInt96}
}

func (d Int96PlainDecoder) DecodeValues(mem memory.Allocator, buf []byte, count int) (arrow.Array, error) {
	if err := checkLen(buf, count*sizeInt96); err != nil {
		return nil, err
	}

	b := array.NewFixedSizeBinaryBuilder(mem, &arrow.FixedSizeBinaryType{ByteWidth: sizeInt96})
	defer b.Release()

	b.Reserve(count)

	for i := 0; i < count; i++ {
		b.Append(buf[i*sizeInt96 : (i+1)*sizeInt96])
	}

	return b.NewArray(), nil
}
