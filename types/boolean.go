package types

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// BooleanPlainDecoder reads values bit-packed, least significant bit first.
type BooleanPlainDecoder struct {
}

func (d BooleanPlainDecoder) DataType() arrow.DataType {
	return arrow.FixedWidthTypes.Boolean
}

func (d BooleanPlainDecoder) DecodeValues(mem memory.Allocator, buf []byte, count int) (arrow.Array, error) {
	if err := checkLen(buf, int(bitutil.BytesForBits(int64(count)))); err != nil {
		return nil, err
	}

	values := make([]bool, count)
	for i := range values {
		values[i] = bitutil.BitIsSet(buf, i)
	}

	b := array.NewBooleanBuilder(mem)
	defer b.Release()

	b.AppendValues(values, nil)

	return b.NewArray(), nil
}
