package types //nolint:dupl // it's cleaner to keep each type separate, even with duplication

import (
	"encoding/binary"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

type Int32PlainDecoder struct {
}

func (d Int32PlainDecoder) DataType() arrow.DataType {
	return arrow.PrimitiveTypes.Int32
}

func (d Int32PlainDecoder) DecodeValues(mem memory.Allocator, buf []byte, count int) (arrow.Array, error) {
	if err := checkLen(buf, count*arrow.Int32SizeBytes); err != nil {
		return nil, err
	}

	values := make([]int32, count)
	for i := range values {
		values[i] = int32(binary.LittleEndian.Uint32(buf[i*arrow.Int32SizeBytes:]))
	}

	b := array.NewInt32Builder(mem)
	defer b.Release()

	b.AppendValues(values, nil)

	return b.NewArray(), nil
}
