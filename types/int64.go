package types //nolint:dupl // it's cleaner to keep each type separate, even with duplication

import (
	"encoding/binary"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

type Int64PlainDecoder struct {
}

func (d Int64PlainDecoder) DataType() arrow.DataType {
	return arrow.PrimitiveTypes.Int64
}

func (d Int64PlainDecoder) DecodeValues(mem memory.Allocator, buf []byte, count int) (arrow.Array, error) {
	if err := checkLen(buf, count*arrow.Int64SizeBytes); err != nil {
		return nil, err
	}

	values := make([]int64, count)
	for i := range values {
		values[i] = int64(binary.LittleEndian.Uint64(buf[i*arrow.Int64SizeBytes:]))
	}

	b := array.NewInt64Builder(mem)
	defer b.Release()

	b.AppendValues(values, nil)

	return b.NewArray(), nil
}
