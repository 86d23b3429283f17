package types //nolint:dupl // it's cleaner to keep each type separate, even with duplication

import (
	"encoding/binary"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

type FloatPlainDecoder struct {
}

func (d FloatPlainDecoder) DataType() arrow.DataType {
	return arrow.PrimitiveTypes.Float32
}

func (d FloatPlainDecoder) DecodeValues(mem memory.Allocator, buf []byte, count int) (arrow.Array, error) {
	if err := checkLen(buf, count*arrow.Float32SizeBytes); err != nil {
		return nil, err
	}

	values := make([]float32, count)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*arrow.Float32SizeBytes:]))
	}

	b := array.NewFloat32Builder(mem)
	defer b.Release()

	b.AppendValues(values, nil)

	return b.NewArray(), nil
}
