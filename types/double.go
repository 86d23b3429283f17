package types //nolint:dupl // it's cleaner to keep each type separate, even with duplication

import (
	"encoding/binary"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

type DoublePlainDecoder struct {
}

func (d DoublePlainDecoder) DataType() arrow.DataType {
	return arrow.PrimitiveTypes.Float64
}

func (d DoublePlainDecoder) DecodeValues(mem memory.Allocator, buf []byte, count int) (arrow.Array, error) {
	if err := checkLen(buf, count*arrow.Float64SizeBytes); err != nil {
		return nil, err
	}

	values := make([]float64, count)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*arrow.Float64SizeBytes:]))
	}

	b := array.NewFloat64Builder(mem)
	defer b.Release()

	b.AppendValues(values, nil)

	return b.NewArray(), nil
}
