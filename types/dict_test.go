package types

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hexbee-net/dictcol/layout"
	"github.com/hexbee-net/errors"
	"github.com/stretchr/testify/require"
	"github.com/tj/assert"
)

func TestDictReader(t *testing.T) {
	t.Run("Int32", TestDictReader_Int32)
	t.Run("Int64", TestDictReader_Int64)
	t.Run("Float", TestDictReader_Float)
	t.Run("Double", TestDictReader_Double)
	t.Run("Boolean", TestDictReader_Boolean)
	t.Run("ByteArray", TestDictReader_ByteArray)
	t.Run("FixedLenByteArray", TestDictReader_FixedLenByteArray)
	t.Run("Int96", TestDictReader_Int96)
	t.Run("ShortBuffer", TestDictReader_ShortBuffer)
	t.Run("InvalidEncoding", TestDictReader_InvalidEncoding)
	t.Run("InvalidType", TestDictReader_InvalidType)
}

func readDict(t *testing.T, typ parquet.Type, typeLength int, buf []byte, count int) arrow.Array {
	t.Helper()

	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })

	r, err := NewDictReader(layout.ColumnDescriptor{Type: typ, TypeLength: typeLength}, mem)
	require.NoError(t, err)

	values, err := r.ReadDict(&layout.DictPage{
		Buffer:    buf,
		NumValues: count,
		Encoding:  parquet.Encoding_PLAIN,
	})
	require.NoError(t, err)
	t.Cleanup(values.Release)

	assert.True(t, arrow.TypeEqual(r.DataType(), values.DataType()))
	assert.Equal(t, count, values.Len())

	return values
}

func TestDictReader_Int32(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:], 7)
	binary.LittleEndian.PutUint32(buf[4:], uint32(0xffffffff))
	binary.LittleEndian.PutUint32(buf[8:], 42)

	values := readDict(t, parquet.Type_INT32, 0, buf, 3)

	assert.Equal(t, []int32{7, -1, 42}, values.(*array.Int32).Int32Values())
}

func TestDictReader_Int64(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:], 1<<40)
	binary.LittleEndian.PutUint64(buf[8:], 3)

	values := readDict(t, parquet.Type_INT64, 0, buf, 2)

	assert.Equal(t, []int64{1 << 40, 3}, values.(*array.Int64).Int64Values())
}

func TestDictReader_Float(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(1.5))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(-2))

	values := readDict(t, parquet.Type_FLOAT, 0, buf, 2)

	assert.Equal(t, []float32{1.5, -2}, values.(*array.Float32).Float32Values())
}

func TestDictReader_Double(t *testing.T) {
	t.Parallel()

	buf := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF0, 0x3F, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 8, 0x40}

	values := readDict(t, parquet.Type_DOUBLE, 0, buf, 3)

	assert.Equal(t, []float64{1, 2, 3}, values.(*array.Float64).Float64Values())
}

func TestDictReader_Boolean(t *testing.T) {
	t.Parallel()

	values := readDict(t, parquet.Type_BOOLEAN, 0, []byte{0b00000101, 0b1}, 9)

	b := values.(*array.Boolean)
	got := make([]bool, b.Len())
	for i := range got {
		got[i] = b.Value(i)
	}

	assert.Equal(t, []bool{true, false, true, false, false, false, false, false, true}, got)
}

func TestDictReader_ByteArray(t *testing.T) {
	t.Parallel()

	buf := []byte{3, 0, 0, 0, 'f', 'o', 'o', 0, 0, 0, 0, 2, 0, 0, 0, 'b', 'a'}

	values := readDict(t, parquet.Type_BYTE_ARRAY, 0, buf, 3)

	b := values.(*array.Binary)
	assert.Equal(t, []byte("foo"), b.Value(0))
	assert.Empty(t, b.Value(1))
	assert.Equal(t, []byte("ba"), b.Value(2))
}

func TestDictReader_FixedLenByteArray(t *testing.T) {
	t.Parallel()

	values := readDict(t, parquet.Type_FIXED_LEN_BYTE_ARRAY, 2, []byte("abcdef"), 3)

	b := values.(*array.FixedSizeBinary)
	assert.Equal(t, []byte("cd"), b.Value(1))

	_, err := NewDictReader(layout.ColumnDescriptor{Type: parquet.Type_FIXED_LEN_BYTE_ARRAY}, nil)
	assert.Error(t, err)
}

func TestDictReader_Int96(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 24)
	buf[12] = 9

	values := readDict(t, parquet.Type_INT96, 0, buf, 2)

	b := values.(*array.FixedSizeBinary)
	assert.Len(t, b.Value(0), sizeInt96)
	assert.Equal(t, byte(9), b.Value(1)[0])
}

func TestDictReader_ShortBuffer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		typ   parquet.Type
		buf   []byte
		count int
	}{
		{name: "Int32", typ: parquet.Type_INT32, buf: make([]byte, 7), count: 2},
		{name: "Int64", typ: parquet.Type_INT64, buf: make([]byte, 15), count: 2},
		{name: "Boolean", typ: parquet.Type_BOOLEAN, buf: []byte{1}, count: 9},
		{name: "ByteArrayLength", typ: parquet.Type_BYTE_ARRAY, buf: []byte{1, 0}, count: 1},
		{name: "ByteArrayValue", typ: parquet.Type_BYTE_ARRAY, buf: []byte{4, 0, 0, 0, 'a'}, count: 1},
		{name: "Int96", typ: parquet.Type_INT96, buf: make([]byte, 20), count: 2},
	}

	for _, tt := range tests {
		r, err := NewDictReader(layout.ColumnDescriptor{Type: tt.typ}, nil)
		require.NoError(t, err, tt.name)

		_, err = r.ReadDict(&layout.DictPage{Buffer: tt.buf, NumValues: tt.count})
		assert.EqualError(t, errors.Cause(err), errShortBuffer.Error(), tt.name)
	}
}

func TestDictReader_InvalidEncoding(t *testing.T) {
	t.Parallel()

	r, err := NewDictReader(layout.ColumnDescriptor{Type: parquet.Type_INT32}, nil)
	require.NoError(t, err)

	_, err = r.ReadDict(&layout.DictPage{Encoding: parquet.Encoding_RLE_DICTIONARY})
	assert.EqualError(t, errors.Cause(err), errInvalidEncoding.Error())

	_, err = r.ReadDict(&layout.DictPage{NumValues: -1})
	assert.EqualError(t, errors.Cause(err), errNegativeCount.Error())
}

func TestDictReader_InvalidType(t *testing.T) {
	t.Parallel()

	_, err := NewDictReader(layout.ColumnDescriptor{Type: parquet.Type(99)}, nil)
	assert.EqualError(t, errors.Cause(err), errInvalidType.Error())
}
