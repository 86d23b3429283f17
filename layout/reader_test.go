package layout

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hexbee-net/dictcol/compression"
	"github.com/hexbee-net/dictcol/encoding"
	"github.com/hexbee-net/errors"
	"github.com/stretchr/testify/require"
	"github.com/tj/assert"
)

func TestPageReader(t *testing.T) {
	t.Run("RoundTrip", TestPageReader_RoundTrip)
	t.Run("IndexPage", TestPageReader_IndexPage)
	t.Run("UnknownPageType", TestPageReader_UnknownPageType)
	t.Run("Truncated", TestPageReader_Truncated)
	t.Run("TotalCompressedSize", TestPageReader_TotalCompressedSize)
	t.Run("RowSelection", TestPageReader_RowSelection)
	t.Run("InvalidDictEncoding", TestPageReader_InvalidDictEncoding)
	t.Run("NilReader", TestPageReader_NilReader)
}

func testPages(t *testing.T) (*DictPage, *DataPage) {
	t.Helper()

	levels, err := encoding.EncodeLevels(1, []int32{1, 0, 1, 1, 0})
	require.NoError(t, err)

	indices, err := encoding.EncodeDictIndices([]int32{2, 0, 1})
	require.NoError(t, err)

	dict := &DictPage{
		Buffer:    []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0},
		NumValues: 3,
		Encoding:  parquet.Encoding_PLAIN,
	}

	data := &DataPage{
		Encoding:         parquet.Encoding_RLE_DICTIONARY,
		Repetition:       parquet.FieldRepetitionType_OPTIONAL,
		NumValues:        5,
		NumRows:          5,
		DefinitionLevels: levels,
		Values:           indices,
	}

	return dict, data
}

func writeChunk(t *testing.T, desc ColumnDescriptor, v2 bool, pages ...Page) []byte {
	t.Helper()

	buf := &bytes.Buffer{}

	var opts []ChunkWriterOption
	if v2 {
		opts = append(opts, WithDataPageV2())
	}

	w, err := NewChunkWriter(buf, desc, opts...)
	require.NoError(t, err)

	for _, p := range pages {
		require.NoError(t, w.WritePage(p))
	}

	return buf.Bytes()
}

func TestPageReader_RoundTrip(t *testing.T) {
	t.Parallel()

	dict, data := testPages(t)

	codecs := []parquet.CompressionCodec{
		parquet.CompressionCodec_UNCOMPRESSED,
		parquet.CompressionCodec_SNAPPY,
		parquet.CompressionCodec_GZIP,
		parquet.CompressionCodec_ZSTD,
	}

	for _, codec := range codecs {
		for _, v2 := range []bool{false, true} {
			desc := ColumnDescriptor{
				Type:       parquet.Type_INT32,
				Repetition: parquet.FieldRepetitionType_OPTIONAL,
				Codec:      codec,
			}

			chunk := writeChunk(t, desc, v2, dict, data, data)

			r, err := NewPageReader(bytes.NewReader(chunk), desc)
			require.NoError(t, err)

			p, err := r.Next()
			require.NoError(t, err)
			assert.Equal(t, dict, p)

			for i := 0; i < 2; i++ {
				p, err = r.Next()
				require.NoError(t, err)

				got, ok := p.(*DataPage)
				require.True(t, ok)
				assert.Equal(t, data.DefinitionLevels, got.DefinitionLevels)
				assert.Equal(t, data.Values, got.Values)
				assert.Equal(t, 5, got.NumValues)
				assert.Equal(t, parquet.Encoding_RLE_DICTIONARY, got.Encoding)
				assert.True(t, got.IsOptional())
				assert.False(t, got.IsFiltered())
			}

			_, err = r.Next()
			assert.Equal(t, io.EOF, err)
			assert.Equal(t, int64(len(chunk)), r.Offset())
		}
	}
}

func TestPageReader_IndexPage(t *testing.T) {
	t.Parallel()

	desc := ColumnDescriptor{
		Type:       parquet.Type_INT32,
		Repetition: parquet.FieldRepetitionType_REQUIRED,
	}

	header := parquet.NewPageHeader()
	header.Type = parquet.PageType_INDEX_PAGE
	header.IndexPageHeader = parquet.NewIndexPageHeader()
	header.CompressedPageSize = 3
	header.UncompressedPageSize = 3

	buf := &bytes.Buffer{}
	require.NoError(t, writeThrift(context.Background(), header, buf))
	buf.Write([]byte{1, 2, 3})

	dict, _ := testPages(t)
	buf.Write(writeChunk(t, desc, false, dict))

	r, err := NewPageReader(buf, desc)
	require.NoError(t, err)

	p, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, dict, p)
}

func TestPageReader_UnknownPageType(t *testing.T) {
	t.Parallel()

	header := parquet.NewPageHeader()
	header.Type = parquet.PageType(42)

	buf := &bytes.Buffer{}
	require.NoError(t, writeThrift(context.Background(), header, buf))

	r, err := NewPageReader(buf, ColumnDescriptor{})
	require.NoError(t, err)

	_, err = r.Next()
	assert.EqualError(t, errors.Cause(err), "page type not supported")
}

func TestPageReader_Truncated(t *testing.T) {
	t.Parallel()

	desc := ColumnDescriptor{
		Type:       parquet.Type_INT32,
		Repetition: parquet.FieldRepetitionType_OPTIONAL,
	}

	dict, _ := testPages(t)
	chunk := writeChunk(t, desc, false, dict)

	tests := []int{1, len(chunk) - 1}

	for _, size := range tests {
		r, err := NewPageReader(bytes.NewReader(chunk[:size]), desc)
		require.NoError(t, err)

		_, err = r.Next()
		assert.Error(t, err)
		assert.NotEqual(t, io.EOF, err)
	}
}

func TestPageReader_TotalCompressedSize(t *testing.T) {
	t.Parallel()

	desc := ColumnDescriptor{
		Type:       parquet.Type_INT32,
		Repetition: parquet.FieldRepetitionType_OPTIONAL,
	}

	dict, data := testPages(t)
	first := writeChunk(t, desc, false, dict, data)

	// a second chunk follows the first one in the input.
	input := append(append([]byte{}, first...), writeChunk(t, desc, false, dict)...)

	desc.TotalCompressedSize = int64(len(first))

	r, err := NewPageReader(bytes.NewReader(input), desc)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = r.Next()
		require.NoError(t, err)
	}

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestPageReader_RowSelection(t *testing.T) {
	t.Parallel()

	desc := ColumnDescriptor{
		Type:       parquet.Type_INT32,
		Repetition: parquet.FieldRepetitionType_OPTIONAL,
	}

	dict, data := testPages(t)
	chunk := writeChunk(t, desc, true, dict, data, data)

	r, err := NewPageReader(bytes.NewReader(chunk), desc, WithRowSelection([]Interval{{Start: 3, Length: 4}}))
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)

	want := [][]Interval{
		{{Start: 3, Length: 2}},
		{{Start: 0, Length: 2}},
	}

	for _, sel := range want {
		p, err := r.Next()
		require.NoError(t, err)

		got := p.(*DataPage)
		assert.True(t, got.IsFiltered())
		assert.Equal(t, sel, got.Selection)
	}
}

func TestPageReader_InvalidDictEncoding(t *testing.T) {
	t.Parallel()

	desc := ColumnDescriptor{Type: parquet.Type_INT32}

	dict, _ := testPages(t)
	dict.Encoding = parquet.Encoding_DELTA_BINARY_PACKED

	r, err := NewPageReader(bytes.NewReader(writeChunk(t, desc, false, dict)), desc)
	require.NoError(t, err)

	_, err = r.Next()
	assert.Error(t, err)
}

func TestPageReader_NilReader(t *testing.T) {
	t.Parallel()

	_, err := NewPageReader(nil, ColumnDescriptor{})
	assert.EqualError(t, errors.Cause(err), errNilReader.Error())

	_, err = NewPageReader(bytes.NewReader(nil), ColumnDescriptor{Codec: parquet.CompressionCodec_LZO})
	assert.Equal(t, compression.ErrUnsupportedCodec, errors.Cause(err))
}
