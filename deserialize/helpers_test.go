package deserialize

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hexbee-net/dictcol/encoding"
	"github.com/hexbee-net/dictcol/layout"
	"github.com/hexbee-net/dictcol/types"
	"github.com/stretchr/testify/require"
)

type pageSlice struct {
	pages []layout.Page
	err   error
}

func (s *pageSlice) Next() (layout.Page, error) {
	if len(s.pages) == 0 {
		if s.err != nil {
			return nil, s.err
		}

		return nil, io.EOF
	}

	p := s.pages[0]
	s.pages = s.pages[1:]

	return p, nil
}

func dictPage(values ...string) *layout.DictPage {
	var buf []byte
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v)))
		buf = append(buf, v...)
	}

	return &layout.DictPage{
		Buffer:    buf,
		NumValues: len(values),
		Encoding:  parquet.Encoding_PLAIN_DICTIONARY,
	}
}

func requiredPage(t *testing.T, indices ...int32) *layout.DataPage {
	t.Helper()

	values, err := encoding.EncodeDictIndices(indices)
	require.NoError(t, err)

	return &layout.DataPage{
		Encoding:   parquet.Encoding_RLE_DICTIONARY,
		Repetition: parquet.FieldRepetitionType_REQUIRED,
		NumValues:  len(indices),
		NumRows:    len(indices),
		Values:     values,
	}
}

// optionalPage builds an optional page; negative indices are null rows.
func optionalPage(t *testing.T, indices ...int32) *layout.DataPage {
	t.Helper()

	levels := make([]int32, len(indices))
	valid := make([]int32, 0, len(indices))

	for i, v := range indices {
		if v >= 0 {
			levels[i] = 1
			valid = append(valid, v)
		}
	}

	defLevels, err := encoding.EncodeLevels(1, levels)
	require.NoError(t, err)

	values, err := encoding.EncodeDictIndices(valid)
	require.NoError(t, err)

	return &layout.DataPage{
		Encoding:         parquet.Encoding_PLAIN_DICTIONARY,
		Repetition:       parquet.FieldRepetitionType_OPTIONAL,
		NumValues:        len(indices),
		NumRows:          len(indices),
		DefinitionLevels: defLevels,
		Values:           values,
	}
}

func seq(from, n int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(from + i)
	}

	return out
}

func letters(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a'+i%26)) + string(rune('a'+i/26))
	}

	return out
}

func newTestDriver[K Key](t *testing.T, chunkSize, limit int, pages ...layout.Page) *Driver[K] {
	t.Helper()

	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })

	dictReader, err := types.NewDictReader(layout.ColumnDescriptor{Type: parquet.Type_BYTE_ARRAY}, mem)
	require.NoError(t, err)

	d := NewDriver[K](&pageSlice{pages: pages}, dictReader, chunkSize, limit)
	t.Cleanup(d.Close)

	return d
}

// drain polls the driver until it is done and returns every produced array.
func drain[K Key](t *testing.T, d *Driver[K]) ([]*array.Dictionary, error) {
	t.Helper()

	var out []*array.Dictionary

	for {
		outcome, arr, err := d.Poll()
		if err != nil {
			return out, err
		}

		switch outcome {
		case OutcomeProduced:
			require.NotNil(t, arr)
			t.Cleanup(arr.Release)
			out = append(out, arr)
		case OutcomeNeedMore:
			require.Nil(t, arr)
		case OutcomeDone:
			return out, nil
		}
	}
}

func lengths(arrs []*array.Dictionary) []int {
	out := make([]int, len(arrs))
	for i, a := range arrs {
		out[i] = a.Len()
	}

	return out
}

// resolve returns the value of every row; nulls are returned as "<null>".
func resolve(arrs ...*array.Dictionary) []string {
	var out []string

	for _, a := range arrs {
		dict := a.Dictionary().(*array.Binary)

		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				out = append(out, "<null>")
				continue
			}

			out = append(out, dict.ValueString(a.GetValueIndex(i)))
		}
	}

	return out
}
