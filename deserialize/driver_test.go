package deserialize

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hexbee-net/dictcol/encoding"
	"github.com/hexbee-net/dictcol/layout"
	"github.com/hexbee-net/errors"
	"github.com/stretchr/testify/require"
	"github.com/tj/assert"
)

func TestDriver(t *testing.T) {
	t.Run("ChunkSizes", TestDriver_ChunkSizes)
	t.Run("Protocol", TestDriver_Protocol)
	t.Run("OptionalNulls", TestDriver_OptionalNulls)
	t.Run("DictionaryAfterData", TestDriver_DictionaryAfterData)
	t.Run("DictionarySharing", TestDriver_DictionarySharing)
	t.Run("DictionaryReplacement", TestDriver_DictionaryReplacement)
	t.Run("KeyOverflow", TestDriver_KeyOverflow)
	t.Run("KeyOutOfBounds", TestDriver_KeyOutOfBounds)
	t.Run("NotImplemented", TestDriver_NotImplemented)
	t.Run("Limit", TestDriver_Limit)
	t.Run("Selection", TestDriver_Selection)
	t.Run("MalformedStream", TestDriver_MalformedStream)
	t.Run("EmptyStream", TestDriver_EmptyStream)
	t.Run("PageError", TestDriver_PageError)
	t.Run("KeyTypes", TestDriver_KeyTypes)
}

func threePages(t *testing.T) []layout.Page {
	return []layout.Page{
		dictPage(letters(30)...),
		requiredPage(t, seq(0, 10)...),
		requiredPage(t, seq(10, 10)...),
		requiredPage(t, seq(20, 10)...),
	}
}

func TestDriver_ChunkSizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		chunkSize int
		want      []int
	}{
		{name: "Fifteen", chunkSize: 15, want: []int{15, 15}},
		{name: "Unset", chunkSize: 0, want: []int{30}},
		{name: "Seven", chunkSize: 7, want: []int{7, 7, 7, 7, 2}},
		{name: "Ten", chunkSize: 10, want: []int{10, 10, 10}},
		{name: "One", chunkSize: 1, want: []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{name: "Larger", chunkSize: 100, want: []int{30}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newTestDriver[uint32](t, tt.chunkSize, 0, threePages(t)...)

			arrs, err := drain(t, d)
			require.NoError(t, err)

			assert.Equal(t, tt.want, lengths(arrs))
			assert.Equal(t, letters(30), resolve(arrs...))
		})
	}
}

func TestDriver_Protocol(t *testing.T) {
	t.Parallel()

	d := newTestDriver[uint8](t, 15, 0, threePages(t)...)

	want := []Outcome{OutcomeNeedMore, OutcomeProduced, OutcomeProduced, OutcomeDone, OutcomeDone}

	for _, o := range want {
		outcome, arr, err := d.Poll()
		require.NoError(t, err)
		assert.Equal(t, o, outcome, o.String())

		if arr != nil {
			assert.Equal(t, 15, arr.Len())
			arr.Release()
		}
	}
}

func TestDriver_OptionalNulls(t *testing.T) {
	t.Parallel()

	d := newTestDriver[uint16](t, 0, 0,
		dictPage("a", "b", "c"),
		optionalPage(t, 0, -1, 2),
	)

	arrs, err := drain(t, d)
	require.NoError(t, err)
	require.Len(t, arrs, 1)

	arr := arrs[0]
	assert.Equal(t, 3, arr.Len())
	assert.Equal(t, 1, arr.NullN())
	assert.Equal(t, []bool{true, false, true}, []bool{arr.IsValid(0), arr.IsValid(1), arr.IsValid(2)})
	assert.Equal(t, 0, arr.GetValueIndex(0))
	assert.Equal(t, 2, arr.GetValueIndex(2))
	assert.Equal(t, []string{"a", "<null>", "c"}, resolve(arr))
}

func TestDriver_DictionaryAfterData(t *testing.T) {
	t.Parallel()

	d := newTestDriver[uint32](t, 0, 0,
		requiredPage(t, 0, 1),
		dictPage("a", "b"),
	)

	arrs, err := drain(t, d)

	assert.Equal(t, ErrMissingDictionary, errors.Cause(err))
	assert.Empty(t, arrs)
}

func TestDriver_DictionarySharing(t *testing.T) {
	t.Parallel()

	d := newTestDriver[uint32](t, 4, 0, threePages(t)...)

	arrs, err := drain(t, d)
	require.NoError(t, err)
	require.Len(t, arrs, 8)

	for _, a := range arrs[1:] {
		assert.Same(t, arrs[0].Dictionary().Data(), a.Dictionary().Data())
	}
}

func TestDriver_DictionaryReplacement(t *testing.T) {
	t.Parallel()

	d := newTestDriver[uint32](t, 3, 0,
		dictPage("a", "b", "c", "d"),
		requiredPage(t, 3, 2, 1, 0),
		dictPage("w", "x", "y", "z"),
		requiredPage(t, 0, 1, 2, 3),
	)

	arrs, err := drain(t, d)
	require.NoError(t, err)

	// rows decoded against the first dictionary are not mixed with the next ones.
	assert.Equal(t, []int{3, 1, 3, 1}, lengths(arrs))

	// the first dictionary is released by the driver, the arrays keep theirs.
	d.Close()

	assert.Equal(t, []string{"d", "c", "b", "a", "w", "x", "y", "z"}, resolve(arrs...))
	assert.Same(t, arrs[0].Dictionary().Data(), arrs[1].Dictionary().Data())
	assert.NotSame(t, arrs[1].Dictionary().Data(), arrs[2].Dictionary().Data())
}

func TestDriver_KeyOverflow(t *testing.T) {
	t.Parallel()

	// a dictionary of 300 entries cannot be indexed with 8 bits keys.
	d := newTestDriver[uint8](t, 0, 0,
		dictPage(letters(300)...),
		requiredPage(t, 0, 255, 299),
	)

	arrs, err := drain(t, d)

	assert.Equal(t, ErrKeyOverflow, errors.Cause(err))
	assert.Empty(t, arrs)

	d16 := newTestDriver[uint16](t, 0, 0,
		dictPage(letters(300)...),
		requiredPage(t, 0, 255, 299),
	)

	arrs, err = drain(t, d16)
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "vj", "nl"}, resolve(arrs...))
}

func TestDriver_KeyOutOfBounds(t *testing.T) {
	t.Parallel()

	d := newTestDriver[uint32](t, 0, 0,
		dictPage("a", "b", "c"),
		requiredPage(t, 0, 5),
	)

	_, err := drain(t, d)

	assert.Equal(t, ErrKeyOutOfBounds, errors.Cause(err))
}

func TestDriver_NotImplemented(t *testing.T) {
	t.Parallel()

	plain := requiredPage(t, 0)
	plain.Encoding = parquet.Encoding_PLAIN

	repeated := requiredPage(t, 0)
	repeated.Repetition = parquet.FieldRepetitionType_REPEATED

	for _, p := range []*layout.DataPage{plain, repeated} {
		d := newTestDriver[uint32](t, 0, 0, dictPage("a"), p)

		_, err := drain(t, d)
		assert.Equal(t, ErrNotImplemented, errors.Cause(err))
	}
}

func TestDriver_Limit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		chunkSize int
		limit     int
		want      []int
	}{
		{name: "WithinPage", chunkSize: 5, limit: 12, want: []int{5, 5, 2}},
		{name: "Unbounded", chunkSize: 0, limit: 21, want: []int{21}},
		{name: "AboveRows", chunkSize: 20, limit: 100, want: []int{20, 10}},
	}

	for _, tt := range tests {
		d := newTestDriver[uint32](t, tt.chunkSize, tt.limit, threePages(t)...)

		arrs, err := drain(t, d)
		require.NoError(t, err, tt.name)

		assert.Equal(t, tt.want, lengths(arrs), tt.name)
	}
}

func TestDriver_Selection(t *testing.T) {
	t.Parallel()

	required := requiredPage(t, seq(0, 10)...)
	required.Selection = []layout.Interval{{Start: 2, Length: 3}, {Start: 7, Length: 2}}

	// rows: a, null, c, null, e, f, null, h
	optional := optionalPage(t, 0, -1, 2, -1, 4, 5, -1, 7)
	optional.Selection = []layout.Interval{{Start: 1, Length: 2}, {Start: 5, Length: 3}}

	d := newTestDriver[uint32](t, 3, 0,
		dictPage(letters(10)...),
		required,
		optional,
	)

	arrs, err := drain(t, d)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 3, 3, 1}, lengths(arrs))
	assert.Equal(t, []string{"ca", "da", "ea", "ha", "ia", "<null>", "ca", "fa", "<null>", "ha"}, resolve(arrs...))
}

func TestDriver_MalformedStream(t *testing.T) {
	t.Parallel()

	truncated := requiredPage(t, 0, 1, 2, 3, 0, 1, 2, 3, 0)
	truncated.NumValues = 30

	invalid := requiredPage(t, 0)
	invalid.Values = []byte{3, 0}

	tests := []struct {
		name string
		page *layout.DataPage
		want error
	}{
		{name: "Truncated", page: truncated, want: encoding.ErrTruncatedStream},
		{name: "InvalidRun", page: invalid, want: encoding.ErrInvalidRun},
	}

	for _, tt := range tests {
		d := newTestDriver[uint32](t, 0, 0, dictPage("a", "b", "c", "d"), tt.page)

		_, err := drain(t, d)
		assert.Equal(t, tt.want, errors.Cause(err), tt.name)
	}
}

func TestDriver_EmptyStream(t *testing.T) {
	t.Parallel()

	d := newTestDriver[uint32](t, 10, 0)

	outcome, arr, err := d.Poll()

	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	assert.Nil(t, arr)

	// a dictionary and an empty page produce nothing either.
	d = newTestDriver[uint32](t, 10, 0, dictPage("a"), requiredPage(t))

	arrs, err := drain(t, d)
	require.NoError(t, err)
	assert.Empty(t, arrs)
	assert.NotNil(t, d.Dictionary())
}

func TestDriver_PageError(t *testing.T) {
	t.Parallel()

	errPage := errors.New("disk on fire")

	d := newTestDriver[uint32](t, 0, 0)
	d.pages = &pageSlice{pages: []layout.Page{dictPage("a")}, err: errPage}

	_, _, err := d.Poll()
	assert.Equal(t, errPage, errors.Cause(err))
}

func TestDriver_KeyTypes(t *testing.T) {
	t.Parallel()

	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Uint8, KeyType[uint8]()))
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Uint16, KeyType[uint16]()))
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Uint32, KeyType[uint32]()))
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Uint64, KeyType[uint64]()))

	d := newTestDriver[uint64](t, 0, 0, dictPage("a", "b"), requiredPage(t, 1, 0))

	arrs, err := drain(t, d)
	require.NoError(t, err)
	require.Len(t, arrs, 1)

	typ := arrs[0].DataType().(*arrow.DictionaryType)
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Uint64, typ.IndexType))
	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.Binary, typ.ValueType))
	assert.IsType(t, &array.Uint64{}, arrs[0].Indices())
}
