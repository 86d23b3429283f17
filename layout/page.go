package layout

import (
	"github.com/hangxie/parquet-go/v2/parquet"
)

// Page is a decoded-from-the-wire page of a column chunk: either a *DictPage
// or a *DataPage.
type Page interface {
	page()
}

// DictPage holds the raw values of a dictionary page, after decompression.
type DictPage struct {
	Buffer    []byte
	NumValues int
	Encoding  parquet.Encoding
	IsSorted  bool
}

func (*DictPage) page() {}

// DataPage holds the split, decompressed buffers of a data page.
type DataPage struct {
	Encoding   parquet.Encoding
	Repetition parquet.FieldRepetitionType

	// NumValues is the number of level entries of the page, one per row for
	// flat columns.
	NumValues int
	NumRows   int

	// DefinitionLevels is the RLE/bit-packed hybrid stream of the definition
	// levels, without length prefix. Empty for required columns.
	DefinitionLevels []byte

	// Values is the encoded values section: for dictionary encoded pages, a
	// bit-width byte followed by the hybrid stream of indices.
	Values []byte

	// Selection restricts the rows read from the page. nil selects every row.
	Selection []Interval
}

func (*DataPage) page() {}

func (p *DataPage) IsOptional() bool {
	return p.Repetition == parquet.FieldRepetitionType_OPTIONAL
}

func (p *DataPage) IsFiltered() bool {
	return p.Selection != nil
}

// ColumnDescriptor holds what the page reader needs to know about the column
// chunk it reads.
type ColumnDescriptor struct {
	Type       parquet.Type
	TypeLength int
	Repetition parquet.FieldRepetitionType
	Codec      parquet.CompressionCodec

	// TotalCompressedSize bounds the bytes read for the chunk, headers
	// included. Zero reads until the end of the input.
	TotalCompressedSize int64
}
