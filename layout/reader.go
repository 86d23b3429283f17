package layout

import (
	"context"
	"encoding/binary"
	"io"

	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hexbee-net/dictcol/compression"
	"github.com/hexbee-net/dictcol/encoding"
	"github.com/hexbee-net/errors"
)

const (
	errNilReader = errors.Error("reader is nil")
	errNilWriter = errors.Error("writer is nil")
)

// PageReader iterates over the pages of a column chunk.
type PageReader struct {
	r          *offsetReader
	desc       ColumnDescriptor
	compressor compression.BlockCompressor

	selection []Interval
	rows      int
}

type PageReaderOption func(*PageReader)

// WithRowSelection restricts the rows read from the column chunk. Intervals
// are relative to the first row of the chunk and are distributed across the
// data pages as they are read.
func WithRowSelection(sel []Interval) PageReaderOption {
	return func(r *PageReader) {
		r.selection = sel
		if r.selection == nil {
			r.selection = []Interval{}
		}
	}
}

func NewPageReader(r io.Reader, desc ColumnDescriptor, opts ...PageReaderOption) (*PageReader, error) {
	if r == nil {
		return nil, errors.WithStack(errNilReader)
	}

	c, err := compression.Lookup(desc.Codec)
	if err != nil {
		return nil, err
	}

	reader := &PageReader{
		r:          &offsetReader{inner: r},
		desc:       desc,
		compressor: c,
	}

	for _, opt := range opts {
		opt(reader)
	}

	return reader, nil
}

// Next returns the next page of the chunk, or io.EOF once every page has
// been read.
func (r *PageReader) Next() (Page, error) {
	for {
		if r.desc.TotalCompressedSize > 0 && r.r.Count() >= r.desc.TotalCompressedSize {
			return nil, io.EOF
		}

		offset := r.r.Count()

		pageHeader := parquet.NewPageHeader()
		if err := readThrift(context.Background(), pageHeader, r.r); err != nil {
			if r.r.Count() == offset && r.r.err == io.EOF {
				return nil, io.EOF
			}

			return nil, errors.WithFields(
				errors.Wrap(err, "failed to read page header"),
				errors.Fields{
					"offset": offset,
				})
		}

		var (
			p   Page
			err error
		)

		switch pageHeader.Type {
		case parquet.PageType_DICTIONARY_PAGE:
			p, err = r.readDictPage(pageHeader)

		case parquet.PageType_DATA_PAGE:
			p, err = r.readDataPageV1(pageHeader)

		case parquet.PageType_DATA_PAGE_V2:
			p, err = r.readDataPageV2(pageHeader)

		case parquet.PageType_INDEX_PAGE:
			if _, err := readBlock(r.r, pageHeader.CompressedPageSize); err != nil {
				return nil, errors.Wrap(err, "failed to skip index page")
			}

			continue

		default:
			return nil, errors.WithFields(
				errors.New("page type not supported"),
				errors.Fields{
					"page-type": pageHeader.Type.String(),
				})
		}

		if err != nil {
			return nil, errors.WithFields(err, errors.Fields{
				"offset":    offset,
				"page-type": pageHeader.Type.String(),
			})
		}

		return p, nil
	}
}

// Offset returns the number of bytes read from the chunk.
func (r *PageReader) Offset() int64 {
	return r.r.Count()
}

func (r *PageReader) readDictPage(pageHeader *parquet.PageHeader) (*DictPage, error) {
	h := pageHeader.DictionaryPageHeader
	if h == nil {
		return nil, errors.New("missing dictionary page header")
	}

	if h.NumValues < 0 {
		return nil, errors.WithFields(
			errors.New("negative NumValues in DICTIONARY_PAGE"),
			errors.Fields{
				"num-values": h.NumValues,
			})
	}

	if h.Encoding != parquet.Encoding_PLAIN && h.Encoding != parquet.Encoding_PLAIN_DICTIONARY {
		return nil, errors.WithFields(
			errors.New("only Encoding_PLAIN and Encoding_PLAIN_DICTIONARY are supported for dictionary pages"),
			errors.Fields{
				"encoding": h.Encoding.String(),
			})
	}

	data, err := readBlockData(r.r, r.compressor, pageHeader.CompressedPageSize, pageHeader.UncompressedPageSize)
	if err != nil {
		return nil, err
	}

	return &DictPage{
		Buffer:    data,
		NumValues: int(h.NumValues),
		Encoding:  h.Encoding,
		IsSorted:  h.GetIsSorted(),
	}, nil
}

func (r *PageReader) readDataPageV1(pageHeader *parquet.PageHeader) (*DataPage, error) {
	h := pageHeader.DataPageHeader
	if h == nil {
		return nil, errors.New("missing data page header")
	}

	if h.NumValues < 0 {
		return nil, errors.WithFields(
			errors.New("negative NumValues in DATA_PAGE"),
			errors.Fields{
				"num-values": h.NumValues,
			})
	}

	if r.desc.Repetition != parquet.FieldRepetitionType_REQUIRED && h.DefinitionLevelEncoding != parquet.Encoding_RLE {
		return nil, errors.WithFields(
			errors.New("encoding not supported for definition and repetition level"),
			errors.Fields{
				"encoding": h.DefinitionLevelEncoding.String(),
			})
	}

	data, err := readBlockData(r.r, r.compressor, pageHeader.CompressedPageSize, pageHeader.UncompressedPageSize)
	if err != nil {
		return nil, err
	}

	p := &DataPage{
		Encoding:   h.Encoding,
		Repetition: r.desc.Repetition,
		NumValues:  int(h.NumValues),
		NumRows:    int(h.NumValues),
	}

	if r.desc.Repetition == parquet.FieldRepetitionType_REPEATED {
		if _, data, err = splitLevels(data); err != nil {
			return nil, errors.Wrap(err, "failed to read repetition levels")
		}
	}

	if r.desc.Repetition != parquet.FieldRepetitionType_REQUIRED {
		if p.DefinitionLevels, data, err = splitLevels(data); err != nil {
			return nil, errors.Wrap(err, "failed to read definition levels")
		}
	}

	p.Values = data
	p.Selection = r.pageSelection(p.NumValues)

	return p, nil
}

func (r *PageReader) readDataPageV2(pageHeader *parquet.PageHeader) (*DataPage, error) {
	h := pageHeader.DataPageHeaderV2
	if h == nil {
		return nil, errors.New("missing data page header")
	}

	if h.NumValues < 0 {
		return nil, errors.WithFields(
			errors.New("negative NumValues in DATA_PAGE_V2"),
			errors.Fields{
				"num-values": h.NumValues,
			})
	}

	if h.RepetitionLevelsByteLength < 0 || h.DefinitionLevelsByteLength < 0 {
		return nil, errors.WithFields(
			errors.New("invalid levels byte length"),
			errors.Fields{
				"repetition": h.RepetitionLevelsByteLength,
				"definition": h.DefinitionLevelsByteLength,
			})
	}

	// In page V2 the levels are never compressed and their sizes are in the header.
	levelsSize := h.RepetitionLevelsByteLength + h.DefinitionLevelsByteLength

	levels, err := readBlock(r.r, levelsSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read levels")
	}

	var values []byte
	if h.IsCompressed {
		values, err = readBlockData(r.r, r.compressor, pageHeader.CompressedPageSize-levelsSize, pageHeader.UncompressedPageSize-levelsSize)
	} else {
		values, err = readBlock(r.r, pageHeader.CompressedPageSize-levelsSize)
	}

	if err != nil {
		return nil, err
	}

	p := &DataPage{
		Encoding:         h.Encoding,
		Repetition:       r.desc.Repetition,
		NumValues:        int(h.NumValues),
		NumRows:          int(h.NumRows),
		DefinitionLevels: levels[h.RepetitionLevelsByteLength:],
		Values:           values,
	}

	p.Selection = r.pageSelection(p.NumValues)

	return p, nil
}

func (r *PageReader) pageSelection(n int) []Interval {
	if r.selection == nil {
		return nil
	}

	sel := SliceSelection(r.selection, r.rows, n)
	r.rows += n

	return sel
}

// splitLevels splits a v1 page body on its 4 bytes little-endian length
// prefixed level stream.
func splitLevels(data []byte) (levels, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, errors.Wrap(encoding.ErrTruncatedStream, "missing levels length")
	}

	size := binary.LittleEndian.Uint32(data)
	if int64(size) > int64(len(data)-4) {
		return nil, nil, errors.WithFields(
			errors.Wrap(encoding.ErrTruncatedStream, "levels larger than page"),
			errors.Fields{
				"levels-size": size,
				"page-size":   len(data),
			})
	}

	return data[4 : 4+size], data[4+size:], nil
}
