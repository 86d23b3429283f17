package layout

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"

	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hexbee-net/dictcol/compression"
	"github.com/hexbee-net/dictcol/encoding"
	"github.com/hexbee-net/errors"
)

// ChunkWriter serializes pages into a column chunk readable by PageReader.
type ChunkWriter struct {
	w          io.Writer
	desc       ColumnDescriptor
	compressor compression.BlockCompressor
	v2         bool
}

type ChunkWriterOption func(*ChunkWriter)

// WithDataPageV2 makes the writer emit DATA_PAGE_V2 pages.
func WithDataPageV2() ChunkWriterOption {
	return func(w *ChunkWriter) {
		w.v2 = true
	}
}

func NewChunkWriter(w io.Writer, desc ColumnDescriptor, opts ...ChunkWriterOption) (*ChunkWriter, error) {
	if w == nil {
		return nil, errors.WithStack(errNilWriter)
	}

	if desc.Repetition == parquet.FieldRepetitionType_REPEATED {
		return nil, errors.New("repeated columns are not supported")
	}

	c, err := compression.Lookup(desc.Codec)
	if err != nil {
		return nil, err
	}

	writer := &ChunkWriter{
		w:          w,
		desc:       desc,
		compressor: c,
	}

	for _, opt := range opts {
		opt(writer)
	}

	return writer, nil
}

func (w *ChunkWriter) WritePage(p Page) error {
	switch p := p.(type) {
	case *DictPage:
		return w.writeDictPage(p)
	case *DataPage:
		if w.v2 {
			return w.writeDataPageV2(p)
		}

		return w.writeDataPageV1(p)
	default:
		return errors.New("unknown page kind")
	}
}

func (w *ChunkWriter) writeDictPage(p *DictPage) error {
	header := parquet.NewPageHeader()
	header.Type = parquet.PageType_DICTIONARY_PAGE
	header.DictionaryPageHeader = parquet.NewDictionaryPageHeader()
	header.DictionaryPageHeader.NumValues = int32(p.NumValues)
	header.DictionaryPageHeader.Encoding = p.Encoding

	isSorted := p.IsSorted
	header.DictionaryPageHeader.IsSorted = &isSorted

	return w.writeBlock(header, nil, p.Buffer)
}

func (w *ChunkWriter) writeDataPageV1(p *DataPage) error {
	body := &bytes.Buffer{}

	if w.desc.Repetition != parquet.FieldRepetitionType_REQUIRED {
		if err := binary.Write(body, binary.LittleEndian, uint32(len(p.DefinitionLevels))); err != nil {
			return err
		}

		body.Write(p.DefinitionLevels)
	}

	body.Write(p.Values)

	header := parquet.NewPageHeader()
	header.Type = parquet.PageType_DATA_PAGE
	header.DataPageHeader = parquet.NewDataPageHeader()
	header.DataPageHeader.NumValues = int32(p.NumValues)
	header.DataPageHeader.Encoding = p.Encoding
	header.DataPageHeader.DefinitionLevelEncoding = parquet.Encoding_RLE
	header.DataPageHeader.RepetitionLevelEncoding = parquet.Encoding_RLE

	return w.writeBlock(header, nil, body.Bytes())
}

func (w *ChunkWriter) writeDataPageV2(p *DataPage) error {
	var levels []byte
	if w.desc.Repetition != parquet.FieldRepetitionType_REQUIRED {
		levels = p.DefinitionLevels
	}

	nulls, err := countNulls(levels, p.NumValues)
	if err != nil {
		return err
	}

	numRows := p.NumRows
	if numRows == 0 {
		numRows = p.NumValues
	}

	header := parquet.NewPageHeader()
	header.Type = parquet.PageType_DATA_PAGE_V2
	header.DataPageHeaderV2 = parquet.NewDataPageHeaderV2()
	header.DataPageHeaderV2.NumValues = int32(p.NumValues)
	header.DataPageHeaderV2.NumNulls = int32(nulls)
	header.DataPageHeaderV2.NumRows = int32(numRows)
	header.DataPageHeaderV2.Encoding = p.Encoding
	header.DataPageHeaderV2.DefinitionLevelsByteLength = int32(len(levels))
	header.DataPageHeaderV2.IsCompressed = true

	return w.writeBlock(header, levels, p.Values)
}

// writeBlock writes the header followed by the uncompressed prefix and the
// compressed body.
func (w *ChunkWriter) writeBlock(header *parquet.PageHeader, prefix, body []byte) error {
	compressed, err := w.compressor.CompressBlock(body)
	if err != nil {
		return errors.Wrap(err, "failed to compress page")
	}

	header.UncompressedPageSize = int32(len(prefix) + len(body))
	header.CompressedPageSize = int32(len(prefix) + len(compressed))

	if err := writeThrift(context.Background(), header, w.w); err != nil {
		return errors.Wrap(err, "failed to write page header")
	}

	if _, err := w.w.Write(prefix); err != nil {
		return err
	}

	_, err = w.w.Write(compressed)

	return err
}

func countNulls(levels []byte, n int) (int, error) {
	if len(levels) == 0 {
		return 0, nil
	}

	d, err := encoding.NewHybridDecoder(1)
	if err != nil {
		return 0, err
	}

	if err := d.Init(bytes.NewReader(levels)); err != nil {
		return 0, err
	}

	nulls := 0
	for i := 0; i < n; i++ {
		v, err := d.Next()
		if err != nil {
			return 0, errors.Wrap(err, "failed to read definition levels")
		}

		if v == 0 {
			nulls++
		}
	}

	return nulls, nil
}
