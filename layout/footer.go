package layout

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"strings"

	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hexbee-net/errors"
)

const (
	magic         = "PAR1"
	magicLen      = len(magic)
	footerLenSize = 4
	footerLen     = int64(footerLenSize + magicLen)
)

const (
	errInvalidFile    = errors.Error("invalid parquet file")
	errInvalidSchema  = errors.Error("invalid parquet schema")
	errColumnNotFound = errors.Error("column not found")
	errNestedColumn   = errors.Error("nested optional columns are not supported")
)

// ColumnChunk locates a column chunk in a parquet file.
type ColumnChunk struct {
	Descriptor ColumnDescriptor
	Offset     int64
	NumValues  int64
}

// ReadFileMetaData reads the footer of a parquet file of the given size.
func ReadFileMetaData(ctx context.Context, r io.ReaderAt, size int64) (*parquet.FileMetaData, error) {
	if size < int64(magicLen)+footerLen {
		return nil, errors.WithFields(
			errors.Wrap(errInvalidFile, "file too small"),
			errors.Fields{
				"size": size,
			})
	}

	buf := make([]byte, magicLen)

	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, errors.Wrap(err, "failed to read file magic header")
	}

	if !bytes.Equal(buf, []byte(magic)) {
		return nil, errors.Wrap(errInvalidFile, "invalid file header")
	}

	tail := make([]byte, footerLen)

	if _, err := r.ReadAt(tail, size-footerLen); err != nil {
		return nil, errors.Wrap(err, "failed to read file footer")
	}

	if !bytes.Equal(tail[footerLenSize:], []byte(magic)) {
		return nil, errors.Wrap(errInvalidFile, "invalid file footer")
	}

	fl := int64(binary.LittleEndian.Uint32(tail))
	if fl <= 0 || fl > size-footerLen-int64(magicLen) {
		return nil, errors.WithFields(
			errors.Wrap(errInvalidFile, "invalid footer length"),
			errors.Fields{
				"length": fl,
			})
	}

	meta := parquet.NewFileMetaData()

	if err := readThrift(ctx, meta, io.NewSectionReader(r, size-footerLen-fl, fl)); err != nil {
		return nil, errors.Wrap(err, "failed to read file meta data")
	}

	return meta, nil
}

// WriteFileMetaData writes meta as the footer of a parquet file.
func WriteFileMetaData(ctx context.Context, w io.Writer, meta *parquet.FileMetaData) error {
	buf := &bytes.Buffer{}

	if err := writeThrift(ctx, meta, buf); err != nil {
		return errors.Wrap(err, "failed to write file meta data")
	}

	buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(buf.Len())))
	buf.WriteString(magic)

	_, err := w.Write(buf.Bytes())

	return err
}

// FindColumnChunk returns the chunk of the column at the dotted path in the
// given row group.
func FindColumnChunk(meta *parquet.FileMetaData, rowGroup int, path string) (ColumnChunk, error) {
	leaves, err := flattenSchema(meta.GetSchema())
	if err != nil {
		return ColumnChunk{}, err
	}

	if rowGroup < 0 || rowGroup >= len(meta.GetRowGroups()) {
		return ColumnChunk{}, errors.WithFields(
			errors.New("row group out of range"),
			errors.Fields{
				"row-group":  rowGroup,
				"row-groups": len(meta.GetRowGroups()),
			})
	}

	for _, chunk := range meta.RowGroups[rowGroup].GetColumns() {
		md := chunk.GetMetaData()
		if md == nil || strings.Join(md.GetPathInSchema(), ".") != path {
			continue
		}

		leaf, ok := leaves[path]
		if !ok {
			return ColumnChunk{}, errors.WithFields(
				errors.Wrap(errInvalidSchema, "column chunk without schema element"),
				errors.Fields{
					"path": path,
				})
		}

		rep, err := leaf.repetition()
		if err != nil {
			return ColumnChunk{}, errors.WithFields(err, errors.Fields{
				"path": path,
			})
		}

		offset := md.GetDataPageOffset()
		if md.IsSetDictionaryPageOffset() && md.GetDictionaryPageOffset() > 0 && md.GetDictionaryPageOffset() < offset {
			offset = md.GetDictionaryPageOffset()
		}

		return ColumnChunk{
			Descriptor: ColumnDescriptor{
				Type:                md.GetType(),
				TypeLength:          int(leaf.element.GetTypeLength()),
				Repetition:          rep,
				Codec:               md.GetCodec(),
				TotalCompressedSize: md.GetTotalCompressedSize(),
			},
			Offset:    offset,
			NumValues: md.GetNumValues(),
		}, nil
	}

	return ColumnChunk{}, errors.WithFields(
		errors.WithStack(errColumnNotFound),
		errors.Fields{
			"path":      path,
			"row-group": rowGroup,
		})
}

type leafColumn struct {
	element *parquet.SchemaElement
	maxD    int
	maxR    int
}

// repetition maps the levels of a leaf column onto the repetition of a flat
// column.
func (l leafColumn) repetition() (parquet.FieldRepetitionType, error) {
	switch {
	case l.maxR > 0:
		return parquet.FieldRepetitionType_REPEATED, nil
	case l.maxD == 0:
		return parquet.FieldRepetitionType_REQUIRED, nil
	case l.maxD == 1:
		return parquet.FieldRepetitionType_OPTIONAL, nil
	default:
		return 0, errors.WithFields(
			errors.WithStack(errNestedColumn),
			errors.Fields{
				"max-definition-level": l.maxD,
			})
	}
}

// flattenSchema returns the leaf columns of a schema by dotted path. The
// first element is the root of the schema.
func flattenSchema(schema []*parquet.SchemaElement) (map[string]leafColumn, error) {
	if len(schema) < 1 {
		return nil, errors.Wrap(errInvalidSchema, "no schema element found")
	}

	leaves := map[string]leafColumn{}

	idx, err := readGroupSchema(schema, leaves, "", 0, 0, 0)
	if err != nil {
		return nil, err
	}

	if idx != len(schema) {
		return nil, errors.WithFields(
			errors.Wrap(errInvalidSchema, "unexpected trailing schema elements"),
			errors.Fields{
				"index": idx,
				"size":  len(schema),
			})
	}

	return leaves, nil
}

func readGroupSchema(schema []*parquet.SchemaElement, leaves map[string]leafColumn, name string, idx, dLevel, rLevel int) (int, error) {
	s := schema[idx]

	if s.GetNumChildren() <= 0 {
		return 0, errors.WithFields(
			errors.Wrap(errInvalidSchema, "group without children"),
			errors.Fields{
				"index": idx,
			})
	}

	l := int(s.GetNumChildren())

	if len(schema) <= idx+l {
		return 0, errors.WithFields(
			errors.Wrap(errInvalidSchema, "not enough element in schema list"),
			errors.Fields{
				"index": idx,
			})
	}

	// The root element carries no level.
	if idx > 0 {
		dLevel, rLevel = levels(s, dLevel, rLevel)
		name = joinPath(name, s.GetName())
	}

	idx++

	for i := 0; i < l; i++ {
		if idx >= len(schema) {
			return 0, errors.WithFields(
				errors.Wrap(errInvalidSchema, "schema index out of bound"),
				errors.Fields{
					"index": idx,
					"size":  len(schema),
				})
		}

		child := schema[idx]

		if !child.IsSetType() {
			var err error
			if idx, err = readGroupSchema(schema, leaves, name, idx, dLevel, rLevel); err != nil {
				return 0, err
			}

			continue
		}

		if child.GetName() == "" {
			return 0, errors.WithFields(
				errors.Wrap(errInvalidSchema, "name in schema is empty"),
				errors.Fields{
					"index": idx,
				})
		}

		d, r := levels(child, dLevel, rLevel)
		leaves[joinPath(name, child.GetName())] = leafColumn{
			element: child,
			maxD:    d,
			maxR:    r,
		}

		idx++
	}

	return idx, nil
}

func levels(s *parquet.SchemaElement, dLevel, rLevel int) (int, int) {
	if !s.IsSetRepetitionType() {
		return dLevel, rLevel
	}

	if s.GetRepetitionType() != parquet.FieldRepetitionType_REQUIRED {
		dLevel++
	}

	if s.GetRepetitionType() == parquet.FieldRepetitionType_REPEATED {
		rLevel++
	}

	return dLevel, rLevel
}

func joinPath(name, child string) string {
	if name == "" {
		return child
	}

	return name + "." + child
}
