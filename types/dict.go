package types

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hexbee-net/dictcol/layout"
	"github.com/hexbee-net/errors"
)

// DictReader decodes dictionary pages of one column into arrow arrays.
type DictReader struct {
	decoder ValuesDecoder
	mem     memory.Allocator
}

// NewDictReader returns the dictionary page reader for the physical type of
// the column. A nil allocator uses the arrow default one.
func NewDictReader(desc layout.ColumnDescriptor, mem memory.Allocator) (*DictReader, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	var d ValuesDecoder

	switch desc.Type {
	case parquet.Type_BOOLEAN:
		d = BooleanPlainDecoder{}
	case parquet.Type_INT32:
		d = Int32PlainDecoder{}
	case parquet.Type_INT64:
		d = Int64PlainDecoder{}
	case parquet.Type_INT96:
		d = Int96PlainDecoder{}
	case parquet.Type_FLOAT:
		d = FloatPlainDecoder{}
	case parquet.Type_DOUBLE:
		d = DoublePlainDecoder{}
	case parquet.Type_BYTE_ARRAY:
		d = ByteArrayPlainDecoder{}
	case parquet.Type_FIXED_LEN_BYTE_ARRAY:
		if desc.TypeLength <= 0 {
			return nil, errors.WithFields(
				errors.New("invalid fixed length byte array length"),
				errors.Fields{
					"length": desc.TypeLength,
				})
		}

		d = ByteArrayPlainDecoder{Length: desc.TypeLength}
	default:
		return nil, errors.WithFields(
			errors.WithStack(errInvalidType),
			errors.Fields{
				"type": desc.Type.String(),
			})
	}

	return &DictReader{
		decoder: d,
		mem:     mem,
	}, nil
}

// DataType returns the arrow type of the dictionary values.
func (r *DictReader) DataType() arrow.DataType {
	return r.decoder.DataType()
}

func (r *DictReader) ReadDict(page *layout.DictPage) (arrow.Array, error) {
	if page.Encoding != parquet.Encoding_PLAIN && page.Encoding != parquet.Encoding_PLAIN_DICTIONARY {
		return nil, errors.WithFields(
			errors.WithStack(errInvalidEncoding),
			errors.Fields{
				"encoding": page.Encoding.String(),
			})
	}

	if page.NumValues < 0 {
		return nil, errors.WithFields(
			errors.WithStack(errNegativeCount),
			errors.Fields{
				"num-values": page.NumValues,
			})
	}

	values, err := r.decoder.DecodeValues(r.mem, page.Buffer, page.NumValues)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "failed to decode dictionary values"),
			errors.Fields{
				"type":       r.decoder.DataType().String(),
				"num-values": page.NumValues,
			})
	}

	return values, nil
}
