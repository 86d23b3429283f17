package types

import (
	"encoding/binary"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hexbee-net/errors"
)

const sizeLength = 4

type ByteArrayPlainDecoder struct {
	// if the length is set, then this is a fix size array decoder, unless it reads the len first
	Length int
}

func (d ByteArrayPlainDecoder) DataType() arrow.DataType {
	if d.Length > 0 {
		return &arrow.FixedSizeBinaryType{ByteWidth: d.Length}
	}

	return arrow.BinaryTypes.Binary
}

func (d ByteArrayPlainDecoder) DecodeValues(mem memory.Allocator, buf []byte, count int) (arrow.Array, error) {
	if d.Length > 0 {
		return d.decodeFixed(mem, buf, count)
	}

	b := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	defer b.Release()

	b.Reserve(count)

	pos := 0
	for i := 0; i < count; i++ {
		if err := checkLen(buf[pos:], sizeLength); err != nil {
			return nil, errors.WithFields(err, errors.Fields{"index": i})
		}

		l := int32(binary.LittleEndian.Uint32(buf[pos:]))
		pos += sizeLength

		if l < 0 {
			return nil, errors.WithFields(
				errors.New("bytearray/plain: len is negative"),
				errors.Fields{
					"index":  i,
					"length": l,
				})
		}

		if err := checkLen(buf[pos:], int(l)); err != nil {
			return nil, errors.WithFields(err, errors.Fields{"index": i})
		}

		b.Append(buf[pos : pos+int(l)])
		pos += int(l)
	}

	return b.NewArray(), nil
}

func (d ByteArrayPlainDecoder) decodeFixed(mem memory.Allocator, buf []byte, count int) (arrow.Array, error) {
	if err := checkLen(buf, count*d.Length); err != nil {
		return nil, err
	}

	b := array.NewFixedSizeBinaryBuilder(mem, &arrow.FixedSizeBinaryType{ByteWidth: d.Length})
	defer b.Release()

	b.Reserve(count)

	for i := 0; i < count; i++ {
		b.Append(buf[i*d.Length : (i+1)*d.Length])
	}

	return b.NewArray(), nil
}
