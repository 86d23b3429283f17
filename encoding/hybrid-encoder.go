package encoding

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/hexbee-net/errors"
)

// minRLERun is the shortest repetition written as an RLE run.
const minRLERun = 8

// HybridEncoder writes values as RLE / bit-packed hybrid runs. Repetitions of
// at least 8 values starting on a group boundary are written as RLE runs, the
// rest is bit-packed.
type HybridEncoder struct {
	w        io.Writer
	original io.Writer

	bitWidth int
	values   []int32

	data *PackedArray
}

func NewHybridEncoder(bitWidth int) (*HybridEncoder, error) {
	e := &HybridEncoder{
		bitWidth: bitWidth,
		data:     &PackedArray{},
	}

	if err := e.data.Reset(bitWidth); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *HybridEncoder) Init(writer io.Writer) error {
	if writer == nil {
		return errors.WithStack(errNilWriter)
	}

	e.w = writer
	e.original = nil
	e.values = e.values[:0]

	return e.data.Reset(e.bitWidth)
}

// InitSize makes Close prefix the stream with its 4 bytes little-endian length.
func (e *HybridEncoder) InitSize(writer io.Writer) error {
	if writer == nil {
		return errors.WithStack(errNilWriter)
	}

	if err := e.Init(&bytes.Buffer{}); err != nil {
		return err
	}

	e.original = writer

	return nil
}

func (e *HybridEncoder) Encode(data []int32) error {
	for _, v := range data {
		if e.bitWidth < maxBitWidth && uint32(v)>>uint(e.bitWidth) != 0 {
			return errors.WithFields(
				errors.WithStack(errOutOfRange),
				errors.Fields{
					"value":     v,
					"bit-width": e.bitWidth,
				})
		}
	}

	e.values = append(e.values, data...)

	return nil
}

func (e *HybridEncoder) Close() error {
	if e.bitWidth == 0 {
		return nil
	}

	if err := e.flush(); err != nil {
		return err
	}

	if e.original != nil {
		data := e.w.(*bytes.Buffer).Bytes()
		size := uint32(len(data))

		if err := binary.Write(e.original, binary.LittleEndian, size); err != nil {
			return err
		}

		return writeFull(e.original, data)
	}

	return nil
}

func (e *HybridEncoder) flush() error {
	values := e.values

	for i := 0; i < len(values); {
		if run := repeated(values[i:]); run >= minRLERun {
			if err := e.rleEncode(values[i], run); err != nil {
				return err
			}

			i += run

			continue
		}

		j := i
		for j < len(values) {
			if j > i && repeated(values[j:]) >= minRLERun {
				break
			}

			j += packedArrayBufSize
			if j > len(values) {
				j = len(values)
			}
		}

		if err := e.bpEncode(values[i:j]); err != nil {
			return err
		}

		i = j
	}

	e.values = e.values[:0]

	return nil
}

func (e *HybridEncoder) rleEncode(v int32, count int) error {
	if err := writeUVarInt64(e.w, uint64(count)<<1); err != nil {
		return err
	}

	return writeFull(e.w, encodeRLEValue(v, e.bitWidth))
}

func (e *HybridEncoder) bpEncode(values []int32) error {
	if err := e.data.Reset(e.bitWidth); err != nil {
		return err
	}

	for _, v := range values {
		e.data.AppendSingle(v)
	}

	header := uint64(e.data.Groups())<<1 | 1
	if err := writeUVarInt64(e.w, header); err != nil {
		return err
	}

	return e.data.Write(e.w)
}

func repeated(values []int32) int {
	n := 1
	for n < len(values) && values[n] == values[0] {
		n++
	}

	return n
}
