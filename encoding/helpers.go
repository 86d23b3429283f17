package encoding

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/hexbee-net/errors"
)

type byteReader struct {
	io.Reader
}

func (r byteReader) ReadByte() (byte, error) {
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r.Reader, buf); err != nil {
		return 0, err
	}

	return buf[0], nil
}

func readUVarInt32(r io.Reader) (int32, error) {
	b, ok := r.(io.ByteReader)
	if !ok {
		b = &byteReader{Reader: r}
	}

	i, err := binary.ReadUvarint(b)
	if err != nil {
		return 0, err
	}

	if i > math.MaxInt32 {
		return 0, errors.WithFields(
			errors.WithStack(errOutOfRange),
			errors.Fields{
				"value": i,
			})
	}

	return int32(i), nil
}

func writeUVarInt64(w io.Writer, in uint64) error {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, in)

	return writeFull(w, buf[:n])
}

func writeFull(w io.Writer, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	cnt, err := w.Write(buf)
	if err != nil {
		return err
	}

	if cnt != len(buf) {
		return errors.WithFields(
			errors.New("invalid number of bytes written"),
			errors.Fields{
				"expected": len(buf),
				"actual":   cnt,
			})
	}

	return nil
}

// encodeRLEValue writes v on the minimal number of bytes able to hold bitWidth bits.
func encodeRLEValue(v int32, bitWidth int) []byte {
	size := (bitWidth + 7) / 8
	out := make([]byte, size)

	for i := range out {
		out[i] = byte(uint32(v) >> (8 * uint(i)))
	}

	return out
}

func decodeRLEValue(value []byte) int32 {
	var v uint32
	for i := range value {
		v |= uint32(value[i]) << (8 * uint(i))
	}

	return int32(v)
}
