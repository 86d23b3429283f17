package encoding

import (
	"bytes"
	"math/bits"
)

// EncodeDictIndices returns a dictionary-index buffer holding indices: the
// smallest bit width able to hold them on one byte, followed by the hybrid runs.
func EncodeDictIndices(indices []int32) ([]byte, error) {
	bitWidth := 0
	for _, v := range indices {
		if l := bits.Len32(uint32(v)); l > bitWidth {
			bitWidth = l
		}
	}

	buf := &bytes.Buffer{}
	buf.WriteByte(byte(bitWidth))

	if err := encodeHybrid(buf, bitWidth, indices); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// EncodeLevels returns the hybrid stream of levels, without length prefix.
func EncodeLevels(bitWidth int, levels []int32) ([]byte, error) {
	buf := &bytes.Buffer{}

	if err := encodeHybrid(buf, bitWidth, levels); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func encodeHybrid(buf *bytes.Buffer, bitWidth int, values []int32) error {
	e, err := NewHybridEncoder(bitWidth)
	if err != nil {
		return err
	}

	if err := e.Init(buf); err != nil {
		return err
	}

	if err := e.Encode(values); err != nil {
		return err
	}

	return e.Close()
}
