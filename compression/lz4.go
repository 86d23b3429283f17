package compression //nolint:dupl // it's easier to duplicate the algorithm wrappers

import (
	"bytes"

	"github.com/hexbee-net/errors"
	"github.com/pierrec/lz4/v4"
)

// LZ4 handles the framed LZ4 codec.
type LZ4 struct {
}

func (c LZ4) CompressBlock(block []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := lz4.NewWriter(buf)

	if _, err := w.Write(block); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (c LZ4) DecompressBlock(block []byte, size int) ([]byte, error) {
	ret, err := readAll(lz4.NewReader(bytes.NewReader(block)), size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress LZ4 data")
	}

	return checkSize(ret, size)
}

// LZ4Raw handles the LZ4 block format without framing.
type LZ4Raw struct {
}

func (c LZ4Raw) CompressBlock(block []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(block)))

	n, err := lz4.CompressBlock(block, buf, nil)
	if err != nil {
		return nil, err
	}

	return buf[:n], nil
}

func (c LZ4Raw) DecompressBlock(block []byte, size int) ([]byte, error) {
	buf := make([]byte, size)

	n, err := lz4.UncompressBlock(block, buf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress LZ4 raw data")
	}

	return checkSize(buf[:n], size)
}
