package compression

import (
	"bytes"

	"github.com/andybalholm/brotli"
	"github.com/hexbee-net/errors"
)

type Brotli struct {
}

func (c Brotli) CompressBlock(block []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := brotli.NewWriter(buf)

	if _, err := w.Write(block); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (c Brotli) DecompressBlock(block []byte, size int) ([]byte, error) {
	ret, err := readAll(brotli.NewReader(bytes.NewReader(block)), size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress Brotli data")
	}

	return checkSize(ret, size)
}
