package compression

import (
	"github.com/golang/snappy"
	"github.com/hexbee-net/errors"
)

type Snappy struct {
}

func (c Snappy) CompressBlock(block []byte) ([]byte, error) {
	return snappy.Encode(nil, block), nil
}

func (c Snappy) DecompressBlock(block []byte, size int) ([]byte, error) {
	ret, err := snappy.Decode(make([]byte, size), block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress Snappy data")
	}

	return checkSize(ret, size)
}
