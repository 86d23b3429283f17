package compression

import (
	"github.com/hexbee-net/errors"
	"github.com/klauspost/compress/zstd"
)

type ZStd struct {
}

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

func (c ZStd) CompressBlock(block []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(block, nil), nil
}

func (c ZStd) DecompressBlock(block []byte, size int) ([]byte, error) {
	ret, err := zstdDecoder.DecodeAll(block, make([]byte, 0, size))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress ZSTD data")
	}

	return checkSize(ret, size)
}
