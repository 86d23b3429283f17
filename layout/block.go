package layout

import (
	"io"

	"github.com/hexbee-net/dictcol/compression"
	"github.com/hexbee-net/errors"
)

func readBlock(in io.Reader, size int32) ([]byte, error) {
	if size < 0 {
		return nil, errors.WithFields(
			errors.New("invalid page data size"),
			errors.Fields{
				"size": size,
			})
	}

	buf := make([]byte, size)

	n, err := io.ReadFull(in, buf)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "invalid size for compressed data"),
			errors.Fields{
				"expected": size,
				"actual":   n,
			})
	}

	return buf, nil
}

func readBlockData(in io.Reader, c compression.BlockCompressor, compressedSize, uncompressedSize int32) ([]byte, error) {
	if compressedSize < 0 || uncompressedSize < 0 {
		return nil, errors.WithFields(
			errors.New("invalid page data size"),
			errors.Fields{
				"compressed-size":   compressedSize,
				"uncompressed-size": uncompressedSize,
			})
	}

	buf, err := readBlock(in, compressedSize)
	if err != nil {
		return nil, err
	}

	res, err := c.DecompressBlock(buf, int(uncompressedSize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress block")
	}

	return res, nil
}
