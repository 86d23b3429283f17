package compression

import (
	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hexbee-net/errors"
)

// ErrUnsupportedCodec is returned for compression codecs without a BlockCompressor.
const ErrUnsupportedCodec = errors.Error("unsupported compression codec")

const errSizeMismatch = errors.Error("decompressed size mismatch")

// BlockCompressor compresses and decompresses whole page bodies. size is the
// expected length of the decompressed block.
type BlockCompressor interface {
	CompressBlock(block []byte) ([]byte, error)
	DecompressBlock(block []byte, size int) ([]byte, error)
}

var compressors = map[parquet.CompressionCodec]BlockCompressor{
	parquet.CompressionCodec_UNCOMPRESSED: Uncompressed{},
	parquet.CompressionCodec_SNAPPY:       Snappy{},
	parquet.CompressionCodec_GZIP:         GZip{},
	parquet.CompressionCodec_BROTLI:       Brotli{},
	parquet.CompressionCodec_LZ4:          LZ4{},
	parquet.CompressionCodec_LZ4_RAW:      LZ4Raw{},
	parquet.CompressionCodec_ZSTD:         ZStd{},
}

// Lookup returns the BlockCompressor of a column chunk codec.
func Lookup(codec parquet.CompressionCodec) (BlockCompressor, error) {
	c, ok := compressors[codec]
	if !ok {
		return nil, errors.WithFields(
			errors.WithStack(ErrUnsupportedCodec),
			errors.Fields{
				"codec": codec.String(),
			})
	}

	return c, nil
}

func checkSize(ret []byte, size int) ([]byte, error) {
	if len(ret) != size {
		return nil, errors.WithFields(
			errors.WithStack(errSizeMismatch),
			errors.Fields{
				"expected": size,
				"actual":   len(ret),
			})
	}

	return ret, nil
}
