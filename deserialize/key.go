package deserialize

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/hexbee-net/errors"
)

// Key is the type of the dictionary keys of the produced arrays.
type Key interface {
	uint8 | uint16 | uint32 | uint64
}

func maxKey[K Key]() uint64 {
	return uint64(^K(0))
}

// narrow converts a raw dictionary index into a key, failing instead of
// truncating when it does not fit.
func narrow[K Key](raw int32) (K, error) {
	v := uint64(uint32(raw))

	if m := maxKey[K](); v > m {
		return 0, errors.WithFields(
			errors.WithStack(ErrKeyOverflow),
			errors.Fields{
				"index":   v,
				"max-key": m,
			})
	}

	return K(v), nil
}

// KeyType returns the arrow type of the keys.
func KeyType[K Key]() arrow.DataType {
	var k K

	switch any(k).(type) {
	case uint8:
		return arrow.PrimitiveTypes.Uint8
	case uint16:
		return arrow.PrimitiveTypes.Uint16
	case uint32:
		return arrow.PrimitiveTypes.Uint32
	default:
		return arrow.PrimitiveTypes.Uint64
	}
}
