package types

import (
	"github.com/hexbee-net/errors"
)

func checkLen(buf []byte, want int) error {
	if len(buf) < want {
		return errors.WithFields(
			errors.WithStack(errShortBuffer),
			errors.Fields{
				"expected": want,
				"actual":   len(buf),
			})
	}

	return nil
}
