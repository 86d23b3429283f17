package deserialize

import (
	"github.com/hexbee-net/errors"
)

const (
	// ErrNotImplemented is returned for data pages whose encoding or
	// repetition cannot be read as dictionary keys.
	ErrNotImplemented = errors.Error("not implemented: dictionary arrays from non-dict-encoded pages")
	// ErrMissingDictionary is returned when a data page comes before any dictionary page.
	ErrMissingDictionary = errors.Error("dictionary-encoded array requested but page stream contains non-dictionary data before any dictionary")
	// ErrKeyOverflow is returned when a dictionary index does not fit in the key type.
	ErrKeyOverflow = errors.Error("dictionary index overflows key type")
	// ErrKeyOutOfBounds is returned when a key is not lower than the dictionary length.
	ErrKeyOutOfBounds = errors.Error("dictionary key out of bounds")
)

const (
	errInvalidSelection = errors.Error("row selection must be ascending and non-overlapping")
	errUnknownPage      = errors.Error("unknown page kind")
)
