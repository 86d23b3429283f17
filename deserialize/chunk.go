package deserialize

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/bits-and-blooms/bitset"
	"github.com/hexbee-net/errors"
)

// decodedChunk accumulates the keys and validity of one output chunk, along
// with the dictionary the keys refer to.
type decodedChunk[K Key] struct {
	keys []K

	// validity is nil as long as every row is valid.
	validity *bitset.BitSet

	dict arrow.Array
}

func newDecodedChunk[K Key](dict arrow.Array, capacity int) *decodedChunk[K] {
	dict.Retain()

	return &decodedChunk[K]{
		keys: make([]K, 0, capacity),
		dict: dict,
	}
}

func (c *decodedChunk[K]) len() int {
	return len(c.keys)
}

func (c *decodedChunk[K]) pushValid(k K) {
	c.keys = append(c.keys, k)

	if c.validity != nil {
		c.validity.Set(uint(len(c.keys) - 1))
	}
}

// pushNull appends a null row. Its key is a placeholder which is never read.
func (c *decodedChunk[K]) pushNull() {
	if c.validity == nil {
		c.validity = bitset.New(uint(cap(c.keys)))
		if n := len(c.keys); n > 0 {
			c.validity.FlipRange(0, uint(n))
		}
	}

	c.keys = append(c.keys, 0)
}

func (c *decodedChunk[K]) nulls() int {
	if c.validity == nil {
		return 0
	}

	return len(c.keys) - int(c.validity.Count())
}

func (c *decodedChunk[K]) isValid(i int) bool {
	return c.validity == nil || c.validity.Test(uint(i))
}

// bind makes the chunk refer to dict.
func (c *decodedChunk[K]) bind(dict arrow.Array) {
	if c.dict == dict {
		return
	}

	dict.Retain()
	c.release()
	c.dict = dict
}

func (c *decodedChunk[K]) release() {
	if c.dict != nil {
		c.dict.Release()
		c.dict = nil
	}
}

// toArray wraps the chunk with its dictionary. The returned array holds its
// own reference on the dictionary.
func (c *decodedChunk[K]) toArray() (*array.Dictionary, error) {
	n := len(c.keys)
	size := uint64(c.dict.Len())

	for i, k := range c.keys {
		if uint64(k) >= size && c.isValid(i) {
			return nil, errors.WithFields(
				errors.WithStack(ErrKeyOutOfBounds),
				errors.Fields{
					"key":             uint64(k),
					"position":        i,
					"dictionary-size": size,
				})
		}
	}

	var validity *memory.Buffer
	if c.validity != nil {
		bits := make([]byte, bitutil.BytesForBits(int64(n)))
		for i := 0; i < n; i++ {
			if c.validity.Test(uint(i)) {
				bitutil.SetBit(bits, i)
			}
		}

		validity = memory.NewBufferBytes(bits)
	}

	data := array.NewData(
		KeyType[K](),
		n,
		[]*memory.Buffer{validity, memory.NewBufferBytes(arrow.GetBytes(c.keys))},
		nil,
		c.nulls(),
		0,
	)
	defer data.Release()

	indices := array.MakeFromData(data)
	defer indices.Release()

	typ := &arrow.DictionaryType{
		IndexType: KeyType[K](),
		ValueType: c.dict.DataType(),
	}

	return array.NewDictionaryArray(typ, indices, c.dict), nil
}
