package encoding

type unpack8int32Func func([]byte) [8]int32

type pack8int32Func func([8]int32) []byte

var (
	unpack8Int32FuncByWidth [maxBitWidth + 1]unpack8int32Func
	pack8Int32FuncByWidth   [maxBitWidth + 1]pack8int32Func
)

func init() {
	for w := 0; w <= maxBitWidth; w++ {
		unpack8Int32FuncByWidth[w] = unpack8Int32(w)
		pack8Int32FuncByWidth[w] = pack8Int32(w)
	}
}

// unpack8Int32 returns a function reading 8 values of the given width from
// exactly width bytes, least significant bit first.
func unpack8Int32(width int) unpack8int32Func {
	w := uint(width)
	mask := uint64(1)<<w - 1

	return func(data []byte) (out [8]int32) {
		if w == 0 {
			return out
		}

		var (
			acc    uint64
			bitsIn uint
			pos    int
		)

		for i := range out {
			for bitsIn < w {
				acc |= uint64(data[pos]) << bitsIn
				pos++
				bitsIn += 8
			}

			out[i] = int32(uint32(acc & mask))
			acc >>= w
			bitsIn -= w
		}

		return out
	}
}

func pack8Int32(width int) pack8int32Func {
	w := uint(width)
	mask := uint64(1)<<w - 1

	return func(values [8]int32) []byte {
		out := make([]byte, 0, width)

		var (
			acc    uint64
			bitsIn uint
		)

		for _, v := range values {
			acc |= (uint64(uint32(v)) & mask) << bitsIn
			bitsIn += w

			for bitsIn >= 8 {
				out = append(out, byte(acc))
				acc >>= 8
				bitsIn -= 8
			}
		}

		return out
	}
}
