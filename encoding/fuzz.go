//go:build gofuzz
// +build gofuzz

package encoding

// Fuzz feeds data to the dictionary index decoder. Run with:
//
//	go-fuzz-build ./encoding && go-fuzz -bin encoding-fuzz.zip
func Fuzz(data []byte) int {
	d, err := NewDictIndexDecoder(data)
	if err != nil {
		return 0
	}

	for i := 0; i < 1<<16; i++ {
		if _, err := d.Next(); err != nil {
			return 0
		}
	}

	return 1
}
