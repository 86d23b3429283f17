package encoding

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/hexbee-net/errors"
)

// HybridDecoder reads a stream of RLE / bit-packed hybrid runs, as used for
// definition levels and dictionary indices.
type HybridDecoder struct {
	r io.Reader

	bitWidth     int
	unpackerFn   unpack8int32Func
	rleValueSize int

	bpRun [8]int32

	rleCount uint32
	rleValue int32

	bpCount  uint32
	bpRunPos uint8
}

var _ Decoder = (*HybridDecoder)(nil)

func NewHybridDecoder(bitWidth int) (*HybridDecoder, error) {
	if bitWidth < 0 || bitWidth > maxBitWidth {
		return nil, errors.WithFields(
			errors.WithStack(errInvalidBitWidth),
			errors.Fields{
				"bit-width": bitWidth,
			})
	}

	return &HybridDecoder{
		bitWidth:     bitWidth,
		unpackerFn:   unpack8Int32FuncByWidth[bitWidth],
		rleValueSize: (bitWidth + 7) / 8,
	}, nil
}

// NewDictIndexDecoder returns a decoder over a dictionary-index buffer: one
// byte holding the bit width, followed by the hybrid runs.
func NewDictIndexDecoder(buf []byte) (*HybridDecoder, error) {
	if len(buf) == 0 {
		return nil, errors.Wrap(ErrTruncatedStream, "missing dictionary index bit-width")
	}

	d, err := NewHybridDecoder(int(buf[0]))
	if err != nil {
		return nil, err
	}

	if err := d.Init(bytes.NewReader(buf[1:])); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *HybridDecoder) Init(reader io.Reader) error {
	if reader == nil {
		return errors.WithStack(errNilReader)
	}

	d.r = reader
	d.rleCount = 0
	d.bpCount = 0
	d.bpRunPos = 0

	return nil
}

// InitSize reads the 4 bytes little-endian length prefix and limits the
// decoder to that many bytes.
func (d *HybridDecoder) InitSize(reader io.Reader) error {
	if reader == nil {
		return errors.WithStack(errNilReader)
	}

	if d.bitWidth == 0 {
		return nil
	}

	var size uint32
	if err := binary.Read(reader, binary.LittleEndian, &size); err != nil {
		return errors.Wrap(truncated(err), "failed to read hybrid stream length")
	}

	return d.Init(io.LimitReader(reader, int64(size)))
}

// BitWidth returns the width of the values of the stream.
func (d *HybridDecoder) BitWidth() int {
	return d.bitWidth
}

// Next returns the next value of the stream, or io.EOF when the stream is
// exhausted on a run boundary.
func (d *HybridDecoder) Next() (int32, error) {
	var next int32

	// when the bit width is zero, it means we can only have infinite zero.
	if d.bitWidth == 0 {
		return 0, nil
	}

	if d.r == nil {
		return 0, errors.New("reader is not initialized")
	}

	if d.rleCount == 0 && d.bpCount == 0 && d.bpRunPos == 0 {
		if err := d.readRunHeader(); err != nil {
			return 0, err
		}
	}

	switch {
	case d.rleCount > 0:
		next = d.rleValue
		d.rleCount--

	case d.bpCount > 0 || d.bpRunPos > 0:
		if d.bpRunPos == 0 {
			if err := d.readBitPackedRun(); err != nil {
				return 0, err
			}
			d.bpCount--
		}

		next = d.bpRun[d.bpRunPos]
		d.bpRunPos = (d.bpRunPos + 1) % 8

	default:
		return 0, io.EOF
	}

	return next, nil
}

// Skip discards the next n values. RLE runs are skipped without being expanded.
func (d *HybridDecoder) Skip(n int) error {
	if d.bitWidth == 0 {
		return nil
	}

	for n > 0 {
		if d.rleCount > 0 {
			k := d.rleCount
			if uint64(k) > uint64(n) {
				k = uint32(n)
			}

			d.rleCount -= k
			n -= int(k)

			continue
		}

		if _, err := d.Next(); err != nil {
			return truncated(err)
		}
		n--
	}

	return nil
}

func (d *HybridDecoder) readRunHeader() error {
	h, err := readUVarInt32(d.r)
	if err != nil {
		if errors.Cause(err) == io.EOF {
			return io.EOF
		}

		if errors.Cause(err) == io.ErrUnexpectedEOF {
			return errors.Wrap(ErrTruncatedStream, "incomplete run header")
		}

		return errors.Wrap(ErrInvalidRun, err.Error())
	}

	// The lower bit indicate if this is bitpack or rle
	if h&1 == 1 {
		d.bpCount = uint32(h >> 1)
		if d.bpCount == 0 {
			return errors.Wrap(ErrInvalidRun, "empty bit-packed run")
		}

		d.bpRunPos = 0
	} else {
		d.rleCount = uint32(h >> 1)
		if d.rleCount == 0 {
			return errors.Wrap(ErrInvalidRun, "empty RLE run")
		}

		return d.readRLERunValue()
	}

	return nil
}

func (d *HybridDecoder) readBitPackedRun() error {
	data := make([]byte, d.bitWidth)

	// the last group of a stream may be cut short by writers, missing bytes
	// are read as zeros.
	n, err := io.ReadFull(d.r, data)
	if err != nil && (n == 0 || errors.Cause(err) != io.ErrUnexpectedEOF) {
		return errors.Wrap(truncated(err), "incomplete bit-packed group")
	}

	d.bpRun = d.unpackerFn(data)

	return nil
}

func (d *HybridDecoder) readRLERunValue() error {
	v := make([]byte, d.rleValueSize)

	if _, err := io.ReadFull(d.r, v); err != nil {
		return errors.Wrap(truncated(err), "incomplete RLE run value")
	}

	d.rleValue = decodeRLEValue(v)

	if bits.LeadingZeros32(uint32(d.rleValue)) < 32-d.bitWidth {
		return errors.WithFields(
			errors.Wrap(ErrInvalidRun, "RLE run value is too large"),
			errors.Fields{
				"value":     d.rleValue,
				"bit-width": d.bitWidth,
			})
	}

	return nil
}

// truncated maps the end of input in the middle of a run to ErrTruncatedStream.
func truncated(err error) error {
	if errors.Cause(err) == io.EOF || errors.Cause(err) == io.ErrUnexpectedEOF {
		return ErrTruncatedStream
	}

	return err
}
