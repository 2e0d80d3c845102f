package hpack

import (
	"errors"
	"io"

	"github.com/jeromegn/http2/bitio"
)

// ErrIntegerOverflow is used to signal integer overflow.
var ErrIntegerOverflow = errors.New("hpack: integer overflow")

// ErrStringTooLong is used when a string literal exceeds the configured
// limit.
var ErrStringTooLong = errors.New("hpack: string literal exceeds limit")

// defaultMaxStringLength bounds string literals when the caller doesn't.
const defaultMaxStringLength = 16 * 1024 * 1024

// Reader wraps a bit cursor with HPACK-specific reading functions. A fresh
// Reader is made for every header block.
type Reader struct {
	*bitio.Reader
	// The largest string literal that will be accepted.
	maxString uint64
}

// NewReader wraps a header-block buffer for HPACK reading.
func NewReader(block []byte) *Reader {
	return &Reader{bitio.NewReader(block), defaultMaxStringLength}
}

// ReadInt reads an HPACK integer with the specified prefix length.
func (hr *Reader) ReadInt(prefix byte) (uint64, error) {
	v, err := hr.ReadBits(prefix)
	if err != nil {
		return 0, err
	}
	if v < ((1 << prefix) - 1) {
		return v, nil
	}

	for s := uint8(0); s < 64; s += 7 {
		b, err := hr.ReadByte()
		if err != nil {
			return 0, err
		}
		// When the shift hits 63, then don't allow the next octet to
		// overflow. If that octet is > 1, then assume that it will overflow
		// (don't allow extra zero bits beyond this point, even though 0x80
		// can be added indefinitely without increasing the value). If the
		// octet is 1, then it can still overflow if the current value
		// already has the same bit set. If the octet is 0, then it's OK.
		if s == 63 && (b > 1 || (b == 1 && ((v >> 63) == 1))) {
			return 0, ErrIntegerOverflow
		}
		v += uint64(b&0x7f) << s
		if (b & 0x80) == 0 {
			return v, nil
		}
	}
	return 0, ErrIntegerOverflow
}

// ReadString reads an HPACK-encoded string literal, expanding Huffman
// coding if the flag bit says to.
func (hr *Reader) ReadString() (string, error) {
	huffman, err := hr.ReadBit()
	if err != nil {
		return "", err
	}
	length, err := hr.ReadInt(7)
	if err != nil {
		return "", err
	}
	if length > hr.maxString {
		return "", ErrStringTooLong
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(hr, buf); err != nil {
		return "", err
	}
	if huffman != 0 {
		return HuffmanDecode(buf)
	}
	return string(buf), nil
}

// Writer wraps a bit writer with HPACK-specific writing functions.
type Writer struct {
	*bitio.Writer
}

// NewWriter wraps the writer for HPACK writing.
func NewWriter(writer io.Writer) *Writer {
	return &Writer{bitio.NewWriter(writer)}
}

// WriteInt writes an integer with the specified prefix length.
func (hw *Writer) WriteInt(p uint64, prefix byte) error {
	if prefix > 8 || prefix == 0 {
		return errors.New("hpack: invalid integer prefix")
	}
	ones := (uint64(1) << prefix) - 1
	if p < ones {
		return hw.WriteBits(p, prefix)
	}
	err := hw.WriteBits(ones, prefix)
	if err != nil {
		return err
	}
	p -= ones
	for done := false; !done; {
		b := byte(p & 0x7f)
		p >>= 7
		if p > 0 {
			b |= 0x80
		} else {
			done = true
		}
		err = hw.WriteByte(b)
		if err != nil {
			return err
		}
	}
	return nil
}

// HuffmanCodingChoice controls whether Huffman coding is used.
type HuffmanCodingChoice byte

const (
	// HuffmanCodingAuto attempts to use Huffman, but will choose not to
	// if this causes the encoding to grow in size.
	HuffmanCodingAuto = HuffmanCodingChoice(iota)
	// HuffmanCodingAlways uses Huffman coding unconditionally.
	HuffmanCodingAlways = HuffmanCodingChoice(iota)
	// HuffmanCodingNever writes string octets unmodified.
	HuffmanCodingNever = HuffmanCodingChoice(iota)
)

// WriteStringRaw writes out the specified string with the given Huffman
// preference.
func (hw *Writer) WriteStringRaw(s string, huffman HuffmanCodingChoice) error {
	octets := []byte(s)
	hbit := byte(0)
	if huffman != HuffmanCodingNever {
		compressed := HuffmanEncode(s)
		if huffman == HuffmanCodingAlways || len(compressed) < len(octets) {
			octets = compressed
			hbit = 1
		}
	}

	err := hw.WriteBit(hbit)
	if err != nil {
		return err
	}
	err = hw.WriteInt(uint64(len(octets)), 7)
	if err != nil {
		return err
	}
	n, err := hw.Write(octets)
	if err != nil {
		return err
	}
	if n < len(octets) {
		return io.ErrShortWrite
	}
	return nil
}

// WriteString writes a string, using automatic Huffman coding.
func (hw *Writer) WriteString(s string) error {
	return hw.WriteStringRaw(s, HuffmanCodingAuto)
}
