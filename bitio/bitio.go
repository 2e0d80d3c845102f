// Package bitio provides bit-granularity reading over an in-memory buffer
// and bit-granularity writing to an io.Writer. HPACK instruction selectors
// are bit-aligned, so these are the primitives the codec is built on.
package bitio

import (
	"bytes"
	"errors"
	"io"
)

// ErrOutOfBounds is returned when a read runs past the end of the buffer.
var ErrOutOfBounds = errors.New("bitio: read past end of buffer")

// Reader is a forward-only cursor over an immutable byte buffer. Reads
// advance the cursor; nothing else mutates it.
type Reader struct {
	buf       []byte
	pos       int
	saved     uint64
	savedBits byte
}

// NewReader makes a cursor positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Done reports whether the buffer is exhausted. Partially consumed octets
// count as remaining input.
func (br *Reader) Done() bool {
	return br.savedBits == 0 && br.pos >= len(br.buf)
}

// Peek returns the next unread octet without advancing. The cursor is
// always octet-aligned between HPACK instructions, which is the only place
// this is useful.
func (br *Reader) Peek() (byte, error) {
	if br.savedBits >= 8 {
		return byte(br.saved >> (br.savedBits - 8)), nil
	}
	if br.pos >= len(br.buf) {
		return 0, ErrOutOfBounds
	}
	if br.savedBits == 0 {
		return br.buf[br.pos], nil
	}
	return byte(br.saved<<(8-br.savedBits)) | br.buf[br.pos]>>br.savedBits, nil
}

func (br *Reader) readByteInternal() (byte, error) {
	if br.pos >= len(br.buf) {
		return 0, ErrOutOfBounds
	}
	b := br.buf[br.pos]
	br.pos++
	return b, nil
}

// Read the next octet and update the saved state.
func (br *Reader) readNext() error {
	b, err := br.readByteInternal()
	if err != nil {
		return err
	}
	br.saved = (br.saved << 8) | uint64(b)
	br.savedBits += 8
	return nil
}

// ReadBit reads a single bit.
func (br *Reader) ReadBit() (byte, error) {
	if br.savedBits == 0 {
		if err := br.readNext(); err != nil {
			return 0, err
		}
	}
	br.savedBits--
	return byte(br.saved>>br.savedBits) & 1, nil
}

// ReadBits reads up to 64 bits.
func (br *Reader) ReadBits(count byte) (uint64, error) {
	if count > 64 {
		return 0, bytes.ErrTooLarge
	}

	// br.saved can hold junk above br.savedBits, so top it up one octet at
	// a time and mask on the way out.
	for br.savedBits+8 <= count {
		if err := br.readNext(); err != nil {
			return 0, err
		}
	}
	if br.savedBits >= count {
		br.savedBits -= count
		return (br.saved >> br.savedBits) & (^uint64(0) >> (64 - count)), nil
	}
	result := br.saved & (^uint64(0) >> (64 - br.savedBits))
	remainder := count - br.savedBits

	// Can't use readNext() because br.saved might overflow.
	b, err := br.readByteInternal()
	if err != nil {
		return 0, err
	}
	br.saved = uint64(b)
	br.savedBits = 8 - remainder
	return (result << remainder) | (br.saved >> (8 - remainder)), nil
}

// ReadByte so that we can claim to support the io.ByteReader interface.
func (br *Reader) ReadByte() (byte, error) {
	if br.savedBits == 0 {
		return br.readByteInternal()
	}
	b, err := br.ReadBits(8)
	return byte(b), err
}

// Read so that we can claim to support the io.Reader interface. Fails with
// ErrOutOfBounds if fewer than len(p) octets remain.
func (br *Reader) Read(p []byte) (int, error) {
	if br.savedBits == 0 {
		if len(br.buf)-br.pos < len(p) {
			return 0, ErrOutOfBounds
		}
		n := copy(p, br.buf[br.pos:])
		br.pos += n
		return n, nil
	}
	for i := range p {
		b, err := br.ReadByte()
		if err != nil {
			return i, err
		}
		p[i] = b
	}
	return len(p), nil
}

// Writer accumulates bits and flushes whole octets to the underlying
// writer.
type Writer struct {
	writer    io.Writer
	saved     uint64
	savedBits byte
	written   int64
}

// NewWriter makes a new Writer.
func NewWriter(writer io.Writer) *Writer {
	return &Writer{writer: writer}
}

// Written is the number of whole octets written so far.
func (bw *Writer) Written() int64 {
	return bw.written
}

func (bw *Writer) writeByteInternal(c byte) error {
	if byteWriter, ok := bw.writer.(io.ByteWriter); ok {
		bw.written++
		return byteWriter.WriteByte(c)
	}
	n, err := bw.writer.Write([]byte{c})
	if err != nil {
		return err
	}
	if n == 0 {
		return io.ErrShortWrite
	}
	bw.written += int64(n)
	return nil
}

// Writes out any whole octets from the saved bits.
func (bw *Writer) writeSaved() error {
	for bw.savedBits >= 8 {
		x := byte(bw.saved >> (bw.savedBits - 8))
		if err := bw.writeByteInternal(x); err != nil {
			return err
		}
		bw.savedBits -= 8
	}
	return nil
}

// WriteBits writes up to 64 bits.
func (bw *Writer) WriteBits(v uint64, count byte) error {
	if count > 64 {
		return bytes.ErrTooLarge
	} else if count < 64 && v >= (1<<count) {
		return bytes.ErrTooLarge
	}

	if bw.savedBits+count < 8 {
		bw.savedBits += count
		bw.saved = (bw.saved << count) | v
		return nil
	}

	// Attempt to re-write anything that we might have saved from last time.
	if err := bw.writeSaved(); err != nil {
		return err
	}

	// Here we don't save anything until the first write succeeds.
	remainder := count + bw.savedBits - 8
	x := byte((bw.saved << (8 - bw.savedBits)) | (v >> remainder))
	if err := bw.writeByteInternal(x); err != nil {
		return err
	}
	bw.saved = v
	bw.savedBits = remainder

	// But if the first write succeeds, pretend that it worked because the
	// extra bits were saved anyway.
	_ = bw.writeSaved()
	return nil
}

// WriteBit writes a single bit.
func (bw *Writer) WriteBit(bit byte) error {
	return bw.WriteBits(uint64(bit), 1)
}

// WriteByte so that we can claim to implement the io.ByteWriter interface.
func (bw *Writer) WriteByte(c byte) error {
	return bw.WriteBits(uint64(c), 8)
}

// Write so that we can claim to implement the io.Writer interface.
func (bw *Writer) Write(p []byte) (int, error) {
	if bw.savedBits == 0 {
		n, err := bw.writer.Write(p)
		bw.written += int64(n)
		return n, err
	}
	for i, b := range p {
		if err := bw.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// Pad pads out any partially filled octet with the high bits of pad.
// Pad also serves as a flush, in case there are saved bits that couldn't
// be written.
func (bw *Writer) Pad(pad byte) error {
	if bw.savedBits > 0 {
		if err := bw.writeSaved(); err != nil {
			return err
		}
		if err := bw.WriteBits(uint64(pad>>bw.savedBits), 8-bw.savedBits); err != nil {
			return err
		}
		bw.saved = 0
		bw.savedBits = 0
	}
	return nil
}
