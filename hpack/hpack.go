package hpack

import (
	"io"
	"math"
)

// Decoder is the top-level class for header decompression. It owns the
// dynamic table for its direction of the connection, so every header block
// has to pass through the same Decoder, in order.
type Decoder struct {
	decoderCommon
	// The longest string literal that ReadHeaderBlock accepts.
	maxStringLength uint64
}

// NewDecoder makes a Decoder with the given initial dynamic table
// capacity.
func NewDecoder(capacity TableCapacity) *Decoder {
	decoder := new(Decoder)
	decoder.initLogging(nil)
	decoder.Table.SetCapacity(capacity)
	decoder.maxStringLength = defaultMaxStringLength
	return decoder
}

// SetMaxStringLength bounds the on-wire length of string literals. Blocks
// carrying a longer string fail with ErrStringTooLong. Zero restores the
// default limit.
func (decoder *Decoder) SetMaxStringLength(limit uint64) {
	decoder.maxStringLength = limit
}

// SetCapacity changes the dynamic table capacity directly. The transport
// is responsible for checking the value against whatever it negotiated.
func (decoder *Decoder) SetCapacity(capacity TableCapacity) {
	decoder.Table.SetCapacity(capacity)
}

// entryAt resolves a wire index. The index arrives as a uint64; anything
// beyond int32 can't be a table hit, and converting first would truncate
// on 32-bit platforms.
func (decoder *Decoder) entryAt(index uint64) Entry {
	if index > uint64(math.MaxInt32) {
		return nil
	}
	return decoder.Table.Get(int(index))
}

func (decoder *Decoder) readIndexed(reader *Reader) (*HeaderField, error) {
	index, err := reader.ReadInt(7)
	if err != nil {
		return nil, err
	}
	entry := decoder.entryAt(index)
	if entry == nil {
		return nil, indexError(index)
	}
	return &HeaderField{Name: entry.Name(), Value: entry.Value()}, nil
}

// readNameValue handles the common tail of the literal representations: a
// name index (0 meaning a literal name follows) and a literal value.
func (decoder *Decoder) readNameValue(reader *Reader, prefix byte) (string, string, error) {
	index, err := reader.ReadInt(prefix)
	if err != nil {
		return "", "", err
	}
	var name string
	if index == 0 {
		name, err = reader.ReadString()
		if err != nil {
			return "", "", err
		}
	} else {
		entry := decoder.entryAt(index)
		if entry == nil {
			return "", "", indexError(index)
		}
		name = entry.Name()
	}
	value, err := reader.ReadString()
	if err != nil {
		return "", "", err
	}
	return name, value, nil
}

func (decoder *Decoder) readIncremental(reader *Reader) (*HeaderField, error) {
	name, value, err := decoder.readNameValue(reader, 6)
	if err != nil {
		return nil, err
	}
	decoder.Table.Insert(name, value)
	return &HeaderField{Name: name, Value: value}, nil
}

func (decoder *Decoder) readCapacity(reader *Reader) error {
	capacity, err := reader.ReadInt(5)
	if err != nil {
		return err
	}
	decoder.logf("table capacity -> %d", capacity)
	decoder.Table.SetCapacity(TableCapacity(capacity))
	return nil
}

func (decoder *Decoder) readLiteral(reader *Reader) (*HeaderField, error) {
	ni, err := reader.ReadBit()
	if err != nil {
		return nil, err
	}

	name, value, err := decoder.readNameValue(reader, 4)
	if err != nil {
		return nil, err
	}
	return &HeaderField{Name: name, Value: value, Sensitive: ni == 1}, nil
}

// ReadHeaderBlock decodes one complete header block. The five
// representations are told apart by their leading bits: 1 is an indexed
// field, 01 a literal with incremental indexing, 001 a table size update,
// 0001 a never-indexed literal and 0000 a plain literal.
func (decoder *Decoder) ReadHeaderBlock(block []byte) ([]HeaderField, error) {
	reader := NewReader(block)
	if decoder.maxStringLength > 0 {
		reader.maxString = decoder.maxStringLength
	}
	headers := []HeaderField{}
	for !reader.Done() {
		b, err := reader.ReadBit()
		if err != nil {
			return nil, err
		}

		if b == 1 {
			h, err := decoder.readIndexed(reader)
			if err != nil {
				return nil, err
			}
			headers = append(headers, *h)
			continue
		}

		b, err = reader.ReadBit()
		if err != nil {
			return nil, err
		}

		if b == 1 {
			h, err := decoder.readIncremental(reader)
			if err != nil {
				return nil, err
			}
			headers = append(headers, *h)
			continue
		}

		b, err = reader.ReadBit()
		if err != nil {
			return nil, err
		}

		if b == 1 {
			err := decoder.readCapacity(reader)
			if err != nil {
				return nil, err
			}
			continue
		}

		h, err := decoder.readLiteral(reader)
		if err != nil {
			return nil, err
		}
		headers = append(headers, *h)
	}

	if err := validatePseudoHeaders(headers); err != nil {
		return nil, err
	}
	return headers, nil
}

// ReadHeaders decodes a header block into an ordered collection.
func (decoder *Decoder) ReadHeaders(block []byte) (*Headers, error) {
	fields, err := decoder.ReadHeaderBlock(block)
	if err != nil {
		return nil, err
	}
	return NewHeaders(fields...), nil
}

// Encoder is the top-level class for header compression. As with Decoder,
// one Encoder serves one direction of one connection.
type Encoder struct {
	encoderCommon
	// Track changes to capacity so that we can reflect them properly.
	minCapacity  TableCapacity
	nextCapacity TableCapacity
}

// NewEncoder makes an Encoder with the given initial dynamic table
// capacity.
func NewEncoder(capacity TableCapacity) *Encoder {
	encoder := new(Encoder)
	encoder.initLogging(nil)
	encoder.Table.SetCapacity(capacity)
	encoder.minCapacity = capacity
	encoder.nextCapacity = capacity
	return encoder
}

func (encoder *Encoder) writeCapacity(writer *Writer, c TableCapacity) error {
	err := writer.WriteBits(1, 3)
	if err != nil {
		return err
	}
	return writer.WriteInt(uint64(c), 5)
}

// A capacity reduction has to be announced before anything else in the
// next block, and if the capacity dipped and recovered since the last
// block, both movements are announced.
func (encoder *Encoder) writeCapacityChange(writer *Writer) error {
	if encoder.minCapacity < encoder.Table.Capacity() {
		err := encoder.writeCapacity(writer, encoder.minCapacity)
		if err != nil {
			return err
		}
		encoder.Table.SetCapacity(encoder.minCapacity)
	}
	if encoder.nextCapacity > encoder.Table.Capacity() {
		err := encoder.writeCapacity(writer, encoder.nextCapacity)
		if err != nil {
			return err
		}
		encoder.Table.SetCapacity(encoder.nextCapacity)
		encoder.minCapacity = encoder.nextCapacity
	}
	return nil
}

func (encoder *Encoder) writeIndexed(writer *Writer, entry Entry) error {
	err := writer.WriteBit(1)
	if err != nil {
		return err
	}
	return writer.WriteInt(uint64(entry.Index()), 7)
}

// Write out a name-value pair, with the specified integer prefix size on
// the name index.
func (encoder *Encoder) writeNameValue(writer *Writer, h HeaderField,
	nameEntry Entry, prefix byte) error {
	nameIndex := uint64(0)
	if nameEntry != nil {
		nameIndex = uint64(nameEntry.Index())
	}
	err := writer.WriteInt(nameIndex, prefix)
	if err != nil {
		return err
	}
	if nameEntry == nil {
		err = writer.WriteStringRaw(h.Name, encoder.HuffmanPreference)
		if err != nil {
			return err
		}
	}
	return writer.WriteStringRaw(h.Value, encoder.HuffmanPreference)
}

func (encoder *Encoder) writeIncremental(writer *Writer, h HeaderField, nameEntry Entry) error {
	err := writer.WriteBits(1, 2)
	if err != nil {
		return err
	}

	err = encoder.writeNameValue(writer, h, nameEntry, 6)
	if err != nil {
		return err
	}
	_ = encoder.Table.Insert(h.Name, h.Value)
	return nil
}

func (encoder *Encoder) writeLiteral(writer *Writer, h HeaderField,
	nameEntry Entry, never bool) error {
	code := uint64(0)
	if never {
		code = 1
	}
	err := writer.WriteBits(code, 4)
	if err != nil {
		return err
	}

	return encoder.writeNameValue(writer, h, nameEntry, 4)
}

func (encoder *Encoder) writeField(writer *Writer, h HeaderField, indexing Indexing) error {
	if h.Sensitive {
		// It's not clear here whether the name is sensitive, but let's
		// assume that it might be. It's not exactly rational to put secrets
		// in header field names (how do you find them again?), but it's
		// safer not to assume rational behaviour.
		return encoder.writeLiteral(writer, h, nil, true)
	}

	m, nm := encoder.Table.Lookup(h.Name, h.Value)
	if m != nil {
		return encoder.writeIndexed(writer, m)
	}
	switch encoder.effectiveIndexing(indexing, h) {
	case IndexingAlways:
		return encoder.writeIncremental(writer, h, nm)
	case IndexingNever:
		// A name match pins the plain literal form; the never-indexed
		// instruction is reserved for sensitive fields and complete misses.
		return encoder.writeLiteral(writer, h, nm, nm == nil)
	default:
		return encoder.writeLiteral(writer, h, nm, false)
	}
}

// WriteHeaderBlockIndexing writes out a header block using the given
// indexing policy in place of the encoder default.
func (encoder *Encoder) WriteHeaderBlockIndexing(w io.Writer, indexing Indexing,
	headers ...HeaderField) error {
	if err := validatePseudoHeaders(headers); err != nil {
		return err
	}
	writer := NewWriter(w)
	err := encoder.writeCapacityChange(writer)
	if err != nil {
		return err
	}
	for _, h := range headers {
		err = encoder.writeField(writer, h, indexing)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteHeaderBlock writes out a header block with the encoder's default
// indexing policy.
func (encoder *Encoder) WriteHeaderBlock(w io.Writer, headers ...HeaderField) error {
	return encoder.WriteHeaderBlockIndexing(w, encoder.DefaultIndexing, headers...)
}

// WriteHeaders writes out an ordered header collection as one block.
func (encoder *Encoder) WriteHeaders(w io.Writer, headers *Headers) error {
	return encoder.WriteHeaderBlock(w, headers.Fields()...)
}

// SetCapacity is used to set the new header table capacity. This could
// reflect the value from the peer's settings. Smaller values than the one
// provided by the peer can be set, if there are constraints on memory and
// the peer isn't trusted to set sane values. Failing to call this will
// result in no additions to the dynamic table and poor compression
// performance.
func (encoder *Encoder) SetCapacity(c TableCapacity) {
	if c < encoder.minCapacity {
		encoder.minCapacity = c
	}
	encoder.nextCapacity = c
}
