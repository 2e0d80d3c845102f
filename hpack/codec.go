// Package hpack implements HPACK (RFC 7541) header compression: a decoder
// and encoder that share a size-bounded dynamic table so that both ends of
// a connection resolve the same indices. One Decoder or Encoder serves one
// direction of one connection; calls must be serialized externally because
// every header block mutates the table.
package hpack

import (
	"errors"
	"fmt"
	"io"
	"log"
)

// ErrIndexError is a decoder error for the case where an invalid index is
// received.
var ErrIndexError = errors.New("hpack: invalid index")

// ErrPseudoHeaderOrdering indicates that a pseudo header field was placed
// after a non-pseudo header field.
var ErrPseudoHeaderOrdering = errors.New("hpack: invalid pseudo header field order")

// indexError wraps ErrIndexError with the wire index for diagnostics.
func indexError(index uint64) error {
	return fmt.Errorf("%w: %d", ErrIndexError, index)
}

// HeaderField is a name-value pair with its sensitivity marker. Sensitive
// fields arrive as (and are sent as) never-indexed literals.
type HeaderField struct {
	Name      string
	Value     string
	Sensitive bool
}

func (hf HeaderField) String() string {
	return hf.Name + ": " + hf.Value
}

func (hf HeaderField) size() TableCapacity {
	return entryOverhead + TableCapacity(len(hf.Name)+len(hf.Value))
}

// Indexing selects which literal representation the encoder uses for
// fields that aren't a full table match.
type Indexing byte

const (
	// IndexingAlways inserts literals into the dynamic table.
	IndexingAlways = Indexing(iota)
	// IndexingNever marks literals as never-indexed on the wire.
	IndexingNever = Indexing(iota)
	// IndexingNone sends plain literals without touching the table.
	IndexingNone = Indexing(iota)
)

// validatePseudoHeaders checks that pseudo header fields appear strictly
// before all other header fields.
func validatePseudoHeaders(headers []HeaderField) error {
	pseudo := true
	for _, h := range headers {
		if len(h.Name) > 0 && h.Name[0] == ':' {
			if !pseudo {
				return ErrPseudoHeaderOrdering
			}
		} else {
			pseudo = false
		}
	}
	return nil
}

type logged struct {
	logger *log.Logger
}

func (lg *logged) initLogging(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	lg.logger = log.New(w, "", log.Lmicroseconds|log.Lshortfile)
}

// SetLogger attaches a logger for debugging. Nothing is logged by default.
func (lg *logged) SetLogger(logger *log.Logger) {
	lg.logger = logger
}

// logf tolerates a zero-value codec, where no logger was ever installed.
func (lg *logged) logf(format string, v ...interface{}) {
	if lg.logger != nil {
		lg.logger.Printf(format, v...)
	}
}

type decoderCommon struct {
	// Table is public to provide access to its methods.
	Table Table
	logged
}

type encoderCommon struct {
	// Table is public to provide access to its methods.
	Table Table
	logged

	// HuffmanPreference records preferences for Huffman coding of strings.
	HuffmanPreference HuffmanCodingChoice

	// DefaultIndexing is the literal representation used when nothing more
	// specific applies.
	DefaultIndexing Indexing

	// This stores preferences for indexing on a per-name basis.
	indexPrefs map[string]bool
}

// Header field names that change too often for indexing to pay off.
var dontIndex = map[string]bool{
	":path":               true,
	"content-length":      true,
	"content-range":       true,
	"date":                true,
	"expires":             true,
	"etag":                true,
	"if-modified-since":   true,
	"if-range":            true,
	"if-unmodified-since": true,
	"last-modified":       true,
	"link":                true,
	"range":               true,
	"referer":             true,
	"refresh":             true,
}

// effectiveIndexing resolves the representation for one field: per-name
// preferences override the requested policy, fields too big for the table
// are never inserted, and the don't-index list downgrades the default
// always-index choice.
func (encoder *encoderCommon) effectiveIndexing(requested Indexing, h HeaderField) Indexing {
	if pref, ok := encoder.indexPrefs[h.Name]; ok {
		if pref && h.size() <= encoder.Table.Capacity() {
			return IndexingAlways
		}
		return IndexingNone
	}
	if requested == IndexingAlways {
		if h.size() > encoder.Table.Capacity() || dontIndex[h.Name] {
			return IndexingNone
		}
	}
	return requested
}

// SetIndexPreference sets preferences for header fields with the given
// name. Set to true to index, false to never index.
func (encoder *encoderCommon) SetIndexPreference(name string, pref bool) {
	encoder.logf("set indexing pref for %v to %v", name, pref)
	if encoder.indexPrefs == nil {
		encoder.indexPrefs = make(map[string]bool)
	}
	encoder.indexPrefs[name] = pref
}

// ClearIndexPreference resets the preference for indexing for the named
// header field.
func (encoder *encoderCommon) ClearIndexPreference(name string) {
	encoder.logf("clear indexing pref for %v", name)
	delete(encoder.indexPrefs, name)
}
