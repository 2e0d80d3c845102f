package hpack

import (
	"bytes"
	"errors"
	"sync"

	"github.com/jeromegn/http2/bitio"
)

// ErrHuffmanCoding is returned when compressed input doesn't follow the
// HPACK Huffman table, including bad padding.
var ErrHuffmanCoding = errors.New("hpack: invalid Huffman coding")

// HuffmanEncode compresses a string using the HPACK Huffman table. Any
// partial trailing octet is padded with ones, as the EOS prefix requires.
func HuffmanEncode(s string) []byte {
	var buf bytes.Buffer
	writer := bitio.NewWriter(&buf)
	for i := 0; i < len(s); i++ {
		entry := huffmanTable[s[i]]
		// Writing to a bytes.Buffer can't fail.
		_ = writer.WriteBits(uint64(entry.val), entry.len)
	}
	_ = writer.Pad(0xff)
	return buf.Bytes()
}

// This is a node in the reverse mapping tree.
type huffmanNode struct {
	next [2]*huffmanNode
	leaf bool
	sym  byte
}

func makeHuffmanLayer(prefix uint32, prefixLen byte) *huffmanNode {
	layer := new(huffmanNode)
	found := false
	// EOS (index 256) never appears in well-formed input, so it gets no
	// leaf; walking into it runs off the tree and fails.
	for i, e := range huffmanTable[:256] {
		if e.len < prefixLen+1 {
			continue
		}
		if (e.val >> (e.len - prefixLen)) != prefix {
			continue
		}
		arity := (e.val >> (e.len - prefixLen - 1)) & 1
		if e.len == prefixLen+1 {
			child := new(huffmanNode)
			child.leaf = true
			child.sym = byte(i)
			layer.next[arity] = child
			if layer.next[arity^1] != nil {
				return layer
			}
		}
		found = true
	}
	// There are unused parts of the tree, so leave the branches as nil if
	// we reach those.
	if found {
		if layer.next[0] == nil {
			layer.next[0] = makeHuffmanLayer(prefix<<1, prefixLen+1)
		}
		if layer.next[1] == nil {
			layer.next[1] = makeHuffmanLayer((prefix<<1)|1, prefixLen+1)
		}
	}
	return layer
}

var huffmanTree *huffmanNode
var huffmanTreeOnce sync.Once

func initHuffmanTree() {
	huffmanTreeOnce.Do(func() {
		huffmanTree = makeHuffmanLayer(0, 0)
	})
}

// HuffmanDecode expands a Huffman-compressed byte sequence. Trailing bits
// that don't complete a code have to be a prefix of EOS: at most seven
// bits, all ones.
func HuffmanDecode(input []byte) (string, error) {
	initHuffmanTree()
	var out []byte
	cursor := huffmanTree
	padBits := 0
	padOnes := true
	for _, c := range input {
		for shift := 7; shift >= 0; shift-- {
			bit := (c >> uint(shift)) & 1
			cursor = cursor.next[bit]
			if cursor == nil {
				return "", ErrHuffmanCoding
			}
			if bit == 0 {
				padOnes = false
			}
			padBits++
			if cursor.leaf {
				out = append(out, cursor.sym)
				cursor = huffmanTree
				padBits = 0
				padOnes = true
			}
		}
	}
	if padBits > 7 || !padOnes {
		return "", ErrHuffmanCoding
	}
	return string(out), nil
}
