// Command hx inspects HPACK header blocks: it decodes hex-encoded blocks
// into header fields and encodes name:value pairs into hex blocks.
package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jeromegn/http2/hpack"
)

type decodeArguments struct {
	Blocks []string
}

type encodeArguments struct {
	Fields []string
}

type commonFlags struct {
	TableSize uint64
	Huffman   string
	Indexing  string
}

type commandLine struct {
	usage string
	fs    flag.FlagSet

	commonFlags
	args interface{}
}

func (a *commandLine) print(format string, params ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", params...)
}

func (a *commandLine) exit(msg string) {
	a.print("error: " + msg)
	a.fs.Usage()
	os.Exit(2)
}

func (a *commandLine) parseDecode(args []string) {
	a.usage = "decode <hex-block>..."
	if len(args) < 1 {
		a.exit("missing arguments")
	}
	a.args = &decodeArguments{args}
}

func (a *commandLine) parseEncode(args []string) {
	a.usage = "encode <name:value>..."
	if len(args) < 1 {
		a.exit("missing arguments")
	}
	a.args = &encodeArguments{args}
}

func (a *commandLine) Parse() {
	a.fs.Init(os.Args[0], flag.ExitOnError)

	a.usage = "decode|encode <args...>"
	a.fs.Usage = func() {
		a.print("Usage: %s [flags] %s", a.fs.Name(), a.usage)
		a.fs.PrintDefaults()
	}

	a.fs.Uint64Var(&a.TableSize, "t", 1<<12, "HPACK dynamic table size")
	a.fs.StringVar(&a.Huffman, "huffman", "auto", "Huffman coding: auto|always|never")
	a.fs.StringVar(&a.Indexing, "indexing", "always", "literal indexing: always|never|none")
	a.fs.Parse(os.Args[1:])

	if a.fs.NArg() < 1 {
		a.exit("missing argument")
	}
	positional := a.fs.Args()
	switch positional[0] {
	case "decode", "d":
		a.parseDecode(positional[1:])
	case "encode", "e":
		a.parseEncode(positional[1:])
	default:
		a.exit("unknown option: " + positional[0])
	}
}

func main() {
	args := new(commandLine)
	args.Parse()

	switch a := args.args.(type) {
	case *decodeArguments:
		runDecode(&args.commonFlags, a)
	case *encodeArguments:
		runEncode(&args.commonFlags, a)
	default:
		panic("unknown command")
	}
}

func die(msg string, err error) {
	fmt.Fprintln(os.Stderr, "error "+msg+": "+err.Error())
	os.Exit(1)
}

func runDecode(common *commonFlags, args *decodeArguments) {
	decoder := hpack.NewDecoder(hpack.TableCapacity(common.TableSize))

	for _, arg := range args.Blocks {
		block, err := hex.DecodeString(arg)
		if err != nil {
			die("reading hex block", err)
		}
		headers, err := decoder.ReadHeaderBlock(block)
		if err != nil {
			die("decoding header block", err)
		}
		for _, h := range headers {
			suffix := ""
			if h.Sensitive {
				suffix = " (sensitive)"
			}
			fmt.Println(h.String() + suffix)
		}
		fmt.Printf("[table: %d/%d octets]\n",
			decoder.Table.Used(), decoder.Table.Capacity())
	}
}

func parseHuffman(choice string) (hpack.HuffmanCodingChoice, error) {
	switch choice {
	case "auto":
		return hpack.HuffmanCodingAuto, nil
	case "always":
		return hpack.HuffmanCodingAlways, nil
	case "never":
		return hpack.HuffmanCodingNever, nil
	}
	return 0, fmt.Errorf("unknown choice: %s", choice)
}

func parseIndexing(choice string) (hpack.Indexing, error) {
	switch choice {
	case "always":
		return hpack.IndexingAlways, nil
	case "never":
		return hpack.IndexingNever, nil
	case "none":
		return hpack.IndexingNone, nil
	}
	return 0, fmt.Errorf("unknown choice: %s", choice)
}

func runEncode(common *commonFlags, args *encodeArguments) {
	encoder := hpack.NewEncoder(hpack.TableCapacity(common.TableSize))

	huffman, err := parseHuffman(common.Huffman)
	if err != nil {
		die("reading -huffman", err)
	}
	encoder.HuffmanPreference = huffman

	indexing, err := parseIndexing(common.Indexing)
	if err != nil {
		die("reading -indexing", err)
	}
	encoder.DefaultIndexing = indexing

	headers := hpack.NewHeaders()
	for _, arg := range args.Fields {
		name, value, found := strings.Cut(arg, ":")
		if !found {
			die("reading field", fmt.Errorf("missing ':' in %q", arg))
		}
		// Pseudo header fields start with a colon.
		if name == "" {
			rest := value
			name, value, found = strings.Cut(rest, ":")
			if !found {
				die("reading field", fmt.Errorf("missing ':' in %q", arg))
			}
			name = ":" + name
		}
		headers.Add(name, strings.TrimSpace(value))
	}

	var buf bytes.Buffer
	if err := encoder.WriteHeaders(&buf, headers); err != nil {
		die("encoding header block", err)
	}
	fmt.Println(hex.EncodeToString(buf.Bytes()))
}
