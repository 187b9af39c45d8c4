package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// utf16BOMs maps a byte order mark to the decoder that consumes it.
var utf16BOMs = []struct {
	mark  []byte
	order unicode.Endianness
}{
	{[]byte{0xFF, 0xFE}, unicode.LittleEndian},
	{[]byte{0xFE, 0xFF}, unicode.BigEndian},
}

// Fallback is used when the input is neither UTF-8 nor recognized. Bank
// exports in the region are overwhelmingly Windows-1251.
var Fallback encoding.Encoding = charmap.Windows1251

var byCharset = map[string]encoding.Encoding{
	"windows-1251": charmap.Windows1251,
	"KOI8-R":       charmap.KOI8R,
	"ISO-8859-5":   charmap.ISO8859_5,
	"IBM866":       charmap.CodePage866,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-1":   charmap.Windows1252,
}

// NewUTF8Reader detects the encoding of the input and returns a reader
// that decodes the content to UTF-8.
//
// Detection order:
//  1. BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. Valid UTF-8 is returned as-is
//  3. Heuristic detection via chardet (Cyrillic code pages, Latin-1)
//  4. Fallback to Windows-1251
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if bytes.HasPrefix(buf, bomUTF8) {
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	}

	for _, bom := range utf16BOMs {
		if bytes.HasPrefix(buf, bom.mark) {
			decoder := unicode.UTF16(bom.order, unicode.UseBOM).NewDecoder()
			return transform.NewReader(br, decoder), nil
		}
	}

	if utf8.Valid(buf) {
		return br, nil
	}

	result, detectErr := chardet.NewTextDetector().DetectBest(buf)
	if detectErr == nil {
		if result.Charset == "UTF-8" {
			return br, nil
		}

		if enc, ok := byCharset[result.Charset]; ok {
			return transform.NewReader(br, enc.NewDecoder()), nil
		}
	}

	return transform.NewReader(br, Fallback.NewDecoder()), nil
}
