// Package encoding normalizes uploaded statement files to UTF-8. Mobile
// money statements arrive as CSV exports from a mix of tools, so the bytes
// may be UTF-8, UTF-16 with a BOM, or a legacy single-byte codepage.
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

// peekSize covers BOM sniffing plus a large enough sample for chardet to be
// reliable on short statement files.
const peekSize = 4096

type bom struct {
	prefix  []byte
	decoder func() *encoding.Decoder
}

var boms = []bom{
	{[]byte{0xEF, 0xBB, 0xBF}, nil}, // UTF-8; strip and pass through
	{[]byte{0xFF, 0xFE}, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder},
	{[]byte{0xFE, 0xFF}, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder},
}

// NewUTF8Reader wraps r so that reads yield UTF-8 text regardless of the
// source encoding. A BOM wins outright; otherwise valid UTF-8 passes through
// untouched, chardet arbitrates the rest, and Windows-1252 is the fallback
// since it decodes any byte sequence.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	sample, err := br.Peek(peekSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("sampling statement bytes: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(sample, b.prefix) {
			continue
		}

		if b.decoder == nil {
			_, _ = br.Discard(len(b.prefix))
			return br, nil
		}

		return transform.NewReader(br, b.decoder()), nil
	}

	if utf8.Valid(sample) {
		return br, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(sample); err == nil {
		if dec := decoderFor(result.Charset); dec != nil {
			return transform.NewReader(br, dec), nil
		}

		if result.Charset == "UTF-8" {
			return br, nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
}

func decoderFor(charset string) *encoding.Decoder {
	switch charset {
	case "ISO-8859-1", "windows-1252":
		return charmap.Windows1252.NewDecoder()
	case "ISO-8859-15":
		return charmap.ISO8859_15.NewDecoder()
	case "UTF-16LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	case "UTF-16BE":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	default:
		return nil
	}
}
