package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffLen is how far into a log file we look for a BOM or charset hints.
const sniffLen = 4096

// NewUTF8Reader wraps r so its content reads back as UTF-8 regardless of how
// the system that produced the log encoded it.
//
// Detection order: BOM, valid UTF-8 as-is, chardet heuristics, then a
// Windows-1252 fallback for the single-byte encodings old POS firmware emits.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
		return br, nil
	}

	if bytes.HasPrefix(head, []byte{0xFF, 0xFE}) {
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	}

	if bytes.HasPrefix(head, []byte{0xFE, 0xFF}) {
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	}

	if utf8.Valid(head) {
		return br, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		switch result.Charset {
		case "UTF-8":
			return br, nil
		case "ISO-8859-1", "windows-1252":
			return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
		case "ISO-8859-9":
			return transform.NewReader(br, charmap.ISO8859_9.NewDecoder()), nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
}

type textFile struct {
	io.Reader
	f *os.File
}

func (t *textFile) Close() error {
	return t.f.Close()
}

// OpenText opens a log file for reading as UTF-8 text.
func OpenText(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := NewUTF8Reader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("detect encoding of %s: %w", path, err)
	}

	return &textFile{Reader: r, f: f}, nil
}
