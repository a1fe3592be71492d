// Package input acquires stream bytes from files or stdin, as raw binary
// or as hex text.
package input

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"

	"github.com/pkg/errors"
)

var (
	ErrTooLarge = errors.New("input: exceeds max input size")
	ErrBadHex   = errors.New("input: invalid hex text")
)

// DefaultMaxInput bounds how much is read when Options.MaxInput is 0.
const DefaultMaxInput = 64 << 20

// Format selects how input bytes are interpreted.
type Format int

const (
	FormatAuto Format = iota // raw if it starts with the stream magic, else hex if it parses
	FormatRaw
	FormatHex
)

// Options controls Load.
type Options struct {
	Format   Format
	MaxInput int64 // 0 = DefaultMaxInput
	Stdin    io.Reader
}

func (o Options) maxInput() int64 {
	if o.MaxInput > 0 {
		return o.MaxInput
	}
	return DefaultMaxInput
}

// Load reads path ("-" for stdin) and returns the stream bytes. The size
// limit is checked against the file size before reading, and enforced on
// the read itself for stdin.
func Load(path string, opts Options) ([]byte, error) {
	limit := opts.maxInput()

	var r io.Reader
	if path == "-" {
		r = opts.Stdin
		if r == nil {
			r = os.Stdin
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "input: open")
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, errors.Wrap(err, "input: stat")
		}
		if info.Size() > limit {
			return nil, errors.Wrapf(ErrTooLarge, "%s is %d bytes (max %d)", path, info.Size(), limit)
		}
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.Wrapf(err, "input: read %s", path)
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrTooLarge, "%s exceeds %d bytes", path, limit)
	}
	return Parse(data, opts.Format)
}

var magic = []byte{0xac, 0xed}

// Parse interprets data according to f.
func Parse(data []byte, f Format) ([]byte, error) {
	switch f {
	case FormatRaw:
		return data, nil
	case FormatHex:
		return DecodeHex(data)
	}
	if bytes.HasPrefix(data, magic) || !looksHex(data) {
		return data, nil
	}
	return DecodeHex(data)
}

// DecodeHex decodes hex text. Whitespace, "0x" prefixes and ':' or ','
// separators are ignored.
func DecodeHex(text []byte) ([]byte, error) {
	clean := clean(text)
	if len(clean)%2 != 0 {
		return nil, errors.Wrapf(ErrBadHex, "odd number of digits (%d)", len(clean))
	}
	out := make([]byte, len(clean)/2)
	if _, err := hex.Decode(out, clean); err != nil {
		return nil, errors.Wrapf(ErrBadHex, "%v", err)
	}
	return out, nil
}

func clean(text []byte) []byte {
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case ' ', '\t', '\r', '\n', ':', ',':
			continue
		case '0':
			if i+1 < len(text) && (text[i+1] == 'x' || text[i+1] == 'X') {
				i++
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// looksHex reports whether data is non-empty text made only of hex digits
// and the separators DecodeHex accepts.
func looksHex(data []byte) bool {
	digits := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
			digits++
		case c == 'x' || c == 'X':
			if i == 0 || data[i-1] != '0' {
				return false
			}
		case c == ' ', c == '\t', c == '\r', c == '\n', c == ':', c == ',':
		default:
			return false
		}
	}
	return digits > 0
}
