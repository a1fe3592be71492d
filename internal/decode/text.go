package decode

import (
	"strconv"
	"strings"

	"serdump/internal/jstream"
)

// newString reads TC_STRING newHandle utf or TC_LONGSTRING newHandle long-utf.
func (d *decoder) newString() (*String, error) {
	off := d.s.Position()
	tag, err := d.s.Peek()
	if err != nil {
		return nil, err
	}
	switch tag {
	case jstream.TcString, jstream.TcLongString:
	default:
		return nil, d.unexpected(jstream.KindUnexpectedTag, off, tag, "newString")
	}

	if _, err := d.tag(tag); err != nil {
		return nil, err
	}
	d.in()
	h := d.newHandle(EntryString, "", off)
	var s string
	if tag == jstream.TcLongString {
		s, err = d.longUTF()
	} else {
		s, err = d.utf()
	}
	if err != nil {
		return nil, err
	}
	d.handles.Bind(h, s)
	d.out()
	return &String{Offset: off, Handle: h, Value: s, Long: tag == jstream.TcLongString}, nil
}

// stringValue reads a newString position, which may also be a reference.
// A reference yields RefSentinel.
func (d *decoder) stringValue() (string, error) {
	off := d.s.Position()
	tag, err := d.s.Peek()
	if err != nil {
		return "", err
	}
	switch tag {
	case jstream.TcString, jstream.TcLongString:
		s, err := d.newString()
		if err != nil {
			return "", err
		}
		return s.Value, nil
	case jstream.TcReference:
		if _, err := d.reference(); err != nil {
			return "", err
		}
		return RefSentinel, nil
	}
	return "", d.unexpected(jstream.KindUnexpectedTag, off, tag, "newString")
}

// utf: (unsigned short)length contents
func (d *decoder) utf() (string, error) {
	off := d.s.Position()
	n, err := d.s.ReadU16()
	if err != nil {
		return "", err
	}
	d.value(off, "Length", strconv.Itoa(int(n)))
	raw, err := d.s.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	s := DecodeText(raw)
	d.value(off+2, "Value", s)
	return s, nil
}

// long-utf: (long)length contents
func (d *decoder) longUTF() (string, error) {
	off := d.s.Position()
	n, err := d.s.ReadI64()
	if err != nil {
		return "", err
	}
	d.value(off, "Length", strconv.FormatInt(n, 10))
	if n < 0 {
		return "", jstream.Errorf(jstream.KindInvalidLength, off, "negative long-utf length %d", n)
	}
	if n > int64(d.s.Remaining()) {
		return "", jstream.Errorf(jstream.KindTruncated, off+8, "long-utf of %d bytes but %d remaining", n, d.s.Remaining())
	}
	raw, err := d.s.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	s := DecodeText(raw)
	d.value(off+8, "Value", s)
	return s, nil
}

// DecodeText maps each byte to one character and escapes '<' and '>' so
// the result can be embedded in markup. It does not decode multi-byte
// sequences.
func DecodeText(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		switch c {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(rune(c))
		}
	}
	return b.String()
}
