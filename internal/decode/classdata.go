package decode

import (
	"fmt"
	"strconv"
	"strings"

	"serdump/internal/jstream"
)

// classData reads the classdata of an object from the most-super class to
// the most-derived. Chains are stored most-derived first, so this walks
// the chain backwards.
func (d *decoder) classData(chain Chain) ([]ClassData, error) {
	d.event(d.s.Position(), "classdata")
	d.in()
	if chain == nil {
		d.event(d.s.Position(), "N/A")
		d.out()
		return nil, nil
	}

	for _, cd := range chain {
		if cd.Flags.Externalizable() {
			return nil, jstream.Errorf(jstream.KindUnsupportedExternalizable, d.s.Position(),
				"unable to parse externalContents of %s", cd.Name)
		}
	}

	out := make([]ClassData, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		cd := chain[i]
		d.event(d.s.Position(), cd.Name)
		d.in()
		data := ClassData{Class: cd.Name, Handle: cd.Handle}

		if cd.Flags.Serializable() {
			d.event(d.s.Position(), "values")
			d.in()
			if len(cd.Fields) > 0 {
				data.Values = make([]FieldValue, 0, len(cd.Fields))
			}
			for _, f := range cd.Fields {
				d.event(d.s.Position(), f.Name)
				d.in()
				v, err := d.fieldValue(f.Code)
				if err != nil {
					return nil, err
				}
				d.out()
				v.Name = f.Name
				data.Values = append(data.Values, v)
			}
			d.out()
		}

		if cd.Flags.HasObjectAnnotation() {
			ann, err := d.annotation("objectAnnotation")
			if err != nil {
				return nil, err
			}
			data.Annotations = ann
		}

		d.out()
		out = append(out, data)
	}
	d.out()
	return out, nil
}

// fieldValue reads one value of the given type code.
func (d *decoder) fieldValue(code TypeCode) (FieldValue, error) {
	off := d.s.Position()
	v := FieldValue{Code: code}
	var err error

	switch code {
	case CodeByte, CodeBoolean:
		var b uint8
		b, err = d.s.ReadU8()
		v.Bits = uint64(b)
	case CodeChar, CodeShort:
		var u uint16
		u, err = d.s.ReadU16()
		v.Bits = uint64(u)
	case CodeInt, CodeFloat:
		var u uint32
		u, err = d.s.ReadU32()
		v.Bits = uint64(u)
	case CodeLong, CodeDouble:
		v.Bits, err = d.s.ReadU64()
	case CodeArray, CodeObject:
		v.Content, err = d.compositeValue(code)
		return v, err
	default:
		return v, jstream.Errorf(jstream.KindIllegalFieldTypeCode, off, "illegal field type code (%q, 0x%02x)", rune(code), byte(code))
	}
	if err != nil {
		return v, err
	}
	d.value(off, code.Name(), v.Text())
	return v, nil
}

// compositeValue reads the content element of an array or object field.
func (d *decoder) compositeValue(code TypeCode) (Content, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	d.event(d.s.Position(), "("+code.Name()+")")
	d.in()
	off := d.s.Position()
	tag, err := d.s.Peek()
	if err != nil {
		return nil, err
	}

	var c Content
	if code == CodeArray {
		switch tag {
		case jstream.TcNull:
			c, err = d.null()
		case jstream.TcArray:
			c, err = d.newArray()
		case jstream.TcReference:
			c, err = d.reference()
		default:
			return nil, d.unexpected(jstream.KindUnexpectedArrayFieldTag, off, tag, "array field value")
		}
	} else {
		switch tag {
		case jstream.TcObject:
			c, err = d.newObject()
		case jstream.TcReference:
			c, err = d.reference()
		case jstream.TcNull:
			c, err = d.null()
		case jstream.TcString:
			c, err = d.newString()
		case jstream.TcClass:
			c, err = d.newClass()
		case jstream.TcArray:
			c, err = d.newArray()
		case jstream.TcEnum:
			c, err = d.newEnum()
		default:
			return nil, d.unexpected(jstream.KindUnexpectedObjectFieldTag, off, tag, "object field value")
		}
	}
	if err != nil {
		return nil, err
	}
	d.out()
	return c, nil
}

// TC_ARRAY classDesc newHandle (int)size values[size]
func (d *decoder) newArray() (*Array, error) {
	off, err := d.tag(jstream.TcArray)
	if err != nil {
		return nil, err
	}
	d.in()

	descOff := d.s.Position()
	chain, err := d.classDesc()
	if err != nil {
		return nil, err
	}
	switch {
	case chain == nil:
		return nil, jstream.Errorf(jstream.KindInvalidArrayClassDesc, descOff, "array class missing class description")
	case len(chain) != 1:
		return nil, jstream.Errorf(jstream.KindInvalidArrayClassDesc, descOff, "array class description made up of %d classes", len(chain))
	case !strings.HasPrefix(chain[0].Name, "["):
		return nil, jstream.Errorf(jstream.KindInvalidArrayClassDesc, descOff, "array class name %q does not begin with '['", chain[0].Name)
	case len(chain[0].Name) < 2:
		return nil, jstream.Errorf(jstream.KindInvalidArrayClassDesc, descOff, "array class name %q has no element type", chain[0].Name)
	}
	cd := chain[0]
	elem := TypeCode(cd.Name[1])

	h := d.newHandle(EntryArray, cd.Name, off)

	sizeOff := d.s.Position()
	size, err := d.s.ReadI32()
	if err != nil {
		return nil, err
	}
	d.value(sizeOff, "Array size", strconv.Itoa(int(size)))
	if size < 0 {
		return nil, jstream.Errorf(jstream.KindInvalidLength, sizeOff, "negative array size %d", size)
	}
	// Every element takes at least one byte.
	if int(size) > d.s.Remaining() {
		return nil, jstream.Errorf(jstream.KindTruncated, d.s.Position(), "array of %d elements but %d bytes remaining", size, d.s.Remaining())
	}

	d.event(d.s.Position(), "Values")
	d.in()
	elems := make([]FieldValue, 0, size)
	for i := 0; i < int(size); i++ {
		d.event(d.s.Position(), fmt.Sprintf("Index %d:", i))
		d.in()
		v, err := d.fieldValue(elem)
		if err != nil {
			return nil, err
		}
		d.out()
		elems = append(elems, v)
	}
	d.out()
	d.out()
	return &Array{Offset: off, Handle: h, Class: cd, Elements: elems}, nil
}
