package decode

import (
	"fmt"
	"strconv"

	"serdump/internal/jstream"
)

// classDesc reads a classDesc: TC_CLASSDESC, TC_PROXYCLASSDESC, TC_NULL or
// TC_REFERENCE. TC_NULL yields a nil chain.
func (d *decoder) classDesc() (Chain, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	off := d.s.Position()
	tag, err := d.s.Peek()
	if err != nil {
		return nil, err
	}
	switch tag {
	case jstream.TcClassDesc, jstream.TcProxyClassDesc:
		cd, err := d.newClassDesc()
		if err != nil {
			return nil, err
		}
		return cd.Chain(), nil
	case jstream.TcNull:
		if _, err := d.null(); err != nil {
			return nil, err
		}
		return nil, nil
	case jstream.TcReference:
		_, h, err := d.refHandle()
		if err != nil {
			return nil, err
		}
		chain, ok := d.registry.Resolve(h)
		if !ok {
			return nil, jstream.Errorf(jstream.KindUnknownClassDescHandle, off+1, "invalid classDesc reference %s", h)
		}
		return chain, nil
	}
	return nil, d.unexpected(jstream.KindUnexpectedTag, off, tag, "classDesc")
}

// newClassDesc reads a TC_CLASSDESC or TC_PROXYCLASSDESC and registers the
// resulting chain.
func (d *decoder) newClassDesc() (*ClassDesc, error) {
	off := d.s.Position()
	tag, err := d.s.Peek()
	if err != nil {
		return nil, err
	}
	var cd *ClassDesc
	switch tag {
	case jstream.TcClassDesc:
		cd, err = d.plainClassDesc()
	case jstream.TcProxyClassDesc:
		cd, err = d.proxyClassDesc()
	default:
		return nil, d.unexpected(jstream.KindUnexpectedTag, off, tag, "newClassDesc")
	}
	if err != nil {
		return nil, err
	}
	d.registry.Register(cd.Chain())
	return cd, nil
}

// TC_CLASSDESC className serialVersionUID newHandle classDescInfo
//
// classDescInfo: classDescFlags fields classAnnotation superClassDesc
func (d *decoder) plainClassDesc() (*ClassDesc, error) {
	off, err := d.tag(jstream.TcClassDesc)
	if err != nil {
		return nil, err
	}
	d.in()

	d.event(d.s.Position(), "className")
	d.in()
	name, err := d.utf()
	if err != nil {
		return nil, err
	}
	d.out()

	suidOff := d.s.Position()
	suid, err := d.s.ReadI64()
	if err != nil {
		return nil, err
	}
	d.value(suidOff, "serialVersionUID", fmt.Sprintf("0x%016x", uint64(suid)))

	h := d.newHandle(EntryClassDesc, name, off)

	flags, err := d.classDescFlags()
	if err != nil {
		return nil, err
	}
	fields, err := d.fields()
	if err != nil {
		return nil, err
	}
	ann, err := d.annotation("classAnnotations")
	if err != nil {
		return nil, err
	}
	super, err := d.superClassDesc()
	if err != nil {
		return nil, err
	}
	d.out()

	return &ClassDesc{
		Offset:           off,
		Name:             name,
		SerialVersionUID: suid,
		Handle:           h,
		Flags:            flags,
		Fields:           fields,
		Annotations:      ann,
		Super:            super,
	}, nil
}

// TC_PROXYCLASSDESC newHandle proxyClassDescInfo
//
// proxyClassDescInfo: (int)count proxyInterfaceName[count] classAnnotation superClassDesc
func (d *decoder) proxyClassDesc() (*ClassDesc, error) {
	off, err := d.tag(jstream.TcProxyClassDesc)
	if err != nil {
		return nil, err
	}
	d.in()

	h := d.newHandle(EntryClassDesc, ProxyClassName, off)

	countOff := d.s.Position()
	count, err := d.s.ReadI32()
	if err != nil {
		return nil, err
	}
	d.value(countOff, "Interface count", strconv.Itoa(int(count)))
	if count < 0 {
		return nil, jstream.Errorf(jstream.KindInvalidLength, countOff, "negative proxy interface count %d", count)
	}

	d.event(d.s.Position(), "proxyInterfaceNames")
	d.in()
	// Each name is at least its 2-byte length.
	names := make([]string, 0, min(int(count), d.s.Remaining()/2))
	for i := 0; i < int(count); i++ {
		d.event(d.s.Position(), fmt.Sprintf("%d:", i))
		d.in()
		name, err := d.utf()
		if err != nil {
			return nil, err
		}
		d.out()
		names = append(names, name)
	}
	d.out()

	ann, err := d.annotation("classAnnotations")
	if err != nil {
		return nil, err
	}
	super, err := d.superClassDesc()
	if err != nil {
		return nil, err
	}
	d.out()

	return &ClassDesc{
		Offset:      off,
		Name:        ProxyClassName,
		Handle:      h,
		Annotations: ann,
		Proxy:       true,
		Interfaces:  names,
		Super:       super,
	}, nil
}

func (d *decoder) classDescFlags() (Flags, error) {
	off := d.s.Position()
	b, err := d.s.ReadU8()
	if err != nil {
		return 0, err
	}
	flags := Flags(b)
	d.value(off, "classDescFlags", fmt.Sprintf("0x%02x - %s", b, flags))
	if err := flags.Validate(); err != nil {
		return 0, jstream.Errorf(jstream.KindInvalidClassDescFlags, off, "illegal classDescFlags 0x%02x: %v", b, err)
	}
	return flags, nil
}

// fields: (short)count fieldDesc[count]
func (d *decoder) fields() ([]FieldSpec, error) {
	off := d.s.Position()
	count, err := d.s.ReadU16()
	if err != nil {
		return nil, err
	}
	d.value(off, "fieldCount", strconv.Itoa(int(count)))
	if count == 0 {
		return nil, nil
	}

	d.event(d.s.Position(), "Fields")
	d.in()
	// A field descriptor is at least a type code and a 2-byte name length.
	fields := make([]FieldSpec, 0, min(int(count), d.s.Remaining()/3))
	for i := 0; i < int(count); i++ {
		d.event(d.s.Position(), fmt.Sprintf("%d:", i))
		d.in()
		f, err := d.fieldDesc()
		if err != nil {
			return nil, err
		}
		d.out()
		fields = append(fields, f)
	}
	d.out()
	return fields, nil
}

// fieldDesc: prim_typecode fieldName | obj_typecode fieldName className1
func (d *decoder) fieldDesc() (FieldSpec, error) {
	off := d.s.Position()
	b, err := d.s.ReadU8()
	if err != nil {
		return FieldSpec{}, err
	}
	code := TypeCode(b)
	if !code.Valid() {
		return FieldSpec{}, jstream.Errorf(jstream.KindIllegalFieldTypeCode, off, "illegal field type code (%q, 0x%02x)", rune(b), b)
	}
	d.value(off, "Type", fmt.Sprintf("%s - %s", code, code.Name()))

	d.event(d.s.Position(), "fieldName")
	d.in()
	name, err := d.utf()
	if err != nil {
		return FieldSpec{}, err
	}
	d.out()

	f := FieldSpec{Code: code, Name: name}
	if code.Composite() {
		d.in()
		cnOff := d.s.Position()
		f.ClassName, err = d.stringValue()
		if err != nil {
			return FieldSpec{}, err
		}
		d.value(cnOff, "className1", f.ClassName)
		d.out()
	}
	return f, nil
}

// annotation reads content elements up to and including TC_ENDBLOCKDATA.
func (d *decoder) annotation(label string) ([]Content, error) {
	d.event(d.s.Position(), label)
	d.in()
	var out []Content
	for {
		off := d.s.Position()
		tag, err := d.s.Peek()
		if err != nil {
			return nil, err
		}
		if tag == jstream.TcEndBlockData {
			if err := d.s.Skip(1); err != nil {
				return nil, err
			}
			d.value(off, "TC_ENDBLOCKDATA", fmt.Sprintf("0x%02x", tag))
			break
		}
		c, err := d.content()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	d.out()
	return out, nil
}

func (d *decoder) superClassDesc() (Chain, error) {
	d.event(d.s.Position(), "superClassDesc")
	d.in()
	chain, err := d.classDesc()
	if err != nil {
		return nil, err
	}
	d.out()
	return chain, nil
}
