package decode

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"serdump/internal/jstream"
)

// decoder is one parse session. The handle table and registry live and die
// with it.
type decoder struct {
	s        *jstream.Stream
	handles  *HandleTable
	registry *Registry
	sink     Sink
	log      zerolog.Logger
	depth    int // event indentation
	nest     int // grammar recursion
	maxDepth int
}

// Decode parses a complete stream: header followed by content elements
// until the buffer is exhausted. Every error is fatal and is a
// *jstream.Error carrying the failing offset; the returned Result then
// holds whatever was decoded before it.
func Decode(data []byte, opts Options) (*Result, error) {
	var rec *Recorder
	sink := opts.Sink
	if sink == nil {
		rec = &Recorder{}
		sink = rec
	}
	d := &decoder{
		s:        jstream.NewStream(data),
		handles:  NewHandleTable(),
		registry: NewRegistry(),
		sink:     sink,
		log:      opts.logger(),
		maxDepth: opts.EffectiveMaxDepth(),
	}

	d.log.Debug().Int("bytes", len(data)).Msg("decode start")
	res := &Result{}
	err := d.stream(res)
	res.Handles = d.handles.Entries()
	res.Consumed = d.s.Position()
	if rec != nil {
		res.Events = rec.Events()
	}
	if err != nil {
		ev := d.log.Debug().Err(err)
		if e, ok := err.(*jstream.Error); ok {
			ev = ev.Str("kind", string(e.Kind)).Int("offset", e.Offset)
		}
		ev.Int("handles", len(res.Handles)).Msg("decode failed")
		return res, err
	}
	d.log.Debug().
		Int("contents", len(res.Contents)).
		Int("handles", len(res.Handles)).
		Int("classdescs", d.registry.Len()).
		Msg("decode done")
	return res, nil
}

func (d *decoder) stream(res *Result) error {
	magic, err := d.s.ReadU16()
	if err != nil {
		return jstream.Errorf(jstream.KindMalformedHeader, 0, "stream too short for STREAM_MAGIC")
	}
	if magic != jstream.StreamMagic {
		return jstream.Errorf(jstream.KindMalformedHeader, 0, "invalid STREAM_MAGIC 0x%04x, should be 0x%04x", magic, jstream.StreamMagic)
	}
	d.value(0, "STREAM_MAGIC", fmt.Sprintf("0x%04x", magic))

	version, err := d.s.ReadU16()
	if err != nil {
		return jstream.Errorf(jstream.KindMalformedHeader, 2, "stream too short for STREAM_VERSION")
	}
	if version != jstream.StreamVersion {
		return jstream.Errorf(jstream.KindMalformedHeader, 2, "invalid STREAM_VERSION 0x%04x, should be 0x%04x", version, jstream.StreamVersion)
	}
	d.value(2, "STREAM_VERSION", fmt.Sprintf("0x%04x", version))

	d.event(d.s.Position(), "Contents")
	d.in()
	for d.s.HasRemaining() {
		c, err := d.content()
		if err != nil {
			return err
		}
		res.Contents = append(res.Contents, c)
	}
	d.out()
	return nil
}

func (d *decoder) in()  { d.depth++ }
func (d *decoder) out() { d.depth-- }

func (d *decoder) event(off int, label string) {
	d.sink.Emit(Event{Depth: d.depth, Label: label, Offset: off})
}

func (d *decoder) value(off int, label, value string) {
	d.sink.Emit(Event{Depth: d.depth, Label: label, Value: &value, Offset: off})
}

// enter guards every recursive grammar rule.
func (d *decoder) enter() error {
	d.nest++
	if d.nest > d.maxDepth {
		return jstream.Errorf(jstream.KindDepthExceeded, d.s.Position(), "nesting deeper than %d", d.maxDepth)
	}
	return nil
}

func (d *decoder) leave() { d.nest-- }

func (d *decoder) unexpected(kind jstream.Kind, off int, tag byte, where string) error {
	d.value(off, "Invalid "+where+" type", fmt.Sprintf("0x%02x", tag))
	if name := jstream.TagName(tag); name != "" {
		return jstream.Errorf(kind, off, "illegal %s type 0x%02x (%s)", where, tag, name)
	}
	return jstream.Errorf(kind, off, "illegal %s type 0x%02x", where, tag)
}

// tag consumes the expected tag byte and returns its offset.
func (d *decoder) tag(want byte) (int, error) {
	off := d.s.Position()
	b, err := d.s.ReadU8()
	if err != nil {
		return off, err
	}
	d.value(off, jstream.TagName(want), fmt.Sprintf("0x%02x", b))
	if b != want {
		return off, jstream.Errorf(jstream.KindUnexpectedTag, off, "illegal value 0x%02x for %s (should be 0x%02x)", b, jstream.TagName(want), want)
	}
	return off, nil
}

func (d *decoder) newHandle(kind EntryKind, name string, tagOff int) Handle {
	h := d.handles.Allocate(kind, name, tagOff)
	d.value(d.s.Position(), "newHandle", h.String())
	d.log.Trace().Stringer("handle", h).Str("kind", string(kind)).Str("name", name).Msg("handle")
	return h
}

// content reads one content element.
func (d *decoder) content() (Content, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	off := d.s.Position()
	tag, err := d.s.Peek()
	if err != nil {
		return nil, err
	}

	var c Content
	switch tag {
	case jstream.TcObject:
		c, err = d.newObject()
	case jstream.TcClass:
		c, err = d.newClass()
	case jstream.TcArray:
		c, err = d.newArray()
	case jstream.TcString, jstream.TcLongString:
		c, err = d.newString()
	case jstream.TcEnum:
		c, err = d.newEnum()
	case jstream.TcClassDesc, jstream.TcProxyClassDesc:
		c, err = d.newClassDesc()
	case jstream.TcReference:
		c, err = d.reference()
	case jstream.TcNull:
		c, err = d.null()
	case jstream.TcBlockData:
		c, err = d.blockData()
	case jstream.TcBlockDataLong:
		c, err = d.longBlockData()
	default:
		return nil, d.unexpected(jstream.KindUnexpectedTag, off, tag, "content element")
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// TC_OBJECT classDesc newHandle classdata[]
func (d *decoder) newObject() (*Object, error) {
	off, err := d.tag(jstream.TcObject)
	if err != nil {
		return nil, err
	}
	d.in()
	chain, err := d.classDesc()
	if err != nil {
		return nil, err
	}
	h := d.newHandle(EntryObject, chain.Name(), off)
	data, err := d.classData(chain)
	if err != nil {
		return nil, err
	}
	d.out()
	return &Object{Offset: off, Handle: h, Class: chain, Data: data}, nil
}

// TC_CLASS classDesc newHandle
func (d *decoder) newClass() (*Class, error) {
	off, err := d.tag(jstream.TcClass)
	if err != nil {
		return nil, err
	}
	d.in()
	chain, err := d.classDesc()
	if err != nil {
		return nil, err
	}
	d.out()
	h := d.newHandle(EntryClass, chain.Name(), off)
	return &Class{Offset: off, Handle: h, Desc: chain}, nil
}

// TC_ENUM classDesc newHandle enumConstantName
func (d *decoder) newEnum() (*Enum, error) {
	off, err := d.tag(jstream.TcEnum)
	if err != nil {
		return nil, err
	}
	d.in()
	chain, err := d.classDesc()
	if err != nil {
		return nil, err
	}
	h := d.newHandle(EntryEnum, chain.Name(), off)
	constant, err := d.stringValue()
	if err != nil {
		return nil, err
	}
	d.handles.Bind(h, chain.Name()+"."+constant)
	d.out()
	return &Enum{Offset: off, Handle: h, Class: chain, Constant: constant}, nil
}

// TC_REFERENCE (int)handle, without resolving it.
func (d *decoder) refHandle() (int, Handle, error) {
	off, err := d.tag(jstream.TcReference)
	if err != nil {
		return off, 0, err
	}
	d.in()
	v, err := d.s.ReadI32()
	if err != nil {
		return off, 0, err
	}
	h := Handle(v)
	d.value(off+1, "Handle", h.String())
	d.out()
	return off, h, nil
}

func (d *decoder) reference() (*Reference, error) {
	off, h, err := d.refHandle()
	if err != nil {
		return nil, err
	}
	e, ok := d.handles.Lookup(h)
	if !ok {
		return nil, jstream.Errorf(jstream.KindUnknownHandle, off+1, "reference to unassigned handle %s (next is %s)", h, d.handles.Next())
	}
	return &Reference{Offset: off, Handle: h, Target: e.Kind, Name: e.Name}, nil
}

func (d *decoder) null() (*Null, error) {
	off, err := d.tag(jstream.TcNull)
	if err != nil {
		return nil, err
	}
	return &Null{Offset: off}, nil
}

// TC_BLOCKDATA (unsigned byte)size contents
func (d *decoder) blockData() (*BlockData, error) {
	off, err := d.tag(jstream.TcBlockData)
	if err != nil {
		return nil, err
	}
	d.in()
	n, err := d.s.ReadU8()
	if err != nil {
		return nil, err
	}
	d.value(off+1, "Length", fmt.Sprintf("%d - 0x%02x", n, n))
	raw, err := d.s.ReadBytes(int(n))
	if err != nil {
		return nil, err
	}
	d.value(off+2, "Contents", "0x"+hex.EncodeToString(raw))
	d.out()
	return &BlockData{Offset: off, Data: raw}, nil
}

// TC_BLOCKDATALONG (int)size contents
func (d *decoder) longBlockData() (*BlockData, error) {
	off, err := d.tag(jstream.TcBlockDataLong)
	if err != nil {
		return nil, err
	}
	d.in()
	n, err := d.s.ReadI32()
	if err != nil {
		return nil, err
	}
	d.value(off+1, "Length", strconv.Itoa(int(n)))
	if n < 0 {
		return nil, jstream.Errorf(jstream.KindInvalidLength, off+1, "negative block data length %d", n)
	}
	raw, err := d.s.ReadBytes(int(n))
	if err != nil {
		return nil, err
	}
	d.value(off+5, "Contents", "0x"+hex.EncodeToString(raw))
	d.out()
	return &BlockData{Offset: off, Data: raw, Long: true}, nil
}
