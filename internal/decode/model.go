// Package decode parses Java object serialization streams into a flat
// trace of decode events and a tree of content nodes.
package decode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"serdump/internal/jstream"
)

// Handle is a wire handle assigned to a referenceable construct.
type Handle int32

func (h Handle) String() string {
	return fmt.Sprintf("0x%08x", uint32(h))
}

// ProxyClassName names the pseudo-class synthesized for TC_PROXYCLASSDESC.
const ProxyClassName = "<Dynamic Proxy Class>"

// RefSentinel stands in for a string read by reference in a newString position.
const RefSentinel = "[TC_REF]"

// Flags is a classDescFlags bitset.
type Flags byte

func (f Flags) WriteMethod() bool    { return byte(f)&jstream.ScWriteMethod != 0 }
func (f Flags) Serializable() bool   { return byte(f)&jstream.ScSerializable != 0 }
func (f Flags) Externalizable() bool { return byte(f)&jstream.ScExternalizable != 0 }
func (f Flags) BlockData() bool      { return byte(f)&jstream.ScBlockData != 0 }
func (f Flags) Enum() bool           { return byte(f)&jstream.ScEnum != 0 }

// HasObjectAnnotation reports whether classdata for this class ends with an
// objectAnnotation block.
func (f Flags) HasObjectAnnotation() bool {
	return (f.Serializable() && f.WriteMethod()) || (f.Externalizable() && f.BlockData())
}

// Validate checks the mutual-exclusion rules between flag bits.
func (f Flags) Validate() error {
	switch {
	case f.Serializable():
		if f.Externalizable() {
			return errors.New("SC_SERIALIZABLE is not compatible with SC_EXTERNALIZABLE")
		}
		if f.BlockData() {
			return errors.New("SC_SERIALIZABLE is not compatible with SC_BLOCKDATA")
		}
	case f.Externalizable():
		if f.WriteMethod() {
			return errors.New("SC_EXTERNALIZABLE is not compatible with SC_WRITE_METHOD")
		}
	case f != 0:
		return errors.New("must include either SC_SERIALIZABLE or SC_EXTERNALIZABLE")
	}
	return nil
}

func (f Flags) String() string {
	var parts []string
	if f.WriteMethod() {
		parts = append(parts, "SC_WRITE_METHOD")
	}
	if f.Serializable() {
		parts = append(parts, "SC_SERIALIZABLE")
	}
	if f.Externalizable() {
		parts = append(parts, "SC_EXTERNALIZABLE")
	}
	if f.BlockData() {
		parts = append(parts, "SC_BLOCKDATA")
	}
	if f.Enum() {
		parts = append(parts, "SC_ENUM")
	}
	return strings.Join(parts, " | ")
}

// TypeCode is a field or array element type code.
type TypeCode byte

const (
	CodeByte    TypeCode = 'B'
	CodeChar    TypeCode = 'C'
	CodeDouble  TypeCode = 'D'
	CodeFloat   TypeCode = 'F'
	CodeInt     TypeCode = 'I'
	CodeLong    TypeCode = 'J'
	CodeShort   TypeCode = 'S'
	CodeBoolean TypeCode = 'Z'
	CodeArray   TypeCode = '['
	CodeObject  TypeCode = 'L'
)

var codeNames = map[TypeCode]string{
	CodeByte:    "byte",
	CodeChar:    "char",
	CodeDouble:  "double",
	CodeFloat:   "float",
	CodeInt:     "int",
	CodeLong:    "long",
	CodeShort:   "short",
	CodeBoolean: "boolean",
	CodeArray:   "array",
	CodeObject:  "object",
}

// Valid reports whether c is one of the ten legal codes.
func (c TypeCode) Valid() bool {
	_, ok := codeNames[c]
	return ok
}

// Composite reports whether values of this code are content elements.
func (c TypeCode) Composite() bool { return c == CodeArray || c == CodeObject }

// Name returns the Java type keyword for c ("int", "object", ...).
func (c TypeCode) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("0x%02x", byte(c))
}

func (c TypeCode) String() string { return string(rune(c)) }

// FieldSpec describes one serializable field of a class.
type FieldSpec struct {
	Code TypeCode `json:"code"`
	Name string   `json:"name"`
	// ClassName is the field's JVM type signature for '[' and 'L' fields,
	// RefSentinel when it was written by reference, and "" for primitives.
	ClassName string `json:"class_name,omitempty"`
}

// ClassDesc is a class descriptor as recorded in the stream.
type ClassDesc struct {
	Offset           int         `json:"offset"`
	Name             string      `json:"name"`
	SerialVersionUID int64       `json:"serial_version_uid"`
	Handle           Handle      `json:"handle"`
	Flags            Flags       `json:"flags"`
	Fields           []FieldSpec `json:"fields,omitempty"`
	Annotations      []Content   `json:"annotations,omitempty"`
	Proxy            bool        `json:"proxy,omitempty"`
	Interfaces       []string    `json:"interfaces,omitempty"`
	Super            Chain       `json:"super,omitempty"`
}

// Chain returns the descriptor followed by its recorded ancestors.
func (cd *ClassDesc) Chain() Chain {
	c := make(Chain, 0, 1+len(cd.Super))
	c = append(c, cd)
	return append(c, cd.Super...)
}

// Chain is a class descriptor chain, most-derived first.
type Chain []*ClassDesc

// Name returns the most-derived class name, or "" for an empty chain.
func (c Chain) Name() string {
	if len(c) == 0 {
		return ""
	}
	return c[0].Name
}

// FieldValue is one decoded field or array element.
type FieldValue struct {
	Name string // empty for array elements
	Code TypeCode
	// Bits holds primitive values zero-extended from their wire width.
	Bits uint64
	// Content is set for '[' and 'L' values.
	Content Content
}

func (v FieldValue) Byte() int8      { return int8(v.Bits) }
func (v FieldValue) Char() uint16    { return uint16(v.Bits) }
func (v FieldValue) Short() int16    { return int16(v.Bits) }
func (v FieldValue) Int() int32      { return int32(v.Bits) }
func (v FieldValue) Long() int64     { return int64(v.Bits) }
func (v FieldValue) Float() float32  { return math.Float32frombits(uint32(v.Bits)) }
func (v FieldValue) Double() float64 { return math.Float64frombits(v.Bits) }

// Bool decodes a boolean field. A stored zero byte reads as true; this
// mirrors the dumper this format description was taken from and is kept
// verbatim.
func (v FieldValue) Bool() bool { return v.Bits == 0 }

// Text formats a primitive value for the trace.
func (v FieldValue) Text() string {
	switch v.Code {
	case CodeByte:
		b := v.Byte()
		if b >= 0x20 && b <= 0x7e {
			return fmt.Sprintf("%d (ASCII: %c) - 0x%02x", b, rune(b), uint8(b))
		}
		return fmt.Sprintf("%d - 0x%02x", b, uint8(b))
	case CodeChar:
		return fmt.Sprintf("%c - 0x%04x", rune(v.Char()), v.Char())
	case CodeDouble:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case CodeFloat:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case CodeInt:
		return strconv.FormatInt(int64(v.Int()), 10)
	case CodeLong:
		return strconv.FormatInt(v.Long(), 10)
	case CodeShort:
		return strconv.FormatInt(int64(v.Short()), 10)
	case CodeBoolean:
		return strconv.FormatBool(v.Bool())
	}
	return ""
}

// Content is a decoded content element.
type Content interface {
	// Tag returns the tag byte that introduced the element.
	Tag() byte
	// Pos returns the byte offset of the tag.
	Pos() int
}

type Null struct {
	Offset int `json:"offset"`
}

// Reference is a TC_REFERENCE back to an earlier handle.
type Reference struct {
	Offset int       `json:"offset"`
	Handle Handle    `json:"handle"`
	Target EntryKind `json:"target"`
	Name   string    `json:"name,omitempty"`
}

// Object is a TC_OBJECT instance.
type Object struct {
	Offset int         `json:"offset"`
	Handle Handle      `json:"handle"`
	Class  Chain       `json:"class"`
	Data   []ClassData `json:"data,omitempty"`
}

// ClassData holds the values written for one class of an object.
type ClassData struct {
	Class       string       `json:"class"`
	Handle      Handle       `json:"handle"`
	Values      []FieldValue `json:"values,omitempty"`
	Annotations []Content    `json:"annotations,omitempty"`
}

// Class is a TC_CLASS literal.
type Class struct {
	Offset int    `json:"offset"`
	Handle Handle `json:"handle"`
	Desc   Chain  `json:"desc"`
}

// Array is a TC_ARRAY instance.
type Array struct {
	Offset   int          `json:"offset"`
	Handle   Handle       `json:"handle"`
	Class    *ClassDesc   `json:"-"`
	Elements []FieldValue `json:"elements"`
}

// String is a TC_STRING or TC_LONGSTRING instance.
type String struct {
	Offset int    `json:"offset"`
	Handle Handle `json:"handle"`
	Value  string `json:"value"`
	Long   bool   `json:"long,omitempty"`
}

// Enum is a TC_ENUM constant.
type Enum struct {
	Offset   int    `json:"offset"`
	Handle   Handle `json:"handle"`
	Class    Chain  `json:"class"`
	Constant string `json:"constant"`
}

// BlockData is an opaque TC_BLOCKDATA or TC_BLOCKDATALONG run.
type BlockData struct {
	Offset int    `json:"offset"`
	Data   []byte `json:"data"`
	Long   bool   `json:"long,omitempty"`
}

func (n *Null) Tag() byte      { return jstream.TcNull }
func (n *Reference) Tag() byte { return jstream.TcReference }
func (n *Object) Tag() byte    { return jstream.TcObject }
func (n *Class) Tag() byte     { return jstream.TcClass }
func (n *Array) Tag() byte     { return jstream.TcArray }
func (n *Enum) Tag() byte      { return jstream.TcEnum }

func (n *String) Tag() byte {
	if n.Long {
		return jstream.TcLongString
	}
	return jstream.TcString
}

func (n *BlockData) Tag() byte {
	if n.Long {
		return jstream.TcBlockDataLong
	}
	return jstream.TcBlockData
}

func (cd *ClassDesc) Tag() byte {
	if cd.Proxy {
		return jstream.TcProxyClassDesc
	}
	return jstream.TcClassDesc
}

func (n *Null) Pos() int       { return n.Offset }
func (n *Reference) Pos() int  { return n.Offset }
func (n *Object) Pos() int     { return n.Offset }
func (n *Class) Pos() int      { return n.Offset }
func (n *Array) Pos() int      { return n.Offset }
func (n *String) Pos() int     { return n.Offset }
func (n *Enum) Pos() int       { return n.Offset }
func (n *BlockData) Pos() int  { return n.Offset }
func (cd *ClassDesc) Pos() int { return cd.Offset }
