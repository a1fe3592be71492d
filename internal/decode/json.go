package decode

import (
	"encoding/hex"
	"encoding/json"
	"math"
)

// JSON encoding of the content tree. Every node carries a "type"
// discriminator; class chains are written as name/handle references so a
// descriptor's body appears once, where it was introduced.

func (h Handle) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (c TypeCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

type classRef struct {
	Name   string `json:"name"`
	Handle Handle `json:"handle"`
}

func (c Chain) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	refs := make([]classRef, len(c))
	for i, cd := range c {
		refs[i] = classRef{Name: cd.Name, Handle: cd.Handle}
	}
	return json.Marshal(refs)
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	out := struct {
		Name  string   `json:"name,omitempty"`
		Code  TypeCode `json:"code"`
		Value any      `json:"value"`
	}{Name: v.Name, Code: v.Code}

	switch v.Code {
	case CodeByte:
		out.Value = v.Byte()
	case CodeChar:
		out.Value = string(rune(v.Char()))
	case CodeShort:
		out.Value = v.Short()
	case CodeInt:
		out.Value = v.Int()
	case CodeLong:
		out.Value = v.Long()
	case CodeBoolean:
		out.Value = v.Bool()
	case CodeFloat, CodeDouble:
		f := v.Double()
		if v.Code == CodeFloat {
			f = float64(v.Float())
		}
		// JSON has no NaN or infinities.
		if math.IsNaN(f) || math.IsInf(f, 0) {
			out.Value = v.Text()
		} else {
			out.Value = f
		}
	default:
		out.Value = v.Content
	}
	return json.Marshal(out)
}

func (n *Null) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Offset int    `json:"offset"`
	}{"null", n.Offset})
}

func (n *Reference) MarshalJSON() ([]byte, error) {
	type alias Reference
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{"reference", (*alias)(n)})
}

func (n *Object) MarshalJSON() ([]byte, error) {
	type alias Object
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{"object", (*alias)(n)})
}

func (n *Class) MarshalJSON() ([]byte, error) {
	type alias Class
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{"class", (*alias)(n)})
}

func (n *Array) MarshalJSON() ([]byte, error) {
	type alias Array
	out := struct {
		Type      string `json:"type"`
		ClassName string `json:"class"`
		*alias
	}{Type: "array", alias: (*alias)(n)}
	if n.Class != nil {
		out.ClassName = n.Class.Name
	}
	return json.Marshal(out)
}

func (n *String) MarshalJSON() ([]byte, error) {
	type alias String
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{"string", (*alias)(n)})
}

func (n *Enum) MarshalJSON() ([]byte, error) {
	type alias Enum
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{"enum", (*alias)(n)})
}

func (n *BlockData) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Offset int    `json:"offset"`
		Data   string `json:"data"`
		Long   bool   `json:"long,omitempty"`
	}{"blockdata", n.Offset, hex.EncodeToString(n.Data), n.Long})
}

func (cd *ClassDesc) MarshalJSON() ([]byte, error) {
	type alias ClassDesc
	return json.Marshal(struct {
		Type      string `json:"type"`
		FlagNames string `json:"flag_names,omitempty"`
		*alias
	}{"classdesc", cd.Flags.String(), (*alias)(cd)})
}
