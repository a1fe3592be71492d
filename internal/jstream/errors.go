package jstream

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure.
type Kind string

const (
	KindMalformedHeader           Kind = "malformed_header"
	KindTruncated                 Kind = "truncated_stream"
	KindUnexpectedTag             Kind = "unexpected_tag"
	KindUnexpectedArrayFieldTag   Kind = "unexpected_array_field_tag"
	KindUnexpectedObjectFieldTag  Kind = "unexpected_object_field_tag"
	KindInvalidClassDescFlags     Kind = "invalid_classdesc_flags"
	KindUnknownClassDescHandle    Kind = "unknown_classdesc_handle"
	KindInvalidArrayClassDesc     Kind = "invalid_array_classdesc"
	KindUnsupportedExternalizable Kind = "unsupported_externalizable"
	KindIllegalFieldTypeCode      Kind = "illegal_field_type_code"
	KindUnknownHandle             Kind = "unknown_handle"
	KindInvalidLength             Kind = "invalid_length"
	KindDepthExceeded             Kind = "depth_exceeded"
)

// Sentinels for errors.Is. A *Error matches the sentinel of its Kind.
var (
	ErrMalformedHeader           = errors.New("jstream: malformed header")
	ErrTruncated                 = errors.New("jstream: truncated stream")
	ErrUnexpectedTag             = errors.New("jstream: unexpected tag")
	ErrUnexpectedArrayFieldTag   = errors.New("jstream: unexpected array field tag")
	ErrUnexpectedObjectFieldTag  = errors.New("jstream: unexpected object field tag")
	ErrInvalidClassDescFlags     = errors.New("jstream: invalid classDescFlags")
	ErrUnknownClassDescHandle    = errors.New("jstream: unknown classDesc handle")
	ErrInvalidArrayClassDesc     = errors.New("jstream: invalid array classDesc")
	ErrUnsupportedExternalizable = errors.New("jstream: externalizable classdata not supported")
	ErrIllegalFieldTypeCode      = errors.New("jstream: illegal field type code")
	ErrUnknownHandle             = errors.New("jstream: unknown handle")
	ErrInvalidLength             = errors.New("jstream: invalid length")
	ErrDepthExceeded             = errors.New("jstream: nesting depth exceeded")
)

var sentinels = map[Kind]error{
	KindMalformedHeader:           ErrMalformedHeader,
	KindTruncated:                 ErrTruncated,
	KindUnexpectedTag:             ErrUnexpectedTag,
	KindUnexpectedArrayFieldTag:   ErrUnexpectedArrayFieldTag,
	KindUnexpectedObjectFieldTag:  ErrUnexpectedObjectFieldTag,
	KindInvalidClassDescFlags:     ErrInvalidClassDescFlags,
	KindUnknownClassDescHandle:    ErrUnknownClassDescHandle,
	KindInvalidArrayClassDesc:     ErrInvalidArrayClassDesc,
	KindUnsupportedExternalizable: ErrUnsupportedExternalizable,
	KindIllegalFieldTypeCode:      ErrIllegalFieldTypeCode,
	KindUnknownHandle:             ErrUnknownHandle,
	KindInvalidLength:             ErrInvalidLength,
	KindDepthExceeded:             ErrDepthExceeded,
}

// Error is a fatal decode failure at a byte offset.
type Error struct {
	Kind   Kind   `json:"kind"`
	Offset int    `json:"offset"`
	Msg    string `json:"msg"`
}

// Errorf builds an *Error of the given kind at offset.
func Errorf(kind Kind, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] 0x%x: %s", e.Kind, e.Offset, e.Msg)
}

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
