// All multi-byte values are big-endian, as written by java.io.DataOutput.

package jstream

import (
	"encoding/binary"
	"math"
)

// Stream reads a serialization stream from an in-memory buffer.
type Stream struct {
	data []byte
	pos  int
	end  int
}

// NewStream creates a stream over the given data.
func NewStream(data []byte) *Stream {
	return &Stream{data: data, pos: 0, end: len(data)}
}

// NewStreamAt creates a stream starting at offset within data.
func NewStreamAt(data []byte, offset int) *Stream {
	if offset > len(data) {
		offset = len(data)
	}
	if offset < 0 {
		offset = 0
	}
	return &Stream{data: data, pos: offset, end: len(data)}
}

// Position returns the current read position.
func (s *Stream) Position() int { return s.pos }

// Remaining returns bytes left to read.
func (s *Stream) Remaining() int { return s.end - s.pos }

// HasRemaining reports whether at least one byte is left.
func (s *Stream) HasRemaining() bool { return s.pos < s.end }

func (s *Stream) need(n int) error {
	if n < 0 || n > s.end-s.pos {
		return Errorf(KindTruncated, s.pos, "need %d bytes, %d remaining", n, s.end-s.pos)
	}
	return nil
}

// Peek returns the next byte without consuming it.
func (s *Stream) Peek() (byte, error) {
	if err := s.need(1); err != nil {
		return 0, err
	}
	return s.data[s.pos], nil
}

// ReadU8 reads a single byte.
func (s *Stream) ReadU8() (uint8, error) {
	if err := s.need(1); err != nil {
		return 0, err
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

// ReadI8 reads a signed byte.
func (s *Stream) ReadI8() (int8, error) {
	b, err := s.ReadU8()
	return int8(b), err
}

// ReadU16 reads a big-endian uint16.
func (s *Stream) ReadU16() (uint16, error) {
	if err := s.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(s.data[s.pos:])
	s.pos += 2
	return v, nil
}

// ReadU32 reads a big-endian uint32.
func (s *Stream) ReadU32() (uint32, error) {
	if err := s.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(s.data[s.pos:])
	s.pos += 4
	return v, nil
}

// ReadU64 reads a big-endian uint64.
func (s *Stream) ReadU64() (uint64, error) {
	if err := s.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(s.data[s.pos:])
	s.pos += 8
	return v, nil
}

// ReadI16 reads a big-endian int16.
func (s *Stream) ReadI16() (int16, error) {
	v, err := s.ReadU16()
	return int16(v), err
}

// ReadI32 reads a big-endian int32.
func (s *Stream) ReadI32() (int32, error) {
	v, err := s.ReadU32()
	return int32(v), err
}

// ReadI64 reads a big-endian int64.
func (s *Stream) ReadI64() (int64, error) {
	v, err := s.ReadU64()
	return int64(v), err
}

// ReadF32 reads a big-endian IEEE 754 float32.
func (s *Stream) ReadF32() (float32, error) {
	v, err := s.ReadU32()
	return math.Float32frombits(v), err
}

// ReadF64 reads a big-endian IEEE 754 float64.
func (s *Stream) ReadF64() (float64, error) {
	v, err := s.ReadU64()
	return math.Float64frombits(v), err
}

// ReadBytes reads n bytes into a new slice. The length is checked against
// the remaining input before anything is allocated.
func (s *Stream) ReadBytes(n int) ([]byte, error) {
	if err := s.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, s.data[s.pos:s.pos+n])
	s.pos += n
	return out, nil
}

// Skip advances the position by n bytes.
func (s *Stream) Skip(n int) error {
	if err := s.need(n); err != nil {
		return err
	}
	s.pos += n
	return nil
}
