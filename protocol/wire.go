package protocol

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// DecodeError indicates a buffer that is not a conformant envelope.
type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("decode error: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// field is one decoded tag/value pair. Varint and fixed values land in
// u; length-delimited values and group contents land in b.
type field struct {
	num protowire.Number
	typ protowire.Type
	u   uint64
	b   []byte
}

type unmarshaler interface {
	unmarshal(b []byte) error
}

// walk calls fn for every top-level field in b.
func walk(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return &DecodeError{Message: "invalid tag", Err: protowire.ParseError(n)}
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.u, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.u = uint64(v)
		case protowire.Fixed64Type:
			f.u, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		case protowire.StartGroupType:
			f.b, n = protowire.ConsumeGroup(num, b)
		default:
			return &DecodeError{Message: fmt.Sprintf("unexpected wire type %d for field %d", typ, num)}
		}
		if n < 0 {
			return &DecodeError{
				Message: fmt.Sprintf("invalid value for field %d", num),
				Err:     protowire.ParseError(n),
			}
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (f field) mismatch(want protowire.Type) error {
	return &DecodeError{Message: fmt.Sprintf("field %d: wire type %d, want %d", f.num, f.typ, want)}
}

func (f field) str() (string, error) {
	if f.typ != protowire.BytesType {
		return "", f.mismatch(protowire.BytesType)
	}
	return string(f.b), nil
}

func (f field) bytes() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, f.mismatch(protowire.BytesType)
	}
	return append([]byte(nil), f.b...), nil
}

func (f field) varint() (uint64, error) {
	if f.typ != protowire.VarintType {
		return 0, f.mismatch(protowire.VarintType)
	}
	return f.u, nil
}

func (f field) int32() (int32, error) {
	v, err := f.varint()
	return int32(v), err
}

func (f field) int64() (int64, error) {
	v, err := f.varint()
	return int64(v), err
}

func (f field) bool() (bool, error) {
	v, err := f.varint()
	return v != 0, err
}

func (f field) float32() (float32, error) {
	if f.typ != protowire.Fixed32Type {
		return 0, f.mismatch(protowire.Fixed32Type)
	}
	return math.Float32frombits(uint32(f.u)), nil
}

func (f field) message(m unmarshaler) error {
	if f.typ != protowire.BytesType {
		return f.mismatch(protowire.BytesType)
	}
	return m.unmarshal(f.b)
}

func (f field) group(m unmarshaler) error {
	if f.typ != protowire.StartGroupType {
		return f.mismatch(protowire.StartGroupType)
	}
	return m.unmarshal(f.b)
}

type marshaler interface {
	appendTo(b []byte) []byte
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarint(b, num, 1)
}

func appendFloat32(b []byte, num protowire.Number, v float32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func appendMessage(b []byte, num protowire.Number, m marshaler) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.appendTo(nil))
}

func appendGroup(b []byte, num protowire.Number, m marshaler) []byte {
	b = protowire.AppendTag(b, num, protowire.StartGroupType)
	b = m.appendTo(b)
	return protowire.AppendTag(b, num, protowire.EndGroupType)
}
