package eventstream

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValueType is the single-byte tag identifying the wire encoding of a header
// value. Tags 0-9 are the only valid values.
type ValueType uint8

const (
	TypeBoolTrue  ValueType = 0 // tag only, no body
	TypeBoolFalse ValueType = 1 // tag only, no body
	TypeInt8      ValueType = 2 // 8-bit signed integer
	TypeInt16     ValueType = 3 // 16-bit signed integer, big-endian
	TypeInt32     ValueType = 4 // 32-bit signed integer, big-endian
	TypeInt64     ValueType = 5 // 64-bit signed integer, big-endian
	TypeByteArray ValueType = 6 // u16 length prefix + raw bytes
	TypeString    ValueType = 7 // u16 length prefix + UTF-8 bytes
	TypeTimestamp ValueType = 8 // 64-bit signed millis since Unix epoch
	TypeUUID      ValueType = 9 // fixed 16 raw bytes
)

// maxValueLen is the largest string or byte-array value representable with
// the u16 length prefix.
const maxValueLen = 1<<16 - 1

func (t ValueType) String() string {
	switch t {
	case TypeBoolTrue:
		return "bool-true"
	case TypeBoolFalse:
		return "bool-false"
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeByteArray:
		return "byte-array"
	case TypeString:
		return "string"
	case TypeTimestamp:
		return "timestamp"
	case TypeUUID:
		return "uuid"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Value is a typed header value. The nine implementations in this package
// cover every wire variant; the unexported encode method keeps the union
// closed so tag dispatch stays exhaustive.
type Value interface {
	// Type reports the wire tag the value encodes with. Bool values report
	// TypeBoolTrue or TypeBoolFalse depending on their contents.
	Type() ValueType

	encode(buf *bytes.Buffer) error
}

// BoolValue encodes as tag 0 (true) or tag 1 (false) with no body.
type BoolValue bool

func (v BoolValue) Type() ValueType {
	if v {
		return TypeBoolTrue
	}
	return TypeBoolFalse
}

func (v BoolValue) encode(buf *bytes.Buffer) error {
	return buf.WriteByte(byte(v.Type()))
}

// Int8Value encodes as tag 2 followed by one byte.
type Int8Value int8

func (v Int8Value) Type() ValueType { return TypeInt8 }

func (v Int8Value) encode(buf *bytes.Buffer) error {
	buf.WriteByte(byte(TypeInt8))
	return buf.WriteByte(byte(v))
}

// Int16Value encodes as tag 3 followed by a big-endian int16.
type Int16Value int16

func (v Int16Value) Type() ValueType { return TypeInt16 }

func (v Int16Value) encode(buf *bytes.Buffer) error {
	buf.WriteByte(byte(TypeInt16))
	return binary.Write(buf, binary.BigEndian, int16(v))
}

// Int32Value encodes as tag 4 followed by a big-endian int32.
type Int32Value int32

func (v Int32Value) Type() ValueType { return TypeInt32 }

func (v Int32Value) encode(buf *bytes.Buffer) error {
	buf.WriteByte(byte(TypeInt32))
	return binary.Write(buf, binary.BigEndian, int32(v))
}

// Int64Value encodes as tag 5 followed by a big-endian int64.
type Int64Value int64

func (v Int64Value) Type() ValueType { return TypeInt64 }

func (v Int64Value) encode(buf *bytes.Buffer) error {
	buf.WriteByte(byte(TypeInt64))
	return binary.Write(buf, binary.BigEndian, int64(v))
}

// ByteArrayValue encodes as tag 6, a u16 length, and the raw bytes.
type ByteArrayValue []byte

func (v ByteArrayValue) Type() ValueType { return TypeByteArray }

func (v ByteArrayValue) encode(buf *bytes.Buffer) error {
	if len(v) > maxValueLen {
		return encodingErrorf("byte-array value is %d bytes, exceeds the %d-byte limit", len(v), maxValueLen)
	}
	buf.WriteByte(byte(TypeByteArray))
	if err := binary.Write(buf, binary.BigEndian, uint16(len(v))); err != nil {
		return err
	}
	_, err := buf.Write(v)
	return err
}

// StringValue encodes as tag 7, a u16 length, and the string bytes.
type StringValue string

func (v StringValue) Type() ValueType { return TypeString }

func (v StringValue) encode(buf *bytes.Buffer) error {
	if len(v) > maxValueLen {
		return encodingErrorf("string value is %d bytes, exceeds the %d-byte limit", len(v), maxValueLen)
	}
	buf.WriteByte(byte(TypeString))
	if err := binary.Write(buf, binary.BigEndian, uint16(len(v))); err != nil {
		return err
	}
	_, err := buf.WriteString(string(v))
	return err
}

// TimestampValue encodes as tag 8 followed by big-endian milliseconds since
// the Unix epoch. Sub-millisecond precision is truncated on encode; a
// decoded value restores the same instant at millisecond precision.
type TimestampValue time.Time

// NewTimestampValue truncates t to millisecond precision, the precision the
// wire format carries.
func NewTimestampValue(t time.Time) TimestampValue {
	return TimestampValue(time.UnixMilli(t.UnixMilli()).UTC())
}

func (v TimestampValue) Type() ValueType { return TypeTimestamp }

func (v TimestampValue) encode(buf *bytes.Buffer) error {
	buf.WriteByte(byte(TypeTimestamp))
	return binary.Write(buf, binary.BigEndian, time.Time(v).UnixMilli())
}

// Time returns the instant the value represents.
func (v TimestampValue) Time() time.Time {
	return time.Time(v)
}

// UUIDValue encodes as tag 9 followed by the 16 raw UUID bytes.
type UUIDValue uuid.UUID

func (v UUIDValue) Type() ValueType { return TypeUUID }

func (v UUIDValue) encode(buf *bytes.Buffer) error {
	buf.WriteByte(byte(TypeUUID))
	_, err := buf.Write(v[:])
	return err
}

// NewValue builds a Value of an explicit wire type from a raw Go value,
// failing with an EncodingError when the runtime representation does not
// match the requested type. TypeBoolTrue and TypeBoolFalse both accept a
// bool; the encoded tag follows the bool's contents.
func NewValue(t ValueType, v any) (Value, error) {
	switch t {
	case TypeBoolTrue, TypeBoolFalse:
		if b, ok := v.(bool); ok {
			return BoolValue(b), nil
		}
	case TypeInt8:
		if n, ok := v.(int8); ok {
			return Int8Value(n), nil
		}
	case TypeInt16:
		if n, ok := v.(int16); ok {
			return Int16Value(n), nil
		}
	case TypeInt32:
		if n, ok := v.(int32); ok {
			return Int32Value(n), nil
		}
	case TypeInt64:
		if n, ok := v.(int64); ok {
			return Int64Value(n), nil
		}
	case TypeByteArray:
		if b, ok := v.([]byte); ok {
			return ByteArrayValue(b), nil
		}
	case TypeString:
		if s, ok := v.(string); ok {
			return StringValue(s), nil
		}
	case TypeTimestamp:
		if ts, ok := v.(time.Time); ok {
			return NewTimestampValue(ts), nil
		}
	case TypeUUID:
		if id, ok := v.(uuid.UUID); ok {
			return UUIDValue(id), nil
		}
	default:
		return nil, encodingErrorf("invalid header value type %d", uint8(t))
	}
	return nil, encodingErrorf("cannot encode %T as %s", v, t)
}

// decodeValue reads one tagged value from the cursor, advancing it past the
// consumed bytes.
func decodeValue(c *cursor) (Value, error) {
	tag, err := c.u8()
	if err != nil {
		return nil, err
	}

	switch ValueType(tag) {
	case TypeBoolTrue:
		return BoolValue(true), nil
	case TypeBoolFalse:
		return BoolValue(false), nil
	case TypeInt8:
		b, err := c.u8()
		if err != nil {
			return nil, err
		}
		return Int8Value(b), nil
	case TypeInt16:
		n, err := c.u16()
		if err != nil {
			return nil, err
		}
		return Int16Value(n), nil
	case TypeInt32:
		n, err := c.u32()
		if err != nil {
			return nil, err
		}
		return Int32Value(n), nil
	case TypeInt64:
		n, err := c.u64()
		if err != nil {
			return nil, err
		}
		return Int64Value(n), nil
	case TypeByteArray:
		length, err := c.u16()
		if err != nil {
			return nil, err
		}
		data, err := c.take(int(length))
		if err != nil {
			return nil, err
		}
		// Copy so the decoded value does not alias the caller's buffer.
		out := make([]byte, length)
		copy(out, data)
		return ByteArrayValue(out), nil
	case TypeString:
		length, err := c.u16()
		if err != nil {
			return nil, err
		}
		data, err := c.take(int(length))
		if err != nil {
			return nil, err
		}
		return StringValue(data), nil
	case TypeTimestamp:
		millis, err := c.u64()
		if err != nil {
			return nil, err
		}
		return TimestampValue(time.UnixMilli(int64(millis)).UTC()), nil
	case TypeUUID:
		data, err := c.take(16)
		if err != nil {
			return nil, err
		}
		var id uuid.UUID
		copy(id[:], data)
		return UUIDValue(id), nil
	default:
		return nil, decodingErrorf("unknown header value tag %d", tag)
	}
}

// cursor is a monotonically advancing reader over an immutable byte slice.
// Every read checks the remaining length and fails fast with a DecodingError
// on truncated input; there is no backtracking.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

func (c *cursor) take(n int) ([]byte, error) {
	if c.remaining() < n {
		return nil, decodingErrorf("truncated input: need %d bytes, have %d", n, c.remaining())
	}
	data := c.buf[c.off : c.off+n]
	c.off += n
	return data, nil
}

func (c *cursor) u8() (uint8, error) {
	data, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (c *cursor) u16() (uint16, error) {
	data, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(data), nil
}

func (c *cursor) u32() (uint32, error) {
	data, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(data), nil
}

func (c *cursor) u64() (uint64, error) {
	data, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(data), nil
}
