package eventstream

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// maxNameLen is the largest header name representable with the u8 length
// prefix.
const maxNameLen = 255

// Header is a single named, typed value. Names are raw bytes on the wire
// with no uniqueness or charset convention.
type Header struct {
	Name  string
	Value Value
}

// Headers is an ordered header list. Encoding preserves the list order, and
// decoding reproduces the order the headers appeared in the byte stream.
// Duplicate names are preserved as separate entries.
type Headers []Header

// NewHeader builds a fully-typed header from a raw value. Values that
// already carry a wire type (Value, bool, []byte, time.Time, uuid.UUID) map
// to their natural variant; integer kinds default to Int32 and everything
// else defaults to String.
func NewHeader(name string, value any) Header {
	return Header{Name: name, Value: inferValue(value)}
}

func inferValue(value any) Value {
	switch v := value.(type) {
	case Value:
		return v
	case bool:
		return BoolValue(v)
	case int:
		return Int32Value(v)
	case int8:
		return Int32Value(v)
	case int16:
		return Int32Value(v)
	case int32:
		return Int32Value(v)
	case int64:
		return Int32Value(v)
	case uint:
		return Int32Value(v)
	case uint8:
		return Int32Value(v)
	case uint16:
		return Int32Value(v)
	case uint32:
		return Int32Value(v)
	case uint64:
		return Int32Value(v)
	case string:
		return StringValue(v)
	case []byte:
		return ByteArrayValue(v)
	case time.Time:
		return NewTimestampValue(v)
	case uuid.UUID:
		return UUIDValue(v)
	default:
		return StringValue(fmt.Sprint(v))
	}
}

// Get returns the value of the first header with the given name.
func (hs Headers) Get(name string) (Value, bool) {
	for _, h := range hs {
		if h.Name == name {
			return h.Value, true
		}
	}
	return nil, false
}

// encode appends every header as
//
//	[NameLen(1)][Name][TaggedValue]
//
// in list order.
func (hs Headers) encode(buf *bytes.Buffer) error {
	for _, h := range hs {
		if len(h.Name) > maxNameLen {
			return encodingErrorf("header name %q is %d bytes, exceeds the %d-byte limit", h.Name, len(h.Name), maxNameLen)
		}
		if h.Value == nil {
			return encodingErrorf("header %q has no value", h.Name)
		}
		buf.WriteByte(byte(len(h.Name)))
		buf.WriteString(h.Name)
		if err := h.Value.encode(buf); err != nil {
			return err
		}
	}
	return nil
}

// decodeHeaders parses a header block. The block must contain whole headers
// only: the caller bounds it to exactly the framed header length, so a block
// that ends mid-header is malformed.
func decodeHeaders(block []byte) (Headers, error) {
	headers := Headers{}
	c := &cursor{buf: block}

	for c.remaining() > 0 {
		nameLen, err := c.u8()
		if err != nil {
			return nil, err
		}
		name, err := c.take(int(nameLen))
		if err != nil {
			return nil, err
		}
		value, err := decodeValue(c)
		if err != nil {
			return nil, err
		}
		headers = append(headers, Header{Name: string(name), Value: value})
	}

	return headers, nil
}
