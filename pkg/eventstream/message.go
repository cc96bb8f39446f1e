package eventstream

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
)

const (
	// preludeLen covers TotalLen(4) + HeaderLen(4) + PreludeCRC(4).
	preludeLen = 12

	// frameOverhead is every framing byte of a message: the prelude plus the
	// trailing message CRC.
	frameOverhead = preludeLen + 4

	// MinMessageLen is the size of a message with no headers and no payload.
	MinMessageLen = frameOverhead
)

// Message is the decoded form of one wire message: the ordered header list
// and the opaque payload. Length fields and checksums are framing detail and
// are not carried on a successfully decoded message.
type Message struct {
	Headers Headers
	Payload []byte
}

// MessageCodec frames and unframes messages:
//
//	[TotalLen(4)][HeaderLen(4)][PreludeCRC(4)][Headers][Payload][MessageCRC(4)]
//
// All integers are big-endian. PreludeCRC is the CRC32 (IEEE) of the first
// 8 bytes; MessageCRC is the CRC32 of everything before it.
type MessageCodec struct{}

// NewMessageCodec creates a new message codec instance.
func NewMessageCodec() *MessageCodec {
	return &MessageCodec{}
}

// Encode frames a payload and header list into a single message buffer. The
// output is freshly allocated and a pure function of the inputs.
func (c *MessageCodec) Encode(payload []byte, headers Headers) ([]byte, error) {
	var headerBuf bytes.Buffer
	if err := headers.encode(&headerBuf); err != nil {
		return nil, err
	}

	headerLen := headerBuf.Len()
	total := frameOverhead + headerLen + len(payload)

	out := make([]byte, total)
	binary.BigEndian.PutUint32(out[0:4], uint32(total))
	binary.BigEndian.PutUint32(out[4:8], uint32(headerLen))
	binary.BigEndian.PutUint32(out[8:12], crc32.ChecksumIEEE(out[0:8]))
	copy(out[preludeLen:], headerBuf.Bytes())
	copy(out[preludeLen+headerLen:], payload)
	binary.BigEndian.PutUint32(out[total-4:], crc32.ChecksumIEEE(out[:total-4]))

	return out, nil
}

// Decode unframes a complete message buffer, verifying both checksums. The
// input is read-only; the returned headers and payload do not alias it.
func (c *MessageCodec) Decode(data []byte) (*Message, error) {
	return c.decode(data, true)
}

// DecodeUnverified unframes a message without comparing either CRC field,
// matching decoders that skip integrity checks. Length validation still
// applies.
func (c *MessageCodec) DecodeUnverified(data []byte) (*Message, error) {
	return c.decode(data, false)
}

func (c *MessageCodec) decode(data []byte, verify bool) (*Message, error) {
	if len(data) < MinMessageLen {
		return nil, decodingErrorf("message is %d bytes, shorter than the %d-byte minimum", len(data), MinMessageLen)
	}

	total := int(binary.BigEndian.Uint32(data[0:4]))
	headerLen := int(binary.BigEndian.Uint32(data[4:8]))

	if total != len(data) {
		return nil, decodingErrorf("declared message length %d does not match buffer length %d", total, len(data))
	}

	payloadLen := total - headerLen - frameOverhead
	if payloadLen < 0 {
		return nil, decodingErrorf("header length %d exceeds message length %d", headerLen, total)
	}

	if verify {
		if got, want := crc32.ChecksumIEEE(data[0:8]), binary.BigEndian.Uint32(data[8:12]); got != want {
			return nil, decodingErrorf("prelude checksum mismatch: computed %08x, message carries %08x", got, want)
		}
		if got, want := crc32.ChecksumIEEE(data[:total-4]), binary.BigEndian.Uint32(data[total-4:]); got != want {
			return nil, decodingErrorf("message checksum mismatch: computed %08x, message carries %08x", got, want)
		}
	}

	headers, err := decodeHeaders(data[preludeLen : preludeLen+headerLen])
	if err != nil {
		return nil, err
	}

	payload := make([]byte, payloadLen)
	copy(payload, data[preludeLen+headerLen:total-4])

	return &Message{Headers: headers, Payload: payload}, nil
}
