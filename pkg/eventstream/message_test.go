package eventstream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"reflect"
	"testing"
	"time"
)

func TestMessageCodec_EncodeDecodeRoundTrip(t *testing.T) {
	codec := NewMessageCodec()

	testCases := []struct {
		name    string
		payload []byte
		headers Headers
	}{
		{
			name:    "empty payload and headers",
			payload: []byte{},
			headers: Headers{},
		},
		{
			name:    "payload only",
			payload: []byte("hello, world"),
			headers: Headers{},
		},
		{
			name:    "headers only",
			payload: []byte{},
			headers: Headers{
				{Name: "event", Value: StringValue("ping")},
				{Name: "seq", Value: Int64Value(7)},
			},
		},
		{
			name:    "binary payload with typed headers",
			payload: []byte{0x00, 0x01, 0xFE, 0xFF},
			headers: Headers{
				{Name: "ok", Value: BoolValue(true)},
				{Name: "retries", Value: Int8Value(3)},
				{Name: "ts", Value: NewTimestampValue(time.UnixMilli(1700000000000).UTC())},
			},
		},
		{
			name:    "large payload",
			payload: bytes.Repeat([]byte("p"), 64*1024),
			headers: Headers{
				{Name: "content-length", Value: Int32Value(64 * 1024)},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := codec.Encode(tc.payload, tc.headers)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			// The declared total length must equal the produced length.
			if declared := binary.BigEndian.Uint32(encoded[0:4]); int(declared) != len(encoded) {
				t.Errorf("declared total %d, actual %d", declared, len(encoded))
			}

			msg, err := codec.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if !bytes.Equal(msg.Payload, tc.payload) {
				t.Errorf("payload mismatch: got %q, want %q", msg.Payload, tc.payload)
			}

			if !reflect.DeepEqual(msg.Headers, tc.headers) {
				t.Errorf("headers mismatch:\ngot  %#v\nwant %#v", msg.Headers, tc.headers)
			}
		})
	}
}

func TestMessageCodec_EmptyHeaderList(t *testing.T) {
	codec := NewMessageCodec()

	payload := []byte(`{"foo": "bar"}`)
	encoded, err := codec.Encode(payload, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if len(encoded) != 30 {
		t.Errorf("total length mismatch: got %d, want 30", len(encoded))
	}
	if total := binary.BigEndian.Uint32(encoded[0:4]); total != 30 {
		t.Errorf("declared total mismatch: got %d, want 30", total)
	}
	if headerLen := binary.BigEndian.Uint32(encoded[4:8]); headerLen != 0 {
		t.Errorf("header length mismatch: got %d, want 0", headerLen)
	}

	msg, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(msg.Headers) != 0 {
		t.Errorf("expected no headers, got %d", len(msg.Headers))
	}
	if !bytes.Equal(msg.Payload, payload) {
		t.Errorf("payload mismatch: got %q", msg.Payload)
	}
}

func TestMessageCodec_ContentTypeScenario(t *testing.T) {
	codec := NewMessageCodec()

	payload := []byte(`{"foo": "bar"}`)
	encoded, err := codec.Encode(payload, Headers{
		NewHeader("content-type", "application/json"),
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	msg, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(msg.Headers) != 1 {
		t.Fatalf("expected 1 header, got %d", len(msg.Headers))
	}
	if msg.Headers[0].Name != "content-type" {
		t.Errorf("name mismatch: got %q", msg.Headers[0].Name)
	}
	if msg.Headers[0].Value.Type() != TypeString {
		t.Errorf("inferred type mismatch: got %v, want %v", msg.Headers[0].Value.Type(), TypeString)
	}
	if msg.Headers[0].Value != StringValue("application/json") {
		t.Errorf("value mismatch: got %v", msg.Headers[0].Value)
	}
	if !bytes.Equal(msg.Payload, payload) {
		t.Errorf("payload mismatch: got %q", msg.Payload)
	}
}

func TestMessageCodec_BoolHeaderScenario(t *testing.T) {
	codec := NewMessageCodec()

	encoded, err := codec.Encode(nil, Headers{
		{Name: "flag", Value: BoolValue(true)},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	msg, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	b, ok := msg.Headers[0].Value.(BoolValue)
	if !ok {
		t.Fatalf("expected BoolValue, got %T", msg.Headers[0].Value)
	}
	if bool(b) != true {
		t.Error("expected decoded value to be exactly true")
	}
	if b.Type() != TypeBoolTrue {
		t.Errorf("type mismatch: got %v", b.Type())
	}
}

func TestMessageCodec_TimestampScenario(t *testing.T) {
	codec := NewMessageCodec()

	// A civil date/time must round-trip to the same instant at millisecond
	// precision; sub-millisecond digits are truncated on encode.
	civil := time.Date(2024, time.July, 4, 9, 15, 30, 250999999, time.UTC)

	encoded, err := codec.Encode(nil, Headers{
		{Name: "occurred-at", Value: NewTimestampValue(civil)},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	msg, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	ts, ok := msg.Headers[0].Value.(TimestampValue)
	if !ok {
		t.Fatalf("expected TimestampValue, got %T", msg.Headers[0].Value)
	}
	if !ts.Time().Equal(civil.Truncate(time.Millisecond)) {
		t.Errorf("instant mismatch: got %v, want %v", ts.Time(), civil.Truncate(time.Millisecond))
	}
}

func TestMessageCodec_ChecksumPlacement(t *testing.T) {
	codec := NewMessageCodec()

	encoded, err := codec.Encode([]byte("payload"), Headers{
		{Name: "h", Value: Int32Value(1)},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	preludeCRC := binary.BigEndian.Uint32(encoded[8:12])
	if got := crc32.ChecksumIEEE(encoded[0:8]); got != preludeCRC {
		t.Errorf("prelude CRC mismatch: computed %08x, encoded %08x", got, preludeCRC)
	}

	messageCRC := binary.BigEndian.Uint32(encoded[len(encoded)-4:])
	if got := crc32.ChecksumIEEE(encoded[:len(encoded)-4]); got != messageCRC {
		t.Errorf("message CRC mismatch: computed %08x, encoded %08x", got, messageCRC)
	}
}

func TestMessageCodec_CorruptionDetected(t *testing.T) {
	codec := NewMessageCodec()

	encoded, err := codec.Encode([]byte("important payload"), Headers{
		{Name: "content-type", Value: StringValue("text/plain")},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Every byte of the message is covered by a checksum (or is a checksum
	// that is itself compared), so any single-byte flip must be rejected.
	for pos := 0; pos < len(encoded); pos++ {
		corrupted := make([]byte, len(encoded))
		copy(corrupted, encoded)
		corrupted[pos] ^= 0xFF

		if _, err := codec.Decode(corrupted); err == nil {
			t.Errorf("corruption at byte %d went undetected", pos)
		}
	}
}

func TestMessageCodec_DecodeUnverified(t *testing.T) {
	codec := NewMessageCodec()

	encoded, err := codec.Encode([]byte("payload"), Headers{
		{Name: "h", Value: StringValue("v")},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Zero out both CRC fields: Decode must reject, DecodeUnverified must
	// still parse the frame.
	binary.BigEndian.PutUint32(encoded[8:12], 0)
	binary.BigEndian.PutUint32(encoded[len(encoded)-4:], 0)

	if _, err := codec.Decode(encoded); err == nil {
		t.Error("Decode accepted a zeroed checksum")
	}

	msg, err := codec.DecodeUnverified(encoded)
	if err != nil {
		t.Fatalf("DecodeUnverified failed: %v", err)
	}
	if !bytes.Equal(msg.Payload, []byte("payload")) {
		t.Errorf("payload mismatch: got %q", msg.Payload)
	}
}

func TestMessageCodec_Malformed(t *testing.T) {
	codec := NewMessageCodec()

	// frame builds a message with correct checksums but caller-chosen
	// length fields, to exercise the length arithmetic in isolation.
	frame := func(total, headerLen uint32, body []byte) []byte {
		out := make([]byte, 12+len(body)+4)
		binary.BigEndian.PutUint32(out[0:4], total)
		binary.BigEndian.PutUint32(out[4:8], headerLen)
		binary.BigEndian.PutUint32(out[8:12], crc32.ChecksumIEEE(out[0:8]))
		copy(out[12:], body)
		binary.BigEndian.PutUint32(out[len(out)-4:], crc32.ChecksumIEEE(out[:len(out)-4]))
		return out
	}

	testCases := []struct {
		name string
		data []byte
	}{
		{
			name: "empty input",
			data: []byte{},
		},
		{
			name: "shorter than the prelude",
			data: []byte{0x00, 0x00, 0x00, 0x1E, 0x00},
		},
		{
			name: "shorter than the minimum frame",
			data: make([]byte, 15),
		},
		{
			name: "declared total disagrees with buffer length",
			data: frame(99, 0, nil),
		},
		{
			name: "header length implies negative payload",
			data: frame(16, 1, nil),
		},
		{
			name: "header block ends mid-header",
			data: frame(18, 2, []byte{0x05, 'a'}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Decode(tc.data)

			var decErr *DecodingError
			if !errors.As(err, &decErr) {
				t.Errorf("expected DecodingError, got %v", err)
			}
		})
	}
}

func TestMessageCodec_Deterministic(t *testing.T) {
	codec := NewMessageCodec()

	headers := Headers{
		{Name: "a", Value: StringValue("1")},
		{Name: "b", Value: Int64Value(2)},
	}

	first, err := codec.Encode([]byte("payload"), headers)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, err := codec.Encode([]byte("payload"), headers)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("identical inputs produced different encodings")
	}
}

func TestMessageCodec_DecodeDoesNotAliasInput(t *testing.T) {
	codec := NewMessageCodec()

	encoded, err := codec.Encode([]byte("payload"), Headers{
		{Name: "blob", Value: ByteArrayValue{0xAA, 0xBB}},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	msg, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for i := range encoded {
		encoded[i] = 0
	}

	if !bytes.Equal(msg.Payload, []byte("payload")) {
		t.Error("payload aliases the input buffer")
	}
	if blob := msg.Headers[0].Value.(ByteArrayValue); !bytes.Equal(blob, []byte{0xAA, 0xBB}) {
		t.Error("byte-array header aliases the input buffer")
	}
}
