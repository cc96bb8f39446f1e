package eventstream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxMessageLen caps the declared length the Decoder will allocate for. A
// hostile or corrupt length prefix must not drive an arbitrarily large
// allocation before the checksum can be checked.
const MaxMessageLen = 1 << 24

// Option configures an Encoder or Decoder.
type Option func(*settings)

type settings struct {
	metrics *Metrics
}

// WithMetrics records codec activity on m.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// Encoder frames messages onto an io.Writer, one whole message per call.
type Encoder struct {
	w        io.Writer
	codec    *MessageCodec
	settings settings
}

// NewEncoder creates an encoder writing framed messages to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	e := &Encoder{
		w:     w,
		codec: NewMessageCodec(),
	}
	for _, opt := range opts {
		opt(&e.settings)
	}
	return e
}

// Encode frames one message and writes it to the underlying writer.
func (e *Encoder) Encode(payload []byte, headers Headers) error {
	data, err := e.codec.Encode(payload, headers)
	e.settings.metrics.RecordEncode(len(data), err)
	if err != nil {
		return err
	}

	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Decoder reads whole framed messages from an io.Reader. It assembles one
// complete message per call before decoding; it never interprets a partial
// buffer.
type Decoder struct {
	r        io.Reader
	codec    *MessageCodec
	settings settings
}

// NewDecoder creates a decoder reading framed messages from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{
		r:     r,
		codec: NewMessageCodec(),
	}
	for _, opt := range opts {
		opt(&d.settings)
	}
	return d
}

// Decode reads and unframes the next message. It returns io.EOF when the
// reader is exhausted at a message boundary, and a DecodingError when the
// stream ends mid-message or carries a malformed frame.
func (d *Decoder) Decode() (*Message, error) {
	msg, n, err := d.read()
	if !errors.Is(err, io.EOF) {
		// A clean EOF at a message boundary is stream exhaustion, not a
		// decode outcome.
		d.settings.metrics.RecordDecode(n, err)
	}
	return msg, err
}

func (d *Decoder) read() (*Message, int, error) {
	prelude := make([]byte, preludeLen)
	if _, err := io.ReadFull(d.r, prelude); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, decodingErrorf("stream ended mid-prelude")
		}
		return nil, 0, fmt.Errorf("read prelude: %w", err)
	}

	total := binary.BigEndian.Uint32(prelude[0:4])
	if total < MinMessageLen || total > MaxMessageLen {
		return nil, 0, decodingErrorf("declared message length %d is outside [%d, %d]", total, MinMessageLen, MaxMessageLen)
	}

	buf := make([]byte, total)
	copy(buf, prelude)
	if _, err := io.ReadFull(d.r, buf[preludeLen:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, decodingErrorf("stream ended mid-message: expected %d bytes", total)
		}
		return nil, 0, fmt.Errorf("read message body: %w", err)
	}

	msg, err := d.codec.Decode(buf)
	if err != nil {
		return nil, 0, err
	}
	return msg, int(total), nil
}
