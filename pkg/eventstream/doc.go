// Package eventstream implements the AWS EventStream binary wire format:
// self-describing, length-prefixed, CRC-checked message framing that
// multiplexes typed key/value headers and an opaque payload into a single
// buffer and recovers them losslessly.
//
// # Message Format
//
// Messages are serialized in a binary format with the following structure:
//
//	[TotalLen(4)][HeaderLen(4)][PreludeCRC(4)][Headers][Payload][MessageCRC(4)]
//
// Fields (all integers big-endian):
//   - TotalLen: length of the entire message, framing and checksums included
//   - HeaderLen: length of the encoded header block only
//   - PreludeCRC: CRC32 of the preceding 8 bytes
//   - Headers: HeaderLen bytes of encoded headers
//   - Payload: opaque payload bytes
//   - MessageCRC: CRC32 of every preceding byte of the message
//
// TotalLen always equals 12 + HeaderLen + len(Payload) + 4.
//
// # Header Format
//
// Each header is a length-prefixed name followed by a tagged value:
//
//	[NameLen(1)][Name][Tag(1)][Value bytes per tag]
//
// The tag byte selects one of ten encodings: bool true (0) and false (1)
// carry no body; int8/int16/int32/int64 (2-5) carry a big-endian integer;
// byte-array (6) and string (7) carry a u16 length and raw bytes; timestamp
// (8) carries big-endian milliseconds since the Unix epoch; uuid (9) carries
// 16 raw bytes. Header order is preserved end-to-end and duplicate names are
// kept as separate entries.
//
// # CRC32 Calculation
//
// Both checksums use the standard CRC-32 (IEEE / ISO-HDLC) polynomial.
// Decode verifies both and rejects the message on any mismatch; use
// MessageCodec.DecodeUnverified for byte-level compatibility with decoders
// that skip verification.
//
// # Usage
//
// Basic encoding and decoding:
//
//	codec := eventstream.NewMessageCodec()
//
//	data, err := codec.Encode(payload, eventstream.Headers{
//	    eventstream.NewHeader("content-type", "application/json"),
//	})
//	if err != nil {
//	    return err
//	}
//
//	msg, err := codec.Decode(data)
//	if err != nil {
//	    return err // malformed, truncated, or corrupt
//	}
//
// Encoder and Decoder frame whole messages over an io.Writer/io.Reader for
// callers that transport a message sequence.
//
// # Error Handling
//
// Encoding failures (oversized names or values, mismatched explicit types)
// surface as *EncodingError; malformed, truncated, or corrupt input surfaces
// as *DecodingError. Nothing is retried or swallowed, so callers can
// distinguish unusable input from permanently unsupported values.
//
// # Thread Safety
//
// The codec is stateless: MessageCodec is safe for concurrent use, and
// decoded messages do not alias the input buffer. Encoder and Decoder wrap a
// single stream and are not safe for concurrent calls.
package eventstream
