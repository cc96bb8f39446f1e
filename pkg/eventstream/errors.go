package eventstream

import "fmt"

// EncodingError reports input that cannot be represented in the wire format,
// such as a header name longer than 255 bytes, a string or byte-array value
// longer than 65535 bytes, or a value whose runtime type does not match the
// requested wire type.
type EncodingError struct {
	Message string
}

func (e *EncodingError) Error() string {
	return "eventstream: " + e.Message
}

// DecodingError reports a malformed or truncated message: an unknown value
// tag, a declared length that exceeds the remaining buffer, length fields
// that do not add up, or a checksum mismatch.
type DecodingError struct {
	Message string
}

func (e *DecodingError) Error() string {
	return "eventstream: " + e.Message
}

func encodingErrorf(format string, args ...any) *EncodingError {
	return &EncodingError{Message: fmt.Sprintf(format, args...)}
}

func decodingErrorf(format string, args ...any) *DecodingError {
	return &DecodingError{Message: fmt.Sprintf(format, args...)}
}
