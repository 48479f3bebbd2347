package encoding

import (
	"bytes"
	"errors"
	"fmt"
)

// Bytes32Width is the width of a Solidity bytes32 slot.
const Bytes32Width = 32

// ErrTextTooLong is returned when text does not fit the fixed width.
var ErrTextTooLong = errors.New("text too long")

// EncodeFixed writes the UTF-8 bytes of text into a buffer of exactly width bytes,
// right-padded with zeros.
func EncodeFixed(text string, width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid width %d", width)
	}
	if len(text) > width {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrTextTooLong, len(text), width)
	}

	buf := make([]byte, width)
	copy(buf, text)
	return buf, nil
}

// DecodeFixed strips the zero padding and returns the remaining bytes as text.
// Bytes that are not valid UTF-8 are passed through untouched.
func DecodeFixed(buf []byte) string {
	return string(bytes.TrimRight(buf, "\x00"))
}

// Bytes32 encodes text into a bytes32 value.
func Bytes32(text string) ([32]byte, error) {
	var out [32]byte
	buf, err := EncodeFixed(text, Bytes32Width)
	if err != nil {
		return out, err
	}
	copy(out[:], buf)
	return out, nil
}

// Bytes32String decodes a bytes32 value back into text.
func Bytes32String(b [32]byte) string {
	return DecodeFixed(b[:])
}

// Bytes32Array encodes a list of names, failing on the first one that does not fit.
func Bytes32Array(texts []string) ([][32]byte, error) {
	out := make([][32]byte, 0, len(texts))
	for i, text := range texts {
		b, err := Bytes32(text)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}
