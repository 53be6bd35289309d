// Package codec implements the base64url segment encoding used by the
// compact token wire format. Encoding always emits the unpadded url-safe
// alphabet; decoding accepts both padded and unpadded input and
// re-normalizes padding before decoding.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrDecode indicates that a segment is not valid base64url.
var ErrDecode = errors.New("invalid base64url segment")

// Encode returns the unpadded base64url encoding of b. An empty input
// encodes to an empty string.
func Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// EncodeString encodes the UTF-8 bytes of s.
func EncodeString(s string) string {
	return Encode([]byte(s))
}

// Decode decodes a base64url segment, tolerating trailing '=' padding.
// An empty input decodes to empty bytes. Invalid alphabet or impossible
// padding lengths return an error wrapping ErrDecode.
func Decode(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}

	trimmed := strings.TrimRight(s, "=")
	if len(s)-len(trimmed) > 2 {
		return nil, fmt.Errorf("%w: excess padding", ErrDecode)
	}

	// len%4 == 1 can never occur in well-formed base64.
	if len(trimmed)%4 == 1 {
		return nil, fmt.Errorf("%w: truncated input", ErrDecode)
	}

	b, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return b, nil
}

// DecodeString decodes a segment and returns it as a UTF-8 string.
func DecodeString(s string) (string, error) {
	b, err := Decode(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
