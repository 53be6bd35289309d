package goToken

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Standard registered claim names.
const (
	ClaimIssuer     = "iss"
	ClaimSubject    = "sub"
	ClaimAudience   = "aud"
	ClaimExpiresAt  = "exp"
	ClaimNotBefore  = "nbf"
	ClaimIssuedAt   = "iat"
	ClaimJTI        = "jti"
	HeaderType      = "typ"
	HeaderAlgorithm = "alg"
	HeaderKeyID     = "kid"
)

// TokenTypeJWT is the default header typ value.
const TokenTypeJWT = "JWT"

// Token is the immutable representation of a parsed or freshly signed
// token: header map, payload map, the verbatim signature segment, and the
// exact raw string it came from. Tokens are safe to share across
// goroutines once constructed.
type Token struct {
	header    map[string]any
	payload   map[string]any
	signature string
	raw       string
}

// newToken copies both maps so the Token never aliases builder or parser
// state.
func newToken(header, payload map[string]any, signature, raw string) *Token {
	return &Token{
		header:    maps.Clone(header),
		payload:   maps.Clone(payload),
		signature: signature,
		raw:       raw,
	}
}

// Raw returns the exact three-segment string this token was parsed from or
// produced as. It is empty on tokens edited via WithClaim/WithoutClaim,
// which must be re-signed to obtain a raw form again.
func (t *Token) Raw() string { return t.raw }

// Signature returns the verbatim (still base64url) signature segment.
// Unsecured tokens carry an empty signature.
func (t *Token) Signature() string { return t.signature }

// Header returns a copy of the header map.
func (t *Token) Header() map[string]any { return maps.Clone(t.header) }

// Payload returns a copy of the payload map.
func (t *Token) Payload() map[string]any { return maps.Clone(t.payload) }

// Algorithm returns the header alg value, or AlgNone when absent.
func (t *Token) Algorithm() Alg {
	if v, ok := t.header[HeaderAlgorithm].(string); ok {
		return Alg(v)
	}
	return AlgNone
}

// Claim returns the named payload claim. Lookup is case-sensitive.
func (t *Token) Claim(name string) (any, error) {
	v, ok := t.payload[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClaimNotFound, name)
	}
	return v, nil
}

// TryClaim returns the named payload claim and whether it exists.
func (t *Token) TryClaim(name string) (any, bool) {
	v, ok := t.payload[name]
	return v, ok
}

// HeaderClaim returns the named header claim.
func (t *Token) HeaderClaim(name string) (any, error) {
	v, ok := t.header[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClaimNotFound, name)
	}
	return v, nil
}

// TryHeaderClaim returns the named header claim and whether it exists.
func (t *Token) TryHeaderClaim(name string) (any, bool) {
	v, ok := t.header[name]
	return v, ok
}

// WithClaim returns a new Token whose payload carries the given claim.
// The raw form is cleared: the result must be re-signed before it has a
// wire representation.
func (t *Token) WithClaim(name string, value any) (*Token, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty claim name", ErrInvalidArgument)
	}
	next := newToken(t.header, t.payload, "", "")
	next.payload[name] = value
	return next, nil
}

// WithoutClaim returns a new Token without the named payload claim, raw
// form cleared.
func (t *Token) WithoutClaim(name string) *Token {
	next := newToken(t.header, t.payload, "", "")
	delete(next.payload, name)
	return next
}

// ClaimValue returns the named payload claim converted to T. Scalar JSON
// numbers convert to Go numeric types; complex shapes are re-serialized
// into T on demand.
func ClaimValue[T any](t *Token, name string) (T, error) {
	var zero T
	v, ok := t.TryClaim(name)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrClaimNotFound, name)
	}
	return convertClaim[T](name, v)
}

// TryClaimValue is the non-erroring form of ClaimValue.
func TryClaimValue[T any](t *Token, name string) (T, bool) {
	v, err := ClaimValue[T](t, name)
	return v, err == nil
}

// HeaderValue returns the named header claim converted to T.
func HeaderValue[T any](t *Token, name string) (T, error) {
	var zero T
	v, ok := t.TryHeaderClaim(name)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrClaimNotFound, name)
	}
	return convertClaim[T](name, v)
}

func convertClaim[T any](name string, v any) (T, error) {
	var zero T
	if typed, ok := v.(T); ok {
		return typed, nil
	}

	if n, ok := v.(json.Number); ok {
		switch any(zero).(type) {
		case int64:
			i, err := n.Int64()
			if err == nil {
				return any(i).(T), nil
			}
		case int:
			i, err := n.Int64()
			if err == nil {
				return any(int(i)).(T), nil
			}
		case float64:
			f, err := n.Float64()
			if err == nil {
				return any(f).(T), nil
			}
		case string:
			return any(n.String()).(T), nil
		}
	}

	// Complex or foreign shapes round-trip through their serialized form.
	b, err := json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("%w: %s", ErrClaimType, name)
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, fmt.Errorf("%w: %s", ErrClaimType, name)
	}
	return out, nil
}

// numericClaim normalizes the JSON encodings of a Unix-seconds claim.
func numericClaim(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return i, true
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// stringClaim returns a payload claim as a string when it has string shape.
func (t *Token) stringClaim(name string) (string, bool) {
	v, ok := t.payload[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
