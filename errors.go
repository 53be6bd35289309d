package goToken

import (
	"errors"

	"github.com/MrEthical07/goToken/internal/codec"
	"github.com/MrEthical07/goToken/internal/signing"
)

var (
	// ErrTokenFormat is returned when a raw token does not split into
	// exactly three dot-separated segments.
	ErrTokenFormat = errors.New("token must contain three parts")
	// ErrInvalidJSON is returned when a decoded segment is not a JSON object.
	ErrInvalidJSON = errors.New("token segment contains invalid JSON")
	// ErrDecode is returned when a segment is not valid base64url.
	ErrDecode = codec.ErrDecode

	// ErrClaimNotFound is returned by claim lookups for absent names.
	ErrClaimNotFound = errors.New("claim not found")
	// ErrClaimType is returned when a claim exists but cannot take the
	// requested shape.
	ErrClaimType = errors.New("claim has unexpected type")

	// ErrInvalidArgument indicates caller misuse, such as an empty claim name.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMissingKey is returned when a terminal sign operation runs without
	// key material.
	ErrMissingKey = errors.New("signing key required")

	// ErrUnsupportedAlgorithm mirrors the signing engine sentinel for callers
	// that only import the root package.
	ErrUnsupportedAlgorithm = signing.ErrUnsupportedAlgorithm
	// ErrKeyMismatch mirrors the signing engine sentinel for algorithm/key
	// family disagreement.
	ErrKeyMismatch = signing.ErrKeyMismatch
)
