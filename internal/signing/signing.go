// Package signing computes and verifies compact-token signatures over the
// ASCII bytes of "base64url(header).base64url(payload)". The cryptographic
// primitives are delegated to golang-jwt signing methods; this package owns
// algorithm/key-kind agreement and the none-algorithm policy.
package signing

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/goToken/internal/codec"
)

// Algorithm identifies a signature algorithm as carried in the token
// header's alg parameter.
type Algorithm string

const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
	RS256 Algorithm = "RS256"
	RS384 Algorithm = "RS384"
	RS512 Algorithm = "RS512"
	ES256 Algorithm = "ES256"
	ES384 Algorithm = "ES384"
	ES512 Algorithm = "ES512"
	None  Algorithm = "none"
)

var (
	// ErrUnsupportedAlgorithm is returned for alg values outside the table above.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	// ErrKeyMismatch is returned when the supplied key kind cannot serve the
	// requested algorithm family.
	ErrKeyMismatch = errors.New("key kind does not match algorithm")
	// ErrEmptyKey is returned when signing or verification is requested
	// without key material.
	ErrEmptyKey = errors.New("empty key")
	// ErrSignature indicates that signature verification failed.
	ErrSignature = errors.New("signature verification failed")
	// ErrNoneAlgorithm is returned when verification reaches the engine with
	// alg=none; the unsecured form is never cryptographically verifiable.
	ErrNoneAlgorithm = errors.New("none algorithm is not verifiable")
)

var methods = map[Algorithm]jwt.SigningMethod{
	HS256: jwt.SigningMethodHS256,
	HS384: jwt.SigningMethodHS384,
	HS512: jwt.SigningMethodHS512,
	RS256: jwt.SigningMethodRS256,
	RS384: jwt.SigningMethodRS384,
	RS512: jwt.SigningMethodRS512,
	ES256: jwt.SigningMethodES256,
	ES384: jwt.SigningMethodES384,
	ES512: jwt.SigningMethodES512,
}

// Supported reports whether alg names a known algorithm, including none.
func Supported(alg Algorithm) bool {
	if alg == None {
		return true
	}
	_, ok := methods[alg]
	return ok
}

// Sign produces the base64url signature segment for signingString. The none
// algorithm yields an empty segment without touching the key.
func Sign(alg Algorithm, signingString string, key Key) (string, error) {
	if alg == None {
		return "", nil
	}

	method, ok := methods[alg]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}

	material, err := key.signingMaterial(alg)
	if err != nil {
		return "", err
	}

	sig, err := method.Sign(signingString, material)
	if err != nil {
		return "", fmt.Errorf("sign with %s: %w", alg, err)
	}

	return codec.Encode(sig), nil
}

// Verify checks the base64url signature segment against signingString.
// HMAC comparison inside the delegated method is constant time.
func Verify(alg Algorithm, signingString, signature string, key Key) error {
	if alg == None {
		return ErrNoneAlgorithm
	}

	method, ok := methods[alg]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}

	material, err := key.verifyingMaterial(alg)
	if err != nil {
		return err
	}

	sig, err := codec.Decode(signature)
	if err != nil {
		return fmt.Errorf("%w: malformed signature segment", ErrSignature)
	}
	if len(sig) == 0 {
		return fmt.Errorf("%w: empty signature", ErrSignature)
	}

	if err := method.Verify(signingString, sig, material); err != nil {
		return fmt.Errorf("%w: %v", ErrSignature, err)
	}
	return nil
}
