package goToken

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/goToken/internal/signing"
)

// Alg identifies a signature algorithm as carried in the header alg
// parameter.
type Alg = signing.Algorithm

const (
	// AlgHS256 is HMAC with SHA-256.
	AlgHS256 = signing.HS256
	// AlgHS384 is HMAC with SHA-384.
	AlgHS384 = signing.HS384
	// AlgHS512 is HMAC with SHA-512.
	AlgHS512 = signing.HS512
	// AlgRS256 is RSA PKCS#1 v1.5 with SHA-256.
	AlgRS256 = signing.RS256
	// AlgRS384 is RSA PKCS#1 v1.5 with SHA-384.
	AlgRS384 = signing.RS384
	// AlgRS512 is RSA PKCS#1 v1.5 with SHA-512.
	AlgRS512 = signing.RS512
	// AlgES256 is ECDSA with SHA-256.
	AlgES256 = signing.ES256
	// AlgES384 is ECDSA with SHA-384.
	AlgES384 = signing.ES384
	// AlgES512 is ECDSA with SHA-512.
	AlgES512 = signing.ES512
	// AlgNone marks an unsecured token; never accepted at verification
	// unless explicitly allowed by the validation parameters.
	AlgNone = signing.None
)

// Key is a tagged key variant: symmetric secret, RSA key, or ECDSA key,
// discriminated by Kind.
type Key = signing.Key

// SymmetricKey wraps a shared HMAC secret.
func SymmetricKey(secret []byte) Key { return signing.SymmetricKey(secret) }

// RSAPrivateKey wraps an RSA private key for signing (and verification).
func RSAPrivateKey(k *rsa.PrivateKey) Key { return signing.RSAPrivateKey(k) }

// RSAPublicKey wraps an RSA public key for verification.
func RSAPublicKey(k *rsa.PublicKey) Key { return signing.RSAPublicKey(k) }

// ECDSAPrivateKey wraps an ECDSA private key for signing (and verification).
func ECDSAPrivateKey(k *ecdsa.PrivateKey) Key { return signing.ECDSAPrivateKey(k) }

// ECDSAPublicKey wraps an ECDSA public key for verification.
func ECDSAPublicKey(k *ecdsa.PublicKey) Key { return signing.ECDSAPublicKey(k) }

// ParseRSAPrivateKeyPEM loads a PEM-encoded RSA private key.
func ParseRSAPrivateKeyPEM(pemBytes []byte) (Key, error) {
	k, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return Key{}, fmt.Errorf("parse RSA private key: %w", err)
	}
	return RSAPrivateKey(k), nil
}

// ParseRSAPublicKeyPEM loads a PEM-encoded RSA public key or certificate.
func ParseRSAPublicKeyPEM(pemBytes []byte) (Key, error) {
	k, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
	if err != nil {
		return Key{}, fmt.Errorf("parse RSA public key: %w", err)
	}
	return RSAPublicKey(k), nil
}

// ParseECDSAPrivateKeyPEM loads a PEM-encoded EC private key.
func ParseECDSAPrivateKeyPEM(pemBytes []byte) (Key, error) {
	k, err := jwt.ParseECPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return Key{}, fmt.Errorf("parse ECDSA private key: %w", err)
	}
	return ECDSAPrivateKey(k), nil
}

// ParseECDSAPublicKeyPEM loads a PEM-encoded EC public key or certificate.
func ParseECDSAPublicKeyPEM(pemBytes []byte) (Key, error) {
	k, err := jwt.ParseECPublicKeyFromPEM(pemBytes)
	if err != nil {
		return Key{}, fmt.Errorf("parse ECDSA public key: %w", err)
	}
	return ECDSAPublicKey(k), nil
}
