package signing

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"
)

// KeyKind tags the variant held by a Key.
type KeyKind uint8

const (
	// KindUnset marks a zero Key carrying no material.
	KindUnset KeyKind = iota
	// KindSymmetric holds a shared HMAC secret.
	KindSymmetric
	// KindRSAPrivate holds an RSA private key (signs and verifies).
	KindRSAPrivate
	// KindRSAPublic holds an RSA public key (verifies only).
	KindRSAPublic
	// KindECDSAPrivate holds an ECDSA private key (signs and verifies).
	KindECDSAPrivate
	// KindECDSAPublic holds an ECDSA public key (verifies only).
	KindECDSAPublic
)

// Key is a tagged key variant. Exactly one payload field is set, selected
// by Kind, so verification never needs runtime type inspection of an open
// interface value.
type Key struct {
	Kind KeyKind

	Symmetric    []byte
	RSAPrivate   *rsa.PrivateKey
	RSAPublic    *rsa.PublicKey
	ECDSAPrivate *ecdsa.PrivateKey
	ECDSAPublic  *ecdsa.PublicKey
}

// SymmetricKey wraps a shared HMAC secret.
func SymmetricKey(secret []byte) Key {
	return Key{Kind: KindSymmetric, Symmetric: secret}
}

// RSAPrivateKey wraps an RSA private key.
func RSAPrivateKey(k *rsa.PrivateKey) Key {
	return Key{Kind: KindRSAPrivate, RSAPrivate: k}
}

// RSAPublicKey wraps an RSA public key.
func RSAPublicKey(k *rsa.PublicKey) Key {
	return Key{Kind: KindRSAPublic, RSAPublic: k}
}

// ECDSAPrivateKey wraps an ECDSA private key.
func ECDSAPrivateKey(k *ecdsa.PrivateKey) Key {
	return Key{Kind: KindECDSAPrivate, ECDSAPrivate: k}
}

// ECDSAPublicKey wraps an ECDSA public key.
func ECDSAPublicKey(k *ecdsa.PublicKey) Key {
	return Key{Kind: KindECDSAPublic, ECDSAPublic: k}
}

// IsZero reports whether the key carries no material.
func (k Key) IsZero() bool {
	return k.Kind == KindUnset
}

func (k Key) signingMaterial(alg Algorithm) (any, error) {
	switch alg {
	case HS256, HS384, HS512:
		if k.Kind != KindSymmetric {
			return nil, fmt.Errorf("%w: %s requires a symmetric key", ErrKeyMismatch, alg)
		}
		if len(k.Symmetric) == 0 {
			return nil, ErrEmptyKey
		}
		return k.Symmetric, nil
	case RS256, RS384, RS512:
		if k.Kind != KindRSAPrivate {
			return nil, fmt.Errorf("%w: %s requires an RSA private key", ErrKeyMismatch, alg)
		}
		if k.RSAPrivate == nil {
			return nil, ErrEmptyKey
		}
		return k.RSAPrivate, nil
	case ES256, ES384, ES512:
		if k.Kind != KindECDSAPrivate {
			return nil, fmt.Errorf("%w: %s requires an ECDSA private key", ErrKeyMismatch, alg)
		}
		if k.ECDSAPrivate == nil {
			return nil, ErrEmptyKey
		}
		return k.ECDSAPrivate, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
}

func (k Key) verifyingMaterial(alg Algorithm) (any, error) {
	switch alg {
	case HS256, HS384, HS512:
		if k.Kind != KindSymmetric {
			return nil, fmt.Errorf("%w: %s requires a symmetric key", ErrKeyMismatch, alg)
		}
		if len(k.Symmetric) == 0 {
			return nil, ErrEmptyKey
		}
		return k.Symmetric, nil
	case RS256, RS384, RS512:
		switch k.Kind {
		case KindRSAPublic:
			if k.RSAPublic == nil {
				return nil, ErrEmptyKey
			}
			return k.RSAPublic, nil
		case KindRSAPrivate:
			if k.RSAPrivate == nil {
				return nil, ErrEmptyKey
			}
			return &k.RSAPrivate.PublicKey, nil
		}
		return nil, fmt.Errorf("%w: %s requires an RSA key", ErrKeyMismatch, alg)
	case ES256, ES384, ES512:
		switch k.Kind {
		case KindECDSAPublic:
			if k.ECDSAPublic == nil {
				return nil, ErrEmptyKey
			}
			return k.ECDSAPublic, nil
		case KindECDSAPrivate:
			if k.ECDSAPrivate == nil {
				return nil, ErrEmptyKey
			}
			return &k.ECDSAPrivate.PublicKey, nil
		}
		return nil, fmt.Errorf("%w: %s requires an ECDSA key", ErrKeyMismatch, alg)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
}
