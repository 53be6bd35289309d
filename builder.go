package goToken

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goToken/internal/codec"
	"github.com/MrEthical07/goToken/internal/signing"
)

// Builder accumulates header and payload claims and produces a signed
// compact token through one of the terminal sign operations. Builders are
// mutable and not safe for concurrent use; build one token per instance
// at a time.
type Builder struct {
	serializer Serializer
	header     map[string]any
	payload    map[string]any
	now        func() time.Time
	metrics    *Metrics
	err        error
}

// NewBuilder returns a Builder with header {typ: "JWT"} and an empty
// payload. A nil serializer falls back to JSONSerializer.
func NewBuilder(serializer Serializer) *Builder {
	if serializer == nil {
		serializer = JSONSerializer{}
	}
	return &Builder{
		serializer: serializer,
		header:     map[string]any{HeaderType: TokenTypeJWT},
		payload:    map[string]any{},
		now:        time.Now,
	}
}

// UseMetrics installs a metrics sink counting issued tokens.
func (b *Builder) UseMetrics(m *Metrics) *Builder {
	b.metrics = m
	return b
}

// Err returns the first claim-recording error, if any. Terminal sign
// operations return it as well.
func (b *Builder) Err() error { return b.err }

// AddClaim records a payload claim. Empty claim names are rejected.
func (b *Builder) AddClaim(name string, value any) *Builder {
	if name == "" {
		b.fail(fmt.Errorf("%w: empty claim name", ErrInvalidArgument))
		return b
	}
	b.payload[name] = value
	return b
}

// AddHeaderClaim records a header claim. Empty claim names are rejected.
func (b *Builder) AddHeaderClaim(name string, value any) *Builder {
	if name == "" {
		b.fail(fmt.Errorf("%w: empty header claim name", ErrInvalidArgument))
		return b
	}
	b.header[name] = value
	return b
}

// SetIssuer sets the iss claim.
func (b *Builder) SetIssuer(issuer string) *Builder {
	return b.AddClaim(ClaimIssuer, issuer)
}

// SetSubject sets the sub claim.
func (b *Builder) SetSubject(subject string) *Builder {
	return b.AddClaim(ClaimSubject, subject)
}

// SetAudience sets the aud claim: a single string for one audience, a
// string array otherwise.
func (b *Builder) SetAudience(audience ...string) *Builder {
	switch len(audience) {
	case 0:
		b.fail(fmt.Errorf("%w: audience requires at least one value", ErrInvalidArgument))
		return b
	case 1:
		return b.AddClaim(ClaimAudience, audience[0])
	default:
		return b.AddClaim(ClaimAudience, audience)
	}
}

// SetExpirationTime sets exp as Unix seconds of the given instant.
func (b *Builder) SetExpirationTime(at time.Time) *Builder {
	return b.AddClaim(ClaimExpiresAt, at.Unix())
}

// SetNotBefore sets nbf as Unix seconds of the given instant.
func (b *Builder) SetNotBefore(at time.Time) *Builder {
	return b.AddClaim(ClaimNotBefore, at.Unix())
}

// SetIssuedAt sets iat as Unix seconds of the given instant.
func (b *Builder) SetIssuedAt(at time.Time) *Builder {
	return b.AddClaim(ClaimIssuedAt, at.Unix())
}

// SetJTI sets the jti claim.
func (b *Builder) SetJTI(id string) *Builder {
	return b.AddClaim(ClaimJTI, id)
}

// WithGeneratedJTI sets jti to a freshly generated UUID.
func (b *Builder) WithGeneratedJTI() *Builder {
	return b.AddClaim(ClaimJTI, uuid.NewString())
}

// AddLifetimeClaims sets iat and nbf to now and exp to now plus lifetime.
func (b *Builder) AddLifetimeClaims(lifetime time.Duration) *Builder {
	now := b.now()
	b.SetIssuedAt(now)
	b.SetNotBefore(now)
	b.SetExpirationTime(now.Add(lifetime))
	return b
}

// SetKeyID sets the kid header parameter used for verification key
// selection.
func (b *Builder) SetKeyID(kid string) *Builder {
	return b.AddHeaderClaim(HeaderKeyID, kid)
}

// SetTokenType overrides the typ header (for example "refresh").
func (b *Builder) SetTokenType(typ string) *Builder {
	return b.AddHeaderClaim(HeaderType, typ)
}

// Sign serializes header and payload, signs with the given algorithm and
// key, and returns the three-segment raw token.
func (b *Builder) Sign(alg Alg, key Key) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if alg != AlgNone && key.IsZero() {
		return "", ErrMissingKey
	}

	b.header[HeaderAlgorithm] = string(alg)

	signingString, err := b.signingString()
	if err != nil {
		return "", err
	}

	signature, err := signing.Sign(alg, signingString, key)
	if err != nil {
		return "", err
	}

	b.metrics.Inc(MetricTokenIssued)
	return signingString + "." + signature, nil
}

// SignHS256 signs with HMAC-SHA256 and the given secret.
func (b *Builder) SignHS256(secret []byte) (string, error) {
	return b.Sign(AlgHS256, SymmetricKey(secret))
}

// SignHS384 signs with HMAC-SHA384 and the given secret.
func (b *Builder) SignHS384(secret []byte) (string, error) {
	return b.Sign(AlgHS384, SymmetricKey(secret))
}

// SignHS512 signs with HMAC-SHA512 and the given secret.
func (b *Builder) SignHS512(secret []byte) (string, error) {
	return b.Sign(AlgHS512, SymmetricKey(secret))
}

// SignRS256 signs with RSA PKCS#1 v1.5 and SHA-256.
func (b *Builder) SignRS256(key *rsa.PrivateKey) (string, error) {
	return b.Sign(AlgRS256, RSAPrivateKey(key))
}

// SignRS384 signs with RSA PKCS#1 v1.5 and SHA-384.
func (b *Builder) SignRS384(key *rsa.PrivateKey) (string, error) {
	return b.Sign(AlgRS384, RSAPrivateKey(key))
}

// SignRS512 signs with RSA PKCS#1 v1.5 and SHA-512.
func (b *Builder) SignRS512(key *rsa.PrivateKey) (string, error) {
	return b.Sign(AlgRS512, RSAPrivateKey(key))
}

// SignES256 signs with ECDSA and SHA-256.
func (b *Builder) SignES256(key *ecdsa.PrivateKey) (string, error) {
	return b.Sign(AlgES256, ECDSAPrivateKey(key))
}

// SignES384 signs with ECDSA and SHA-384.
func (b *Builder) SignES384(key *ecdsa.PrivateKey) (string, error) {
	return b.Sign(AlgES384, ECDSAPrivateKey(key))
}

// SignES512 signs with ECDSA and SHA-512.
func (b *Builder) SignES512(key *ecdsa.PrivateKey) (string, error) {
	return b.Sign(AlgES512, ECDSAPrivateKey(key))
}

// Unsecured sets alg=none and emits "header.payload." with an empty
// signature segment. The signing engine is never invoked.
func (b *Builder) Unsecured() (string, error) {
	if b.err != nil {
		return "", b.err
	}

	b.header[HeaderAlgorithm] = string(AlgNone)

	signingString, err := b.signingString()
	if err != nil {
		return "", err
	}

	b.metrics.Inc(MetricTokenIssued)
	return signingString + ".", nil
}

// Token signs the accumulated claims and returns the immutable token
// model alongside its raw form.
func (b *Builder) Token(alg Alg, key Key) (*Token, error) {
	raw, err := b.Sign(alg, key)
	if err != nil {
		return nil, err
	}

	sigIdx := len(raw)
	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i] == '.' {
			sigIdx = i + 1
			break
		}
	}

	return newToken(b.header, b.payload, raw[sigIdx:], raw), nil
}

func (b *Builder) signingString() (string, error) {
	headerJSON, err := b.serializer.Serialize(b.header)
	if err != nil {
		return "", fmt.Errorf("serialize header: %w", err)
	}
	payloadJSON, err := b.serializer.Serialize(b.payload)
	if err != nil {
		return "", fmt.Errorf("serialize payload: %w", err)
	}
	return codec.EncodeString(headerJSON) + "." + codec.EncodeString(payloadJSON), nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
