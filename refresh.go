package goToken

import (
	"errors"
	"fmt"
	"time"
)

// TokenTypeRefresh is the typ header value carried by refresh tokens.
const TokenTypeRefresh = "refresh"

// ErrInvalidRefreshToken is returned by Refresh when the presented
// refresh token fails validation.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// Refresher issues refresh tokens and exchanges them for fresh access
// tokens.
type Refresher interface {
	CreateRefreshToken(subject string) (string, error)
	Refresh(refreshToken string) (string, error)
	ValidateRefreshToken(refreshToken string) *ValidationResult
}

// TokenRefresher is the default Refresher. Refresh tokens carry
// typ "refresh" and a generated jti; exchanged access tokens inherit the
// refresh token's claims with fresh lifetime claims and a new jti.
type TokenRefresher struct {
	serializer      Serializer
	validator       *Validator
	parser          *Parser
	alg             Alg
	key             Key
	issuer          string
	refreshLifetime time.Duration
	accessLifetime  time.Duration
	revoker         Revoker
}

const (
	defaultRefreshLifetime = 7 * 24 * time.Hour
	defaultAccessLifetime  = 15 * time.Minute
)

// NewRefresher returns a TokenRefresher signing with alg and key. A nil
// serializer falls back to JSONSerializer.
func NewRefresher(serializer Serializer, alg Alg, key Key) *TokenRefresher {
	if serializer == nil {
		serializer = JSONSerializer{}
	}
	return &TokenRefresher{
		serializer:      serializer,
		validator:       NewValidator(serializer),
		parser:          NewParser(serializer),
		alg:             alg,
		key:             key,
		refreshLifetime: defaultRefreshLifetime,
		accessLifetime:  defaultAccessLifetime,
	}
}

// WithIssuer stamps and requires the iss claim on both token kinds.
func (r *TokenRefresher) WithIssuer(issuer string) *TokenRefresher {
	r.issuer = issuer
	return r
}

// WithLifetimes overrides the refresh and access token lifetimes.
func (r *TokenRefresher) WithLifetimes(refresh, access time.Duration) *TokenRefresher {
	r.refreshLifetime = refresh
	r.accessLifetime = access
	return r
}

// WithRevoker consults rev during refresh token validation, so revoked
// refresh tokens can no longer mint access tokens.
func (r *TokenRefresher) WithRevoker(rev Revoker) *TokenRefresher {
	r.revoker = rev
	return r
}

// CreateRefreshToken issues a refresh token for subject.
func (r *TokenRefresher) CreateRefreshToken(subject string) (string, error) {
	return r.CreateRefreshTokenWithClaims(subject, nil)
}

// CreateRefreshTokenWithClaims issues a refresh token for subject carrying
// the extra payload claims, which are copied onto access tokens minted
// from it.
func (r *TokenRefresher) CreateRefreshTokenWithClaims(subject string, claims map[string]any) (string, error) {
	b := NewBuilder(r.serializer).
		SetTokenType(TokenTypeRefresh).
		SetSubject(subject).
		AddLifetimeClaims(r.refreshLifetime).
		WithGeneratedJTI()
	if r.issuer != "" {
		b.SetIssuer(r.issuer)
	}
	for name, value := range claims {
		b.AddClaim(name, value)
	}
	return b.Sign(r.alg, r.key)
}

// ValidateRefreshToken runs the full validation pipeline on refreshToken,
// requiring typ "refresh" and a valid signature.
func (r *TokenRefresher) ValidateRefreshToken(refreshToken string) *ValidationResult {
	p := NewValidationParameters().
		WithTokenType(TokenTypeRefresh).
		WithLifetime(0).
		WithKey(r.key)
	if r.issuer != "" {
		p.WithIssuer(r.issuer)
	}
	if r.revoker != nil {
		p.WithRevoker(r.revoker)
	}
	return r.validator.Validate(refreshToken, p)
}

// Refresh validates refreshToken and mints a new access token carrying
// the refresh token's claims with fresh iat/nbf/exp and a new jti.
func (r *TokenRefresher) Refresh(refreshToken string) (string, error) {
	result := r.ValidateRefreshToken(refreshToken)
	if !result.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidRefreshToken, result.FirstCode())
	}

	tok, err := r.parser.Parse(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	b := NewBuilder(r.serializer)
	for name, value := range tok.Payload() {
		switch name {
		case ClaimIssuedAt, ClaimNotBefore, ClaimExpiresAt, ClaimJTI:
			continue
		}
		b.AddClaim(name, value)
	}
	b.AddLifetimeClaims(r.accessLifetime).WithGeneratedJTI()
	if kid, ok := tok.TryHeaderClaim(HeaderKeyID); ok {
		b.AddHeaderClaim(HeaderKeyID, kid)
	}
	return b.Sign(r.alg, r.key)
}
