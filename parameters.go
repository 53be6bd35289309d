package goToken

import (
	"strconv"
	"strings"
	"time"
)

// ValidationParameters configures which pipeline stages run and with what
// expectations. The zero value validates nothing but the signature;
// NewValidationParameters returns that default. Fluent With* setters
// enable the corresponding stage.
type ValidationParameters struct {
	RequireTokenType  bool
	RequiredTokenType string

	ValidateRevocation bool
	Revoker            Revoker

	ValidateLifetime bool
	ClockSkew        time.Duration

	ValidateIssuer bool
	ValidIssuer    string
	ValidIssuers   []string

	ValidateAudience bool
	ValidAudience    string
	ValidAudiences   []string

	ValidateSignature bool
	Key               Key
	SecurityKeys      map[string]Key
	// AllowUnsecured accepts alg=none tokens with an empty signature
	// segment. Off by default; an unsecured token presented where a key
	// is expected fails with CodeInvalidSignature.
	AllowUnsecured bool

	ValidateJTI bool
	// UsedJTIs is mutated by the validator: a jti is added after all jti
	// checks pass. Callers sharing one set across goroutines must supply
	// a concurrency-safe implementation.
	UsedJTIs     JTISet
	JTIValidator func(jti string) bool

	EnableCaching bool
	CacheDuration time.Duration
}

// NewValidationParameters returns parameters with signature verification
// enabled and every other stage off.
func NewValidationParameters() *ValidationParameters {
	return &ValidationParameters{ValidateSignature: true}
}

// WithIssuer requires iss to equal issuer.
func (p *ValidationParameters) WithIssuer(issuer string) *ValidationParameters {
	p.ValidateIssuer = true
	p.ValidIssuer = issuer
	return p
}

// WithIssuers requires iss to be one of issuers.
func (p *ValidationParameters) WithIssuers(issuers ...string) *ValidationParameters {
	p.ValidateIssuer = true
	p.ValidIssuers = issuers
	return p
}

// WithAudience requires aud to contain audience.
func (p *ValidationParameters) WithAudience(audience string) *ValidationParameters {
	p.ValidateAudience = true
	p.ValidAudience = audience
	return p
}

// WithAudiences requires aud to contain at least one of audiences.
func (p *ValidationParameters) WithAudiences(audiences ...string) *ValidationParameters {
	p.ValidateAudience = true
	p.ValidAudiences = audiences
	return p
}

// WithLifetime turns on exp/nbf checking with the given clock skew
// tolerance.
func (p *ValidationParameters) WithLifetime(skew time.Duration) *ValidationParameters {
	p.ValidateLifetime = true
	p.ClockSkew = skew
	return p
}

// WithKey supplies the single verification key used when no kid lookup
// applies.
func (p *ValidationParameters) WithKey(key Key) *ValidationParameters {
	p.Key = key
	return p
}

// WithSecurityKeys supplies the kid-indexed key set used for rotation.
func (p *ValidationParameters) WithSecurityKeys(keys map[string]Key) *ValidationParameters {
	p.SecurityKeys = keys
	return p
}

// WithTokenType requires the header typ to equal typ exactly.
func (p *ValidationParameters) WithTokenType(typ string) *ValidationParameters {
	p.RequireTokenType = true
	p.RequiredTokenType = typ
	return p
}

// WithRevoker turns on the revocation stage against r.
func (p *ValidationParameters) WithRevoker(r Revoker) *ValidationParameters {
	p.ValidateRevocation = true
	p.Revoker = r
	return p
}

// WithJTITracking turns on replay protection against the given set.
func (p *ValidationParameters) WithJTITracking(set JTISet) *ValidationParameters {
	p.ValidateJTI = true
	p.UsedJTIs = set
	return p
}

// WithJTIValidator adds a predicate run against the jti claim.
func (p *ValidationParameters) WithJTIValidator(fn func(jti string) bool) *ValidationParameters {
	p.ValidateJTI = true
	p.JTIValidator = fn
	return p
}

// WithCaching enables validation-result caching with the given entry
// lifetime (zero keeps entries until evicted).
func (p *ValidationParameters) WithCaching(d time.Duration) *ValidationParameters {
	p.EnableCaching = true
	p.CacheDuration = d
	return p
}

// fingerprint derives the validation-result cache key: the raw token plus
// every parameter that can change the outcome.
func (p *ValidationParameters) fingerprint(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw) + 64)
	sb.WriteString(raw)
	sb.WriteByte('|')

	flags := []bool{
		p.RequireTokenType,
		p.ValidateRevocation,
		p.ValidateLifetime,
		p.ValidateIssuer,
		p.ValidateAudience,
		p.ValidateSignature,
		p.AllowUnsecured,
		p.ValidateJTI,
	}
	for _, f := range flags {
		if f {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	sb.WriteByte('|')
	sb.WriteString(p.RequiredTokenType)
	sb.WriteByte('|')
	sb.WriteString(p.ValidIssuer)
	sb.WriteByte('|')
	sb.WriteString(strings.Join(p.ValidIssuers, ","))
	sb.WriteByte('|')
	sb.WriteString(p.ValidAudience)
	sb.WriteByte('|')
	sb.WriteString(strings.Join(p.ValidAudiences, ","))
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatInt(int64(p.ClockSkew/time.Second), 10))

	return sb.String()
}
