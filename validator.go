package goToken

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/MrEthical07/goToken/internal/signing"
)

// CustomValidator is an additional check run after the built-in stages,
// in registration order, under the same short-circuit rule. A nil return
// passes.
type CustomValidator func(ctx context.Context, t *Token) *ValidationError

// Validator runs the fixed-order, short-circuiting claim pipeline:
// token type, revocation, lifetime, issuer, audience, signature, jti,
// then custom validators. The first failing stage's result is returned
// immediately. Validators are safe for concurrent use; the caller-owned
// UsedJTIs set is the one documented exception (see JTISet).
type Validator struct {
	parser      *Parser
	metrics     *Metrics
	resultCache Cache
	custom      []CustomValidator
	now         func() time.Time
}

// NewValidator returns a Validator parsing with the given serializer
// (nil falls back to JSONSerializer).
func NewValidator(serializer Serializer) *Validator {
	return &Validator{
		parser: NewParser(serializer),
		now:    time.Now,
	}
}

// UseMetrics installs a metrics sink on the validator and its parser.
func (v *Validator) UseMetrics(m *Metrics) *Validator {
	v.metrics = m
	v.parser.UseMetrics(m)
	return v
}

// UseTokenCache installs the parsed-token cache keyed by raw string.
func (v *Validator) UseTokenCache(c Cache) *Validator {
	v.parser.UseCache(c)
	return v
}

// UseResultCache installs the validation-result cache keyed by the
// parameter fingerprint. Only successful results are stored, and only
// when the parameters enable caching.
func (v *Validator) UseResultCache(c Cache) *Validator {
	v.resultCache = c
	return v
}

// RegisterValidator appends a custom check to the end of the pipeline.
// Not safe to call concurrently with validation.
func (v *Validator) RegisterValidator(fn CustomValidator) *Validator {
	v.custom = append(v.custom, fn)
	return v
}

// ValidateToken runs the pipeline against an already parsed token.
func (v *Validator) ValidateToken(t *Token, p *ValidationParameters) *ValidationResult {
	res, _ := v.run(context.Background(), t, p)
	return res
}

// ValidateTokenWithContext runs the pipeline with cooperative
// cancellation: the context is checked before every stage and before
// every custom validator. Cancellation surfaces as an error, never as a
// ValidationError.
func (v *Validator) ValidateTokenWithContext(ctx context.Context, t *Token, p *ValidationParameters) (*ValidationResult, error) {
	return v.run(ctx, t, p)
}

// Validate parses raw and runs the pipeline. Structural parse failures
// become a CodeInvalidToken result rather than an error. With caching
// enabled, a fingerprint hit short-circuits to Success without re-running
// any stage.
func (v *Validator) Validate(raw string, p *ValidationParameters) *ValidationResult {
	res, _ := v.ValidateWithContext(context.Background(), raw, p)
	return res
}

// TryValidate reports only whether raw validates.
func (v *Validator) TryValidate(raw string, p *ValidationParameters) bool {
	return v.Validate(raw, p).IsValid()
}

// ValidateWithContext is the cancellable form of Validate.
func (v *Validator) ValidateWithContext(ctx context.Context, raw string, p *ValidationParameters) (*ValidationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	useCache := p.EnableCaching && v.resultCache != nil
	var key string
	if useCache {
		key = p.fingerprint(raw)
		if entry, ok := v.resultCache.TryGet(key); ok {
			if hit, ok := entry.(cachedResult); ok {
				if hit.expiresAt.IsZero() || v.now().Before(hit.expiresAt) {
					v.metrics.Inc(MetricCacheHit)
					return Success(), nil
				}
				v.resultCache.Invalidate(key)
			}
		}
		v.metrics.Inc(MetricCacheMiss)
	}

	tok, err := v.parser.ParseWithContext(ctx, raw)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		v.metrics.Inc(MetricValidationFailure)
		return Failure(CodeInvalidToken, err.Error()), nil
	}

	res, err := v.run(ctx, tok, p)
	if err != nil {
		return nil, err
	}

	if res.IsValid() && useCache {
		entry := cachedResult{}
		if p.CacheDuration > 0 {
			entry.expiresAt = v.now().Add(p.CacheDuration)
		}
		v.resultCache.Put(key, entry)
	}
	return res, nil
}

// cachedResult marks a prior successful validation of a fingerprint.
type cachedResult struct {
	expiresAt time.Time
}

func (v *Validator) run(ctx context.Context, t *Token, p *ValidationParameters) (*ValidationResult, error) {
	stages := []func(*Token, *ValidationParameters) *ValidationError{
		v.checkTokenType,
		v.checkRevocation,
		v.checkLifetime,
		v.checkIssuer,
		v.checkAudience,
		v.checkSignature,
		v.checkJTI,
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if verr := stage(t, p); verr != nil {
			v.metrics.Inc(MetricValidationFailure)
			return &ValidationResult{Errors: []ValidationError{*verr}}, nil
		}
	}

	for _, custom := range v.custom {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if verr := custom(ctx, t); verr != nil {
			v.metrics.Inc(MetricValidationFailure)
			return &ValidationResult{Errors: []ValidationError{*verr}}, nil
		}
	}

	v.metrics.Inc(MetricValidationSuccess)
	return Success(), nil
}

func (v *Validator) checkTokenType(t *Token, p *ValidationParameters) *ValidationError {
	if !p.RequireTokenType {
		return nil
	}

	got, ok := t.TryHeaderClaim(HeaderType)
	typStr, isStr := got.(string)
	if !ok || !isStr || typStr != p.RequiredTokenType {
		return &ValidationError{
			Code:    CodeInvalidClaimValue,
			Message: "token type must be " + p.RequiredTokenType,
		}
	}
	return nil
}

func (v *Validator) checkRevocation(t *Token, p *ValidationParameters) *ValidationError {
	if !p.ValidateRevocation || p.Revoker == nil {
		return nil
	}

	raw := t.Raw()
	if raw == "" || !p.Revoker.IsRevoked(raw) {
		return nil
	}

	msg := "token has been revoked"
	if reason, ok := p.Revoker.RevocationReason(raw); ok && reason != "" {
		msg = "token has been revoked: " + reason
	}
	return &ValidationError{Code: CodeTokenRevoked, Message: msg}
}

func (v *Validator) checkLifetime(t *Token, p *ValidationParameters) *ValidationError {
	if !p.ValidateLifetime {
		return nil
	}

	expRaw, ok := t.TryClaim(ClaimExpiresAt)
	if !ok {
		return &ValidationError{Code: CodeMissingClaim, Message: "exp claim required"}
	}
	exp, ok := numericClaim(expRaw)
	if !ok {
		return &ValidationError{Code: CodeInvalidClaimValue, Message: "exp claim must be integer seconds"}
	}

	now := v.now().Unix()
	skew := int64(p.ClockSkew / time.Second)

	if now > exp+skew {
		return &ValidationError{Code: CodeTokenExpired, Message: "token has expired"}
	}

	if nbfRaw, ok := t.TryClaim(ClaimNotBefore); ok {
		nbf, ok := numericClaim(nbfRaw)
		if !ok {
			return &ValidationError{Code: CodeInvalidClaimValue, Message: "nbf claim must be integer seconds"}
		}
		if now < nbf-skew {
			return &ValidationError{Code: CodeTokenNotYetValid, Message: "token is not yet valid"}
		}
	}

	return nil
}

func (v *Validator) checkIssuer(t *Token, p *ValidationParameters) *ValidationError {
	if !p.ValidateIssuer {
		return nil
	}

	iss, ok := t.stringClaim(ClaimIssuer)
	if !ok || iss == "" {
		return &ValidationError{Code: CodeInvalidIssuer, Message: "iss claim required"}
	}

	if p.ValidIssuer != "" && iss != p.ValidIssuer {
		return &ValidationError{Code: CodeInvalidIssuer, Message: "issuer " + iss + " is not accepted"}
	}
	if len(p.ValidIssuers) > 0 && !slices.Contains(p.ValidIssuers, iss) {
		return &ValidationError{Code: CodeInvalidIssuer, Message: "issuer " + iss + " is not accepted"}
	}
	return nil
}

func (v *Validator) checkAudience(t *Token, p *ValidationParameters) *ValidationError {
	if !p.ValidateAudience {
		return nil
	}

	audiences := audienceClaim(t)
	if len(audiences) == 0 {
		return &ValidationError{Code: CodeInvalidAudience, Message: "aud claim required"}
	}

	if p.ValidAudience != "" && !slices.Contains(audiences, p.ValidAudience) {
		return &ValidationError{Code: CodeInvalidAudience, Message: "audience is not accepted"}
	}
	if len(p.ValidAudiences) > 0 && !intersects(audiences, p.ValidAudiences) {
		return &ValidationError{Code: CodeInvalidAudience, Message: "audience is not accepted"}
	}
	return nil
}

func (v *Validator) checkSignature(t *Token, p *ValidationParameters) *ValidationError {
	if !p.ValidateSignature {
		return nil
	}

	algRaw, ok := t.TryHeaderClaim(HeaderAlgorithm)
	algStr, isStr := algRaw.(string)
	if !ok || !isStr || algStr == "" {
		return &ValidationError{Code: CodeInvalidSignature, Message: "alg header required"}
	}
	alg := Alg(algStr)
	if !signing.Supported(alg) {
		return &ValidationError{Code: CodeInvalidSignature, Message: "unsupported algorithm " + algStr}
	}

	if alg == AlgNone {
		if p.AllowUnsecured && t.Signature() == "" {
			return nil
		}
		return &ValidationError{Code: CodeInvalidSignature, Message: "unsecured token rejected"}
	}

	if t.Signature() == "" {
		return &ValidationError{Code: CodeInvalidSignature, Message: "signature segment missing"}
	}

	key, verr := resolveKey(t, p)
	if verr != nil {
		return verr
	}

	raw := t.Raw()
	if raw == "" {
		return &ValidationError{Code: CodeInvalidSignature, Message: "token has no raw form; re-sign after claim edits"}
	}
	signingString := raw[:strings.LastIndexByte(raw, '.')]

	v.metrics.Inc(MetricSignatureVerify)
	if err := signing.Verify(alg, signingString, t.Signature(), key); err != nil {
		return &ValidationError{Code: CodeInvalidSignature, Message: err.Error()}
	}
	return nil
}

// resolveKey applies kid precedence: a kid header plus a supplied key set
// resolves strictly by kid; otherwise the single-key parameter applies.
func resolveKey(t *Token, p *ValidationParameters) (Key, *ValidationError) {
	kidRaw, hasKid := t.TryHeaderClaim(HeaderKeyID)
	kid, kidIsStr := kidRaw.(string)

	if hasKid && kidIsStr && len(p.SecurityKeys) > 0 {
		key, ok := p.SecurityKeys[kid]
		if !ok {
			return Key{}, &ValidationError{Code: CodeInvalidSignature, Message: "key ID not found: " + kid}
		}
		return key, nil
	}

	if p.Key.IsZero() {
		return Key{}, &ValidationError{Code: CodeInvalidSignature, Message: "no verification key supplied"}
	}
	return p.Key, nil
}

func (v *Validator) checkJTI(t *Token, p *ValidationParameters) *ValidationError {
	if !p.ValidateJTI {
		return nil
	}

	jti, ok := t.stringClaim(ClaimJTI)
	if !ok || jti == "" {
		return &ValidationError{Code: CodeJTIMissing, Message: "jti claim required"}
	}

	if p.UsedJTIs != nil && p.UsedJTIs.Contains(jti) {
		return &ValidationError{Code: CodeJTIAlreadyUsed, Message: "jti has already been used"}
	}

	if p.JTIValidator != nil && !p.JTIValidator(jti) {
		return &ValidationError{Code: CodeInvalidClaimValue, Message: "jti rejected by validator"}
	}

	// Bookkeeping side effect of a passing check: the caller owns the
	// set's lifetime, and the insert is not transactional with any
	// downstream use of the token.
	if p.UsedJTIs != nil {
		p.UsedJTIs.Add(jti)
	}
	return nil
}

func audienceClaim(t *Token) []string {
	v, ok := t.TryClaim(ClaimAudience)
	if !ok {
		return nil
	}

	switch aud := v.(type) {
	case string:
		if aud == "" {
			return nil
		}
		return []string{aud}
	case []string:
		return aud
	case []any:
		out := make([]string, 0, len(aud))
		for _, item := range aud {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intersects(a, b []string) bool {
	for _, item := range a {
		if slices.Contains(b, item) {
			return true
		}
	}
	return false
}
