package goToken

import "sync"

// ErrorCode classifies a validation failure. Validation failures are
// always returned as data on a ValidationResult, never as Go errors, so
// calling code branches on a result instead of catching.
type ErrorCode string

const (
	// CodeInvalidToken marks a token that failed structural parsing inside
	// a validate convenience entry point.
	CodeInvalidToken ErrorCode = "InvalidToken"
	// CodeTokenExpired marks a token past exp plus clock skew.
	CodeTokenExpired ErrorCode = "TokenExpired"
	// CodeTokenNotYetValid marks a token before nbf minus clock skew.
	CodeTokenNotYetValid ErrorCode = "TokenNotYetValid"
	// CodeInvalidIssuer marks a missing or unacceptable iss claim.
	CodeInvalidIssuer ErrorCode = "InvalidIssuer"
	// CodeInvalidAudience marks a missing or unacceptable aud claim.
	CodeInvalidAudience ErrorCode = "InvalidAudience"
	// CodeInvalidSignature marks a failed or impossible signature check.
	CodeInvalidSignature ErrorCode = "InvalidSignature"
	// CodeMissingClaim marks a claim required by the active checks.
	CodeMissingClaim ErrorCode = "MissingClaim"
	// CodeInvalidClaimValue marks a claim with an unacceptable value.
	CodeInvalidClaimValue ErrorCode = "InvalidClaimValue"
	// CodeJTIMissing marks an absent jti under replay protection.
	CodeJTIMissing ErrorCode = "JtiMissing"
	// CodeJTIAlreadyUsed marks a replayed jti.
	CodeJTIAlreadyUsed ErrorCode = "JtiAlreadyUsed"
	// CodeTokenRevoked marks a token present in the revocation registry.
	CodeTokenRevoked ErrorCode = "TokenRevoked"
)

// ValidationError is one failed check.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

// Error makes ValidationError usable where an error is wanted; the
// pipeline itself only ever returns it as data.
func (e ValidationError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// ValidationResult is the outcome of a pipeline run. The pipeline
// short-circuits, so Errors holds at most the first failing stage's
// error plus nothing after it.
type ValidationResult struct {
	Errors []ValidationError
}

// Success returns a valid result.
func Success() *ValidationResult {
	return &ValidationResult{}
}

// Failure returns an invalid result carrying a single error.
func Failure(code ErrorCode, message string) *ValidationResult {
	return &ValidationResult{Errors: []ValidationError{{Code: code, Message: message}}}
}

// IsValid reports whether no check failed.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// FirstCode returns the failing stage's code, or "" when valid.
func (r *ValidationResult) FirstCode() ErrorCode {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Code
}

// JTISet tracks seen token identifiers for replay protection. The
// validator inserts a jti as a side effect of a passing check; the caller
// owns the set's lifetime and must supply a concurrency-safe
// implementation when sharing one set across concurrent validations.
type JTISet interface {
	Contains(id string) bool
	Add(id string)
}

// SyncJTISet is a mutex-guarded JTISet safe for concurrent validations.
type SyncJTISet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewJTISet returns an empty concurrency-safe JTISet.
func NewJTISet() *SyncJTISet {
	return &SyncJTISet{ids: make(map[string]struct{})}
}

// Contains reports whether id was recorded.
func (s *SyncJTISet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Add records id.
func (s *SyncJTISet) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

// Clear empties the set; callers typically do this on a rotation
// schedule matching their token lifetime.
func (s *SyncJTISet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{})
}

// Len returns the number of recorded identifiers.
func (s *SyncJTISet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
