package goToken

import (
	"sync"
	"sync/atomic"
	"time"
)

// Revoker is the capability the validation pipeline consults: whether a
// raw token has been revoked, and optionally why.
type Revoker interface {
	IsRevoked(raw string) bool
	RevocationReason(raw string) (string, bool)
}

// RevocationRecord describes one revoked token or user block. A record
// observed after ExpiresAt is treated as absent and purged lazily.
type RevocationRecord struct {
	Reason    string
	ExpiresAt time.Time
	UserID    string
}

const defaultRevocationTTL = 24 * time.Hour

// RevocationRegistry is an in-memory Revoker tracking revoked tokens by
// raw string and user-level blocks by subject. Expired records are
// purged lazily on lookup and swept opportunistically after the cleanup
// interval has elapsed since the last sweep. Safe for concurrent use.
type RevocationRegistry struct {
	parser  *Parser
	metrics *Metrics
	now     func() time.Time

	mu      sync.Mutex
	records map[string]RevocationRecord
	users   map[string]RevocationRecord

	cleanupInterval time.Duration
	lastCleanup     time.Time
	sweeping        atomic.Bool
}

// NewRevocationRegistry returns an empty registry parsing tokens with the
// given serializer (nil falls back to JSONSerializer).
func NewRevocationRegistry(serializer Serializer) *RevocationRegistry {
	return &RevocationRegistry{
		parser:          NewParser(serializer),
		now:             time.Now,
		records:         make(map[string]RevocationRecord),
		users:           make(map[string]RevocationRecord),
		cleanupInterval: 5 * time.Minute,
	}
}

// UseMetrics installs a metrics sink.
func (r *RevocationRegistry) UseMetrics(m *Metrics) *RevocationRegistry {
	r.metrics = m
	return r
}

// Revoke marks a raw token revoked, recovering sub and exp from its
// payload for bookkeeping. The record expires with the token's exp claim,
// or after a default TTL when exp is absent. Returns false when the raw
// string does not parse.
func (r *RevocationRegistry) Revoke(raw, reason string) bool {
	tok, ok := r.parser.TryParse(raw)
	if !ok {
		return false
	}

	expiresAt := r.now().Add(defaultRevocationTTL)
	if expRaw, ok := tok.TryClaim(ClaimExpiresAt); ok {
		if exp, ok := numericClaim(expRaw); ok {
			expiresAt = time.Unix(exp, 0)
		}
	}
	userID, _ := tok.stringClaim(ClaimSubject)

	r.revokeRaw(raw, RevocationRecord{Reason: reason, ExpiresAt: expiresAt, UserID: userID})
	return true
}

// RevokeUntil is Revoke with an explicit record expiry overriding the
// token's own exp.
func (r *RevocationRegistry) RevokeUntil(raw, reason string, expiresAt time.Time) bool {
	tok, ok := r.parser.TryParse(raw)
	if !ok {
		return false
	}
	userID, _ := tok.stringClaim(ClaimSubject)

	r.revokeRaw(raw, RevocationRecord{Reason: reason, ExpiresAt: expiresAt, UserID: userID})
	return true
}

// RevokeTokens revokes a batch and returns how many parsed and were
// recorded.
func (r *RevocationRegistry) RevokeTokens(raws []string, reason string) int {
	revoked := 0
	for _, raw := range raws {
		if r.Revoke(raw, reason) {
			revoked++
		}
	}
	return revoked
}

// RevokeAllForUser blocks every token whose sub equals userID until the
// given instant, including tokens the registry has never seen.
func (r *RevocationRegistry) RevokeAllForUser(userID, reason string, until time.Time) {
	r.mu.Lock()
	r.users[userID] = RevocationRecord{Reason: reason, ExpiresAt: until, UserID: userID}
	r.mu.Unlock()

	r.metrics.Inc(MetricRevocation)
	r.maybeSweep()
}

// IsRevoked reports whether raw is revoked directly or via a user block.
// Expired records are purged as they are observed.
func (r *RevocationRegistry) IsRevoked(raw string) bool {
	revoked, _ := r.lookup(raw)
	return revoked
}

// RevocationReason returns the recorded reason for a revoked token.
func (r *RevocationRegistry) RevocationReason(raw string) (string, bool) {
	revoked, record := r.lookup(raw)
	if !revoked {
		return "", false
	}
	return record.Reason, true
}

// Cleanup removes every expired record immediately and returns how many
// were purged.
func (r *RevocationRegistry) Cleanup() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for raw, record := range r.records {
		if now.After(record.ExpiresAt) {
			delete(r.records, raw)
			purged++
		}
	}
	for userID, record := range r.users {
		if now.After(record.ExpiresAt) {
			delete(r.users, userID)
			purged++
		}
	}
	r.lastCleanup = now
	return purged
}

// Len returns the number of live token records.
func (r *RevocationRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *RevocationRegistry) revokeRaw(raw string, record RevocationRecord) {
	r.mu.Lock()
	r.records[raw] = record
	r.mu.Unlock()

	r.metrics.Inc(MetricRevocation)
	r.maybeSweep()
}

func (r *RevocationRegistry) lookup(raw string) (bool, RevocationRecord) {
	now := r.now()

	r.mu.Lock()
	record, ok := r.records[raw]
	if ok && now.After(record.ExpiresAt) {
		delete(r.records, raw)
		ok = false
	}
	hasUserBlocks := len(r.users) > 0
	r.mu.Unlock()

	if ok {
		return true, record
	}
	if !hasUserBlocks {
		return false, RevocationRecord{}
	}

	// User-level blocks apply to tokens the registry has never seen, so
	// the subject has to be recovered from the raw string.
	tok, parsed := r.parser.TryParse(raw)
	if !parsed {
		return false, RevocationRecord{}
	}
	userID, hasSub := tok.stringClaim(ClaimSubject)
	if !hasSub {
		return false, RevocationRecord{}
	}

	r.mu.Lock()
	userRecord, ok := r.users[userID]
	if ok && now.After(userRecord.ExpiresAt) {
		delete(r.users, userID)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return false, RevocationRecord{}
	}
	return true, userRecord
}

// maybeSweep runs Cleanup on a background goroutine when the cleanup
// interval has elapsed since the last sweep.
func (r *RevocationRegistry) maybeSweep() {
	r.mu.Lock()
	due := r.now().Sub(r.lastCleanup) >= r.cleanupInterval
	r.mu.Unlock()

	if !due || !r.sweeping.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer r.sweeping.Store(false)
		r.Cleanup()
	}()
}
