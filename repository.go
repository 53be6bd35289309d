package goToken

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MrEthical07/goToken/store"
)

// TokenInfo is the stored record for one issued token.
type TokenInfo struct {
	Raw       string            `json:"raw"`
	UserID    string            `json:"userId,omitempty"`
	TokenType string            `json:"tokenType,omitempty"`
	ExpiresAt time.Time         `json:"expiresAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (i TokenInfo) expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// TokenRepository indexes every issued token by user and type on top of a
// key-value store, for lifecycle queries that the in-memory registry cannot
// answer. Token records are keyed by a digest of the raw string; per-user
// and global indexes hold digest lists and are rebuilt on removal.
type TokenRepository struct {
	kv         store.KV
	serializer Serializer
	now        func() time.Time

	// mu serializes index read-modify-write cycles. Token records
	// themselves are single-key writes and need no coordination.
	mu sync.Mutex
}

// NewTokenRepository returns a repository backed by kv. A nil serializer
// falls back to JSONSerializer.
func NewTokenRepository(kv store.KV, serializer Serializer) *TokenRepository {
	if serializer == nil {
		serializer = JSONSerializer{}
	}
	return &TokenRepository{
		kv:         kv,
		serializer: serializer,
		now:        time.Now,
	}
}

func tokenDigest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (r *TokenRepository) tokenKey(digest string) string { return "token:" + digest }
func (r *TokenRepository) userKey(userID string) string  { return "user:" + userID }

const allTokensKey = "tokens:all"

// StoreToken records info. The record inherits a TTL from ExpiresAt so
// backends with native expiry drop it on their own; indexes are compacted
// lazily by reads and by RemoveExpiredTokens.
func (r *TokenRepository) StoreToken(ctx context.Context, info TokenInfo) error {
	if info.Raw == "" {
		return fmt.Errorf("%w: empty raw token", ErrInvalidArgument)
	}
	encoded, err := r.serializer.Serialize(info)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if !info.ExpiresAt.IsZero() {
		ttl = time.Until(info.ExpiresAt)
		if ttl <= 0 {
			return fmt.Errorf("%w: token already expired", ErrInvalidArgument)
		}
	}

	digest := tokenDigest(info.Raw)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.kv.Set(ctx, r.tokenKey(digest), encoded, ttl); err != nil {
		return err
	}
	if err := r.appendIndex(ctx, allTokensKey, digest); err != nil {
		return err
	}
	if info.UserID != "" {
		if err := r.appendIndex(ctx, r.userKey(info.UserID), digest); err != nil {
			return err
		}
	}
	return nil
}

// GetToken returns the stored record for raw, or store.ErrNotFound.
// Records past their expiry are removed and reported as absent.
func (r *TokenRepository) GetToken(ctx context.Context, raw string) (TokenInfo, error) {
	info, err := r.getByDigest(ctx, tokenDigest(raw))
	if err != nil {
		return TokenInfo{}, err
	}
	if info.expired(r.now()) {
		_ = r.RemoveToken(ctx, raw)
		return TokenInfo{}, store.ErrNotFound
	}
	return info, nil
}

func (r *TokenRepository) getByDigest(ctx context.Context, digest string) (TokenInfo, error) {
	encoded, err := r.kv.Get(ctx, r.tokenKey(digest))
	if err != nil {
		return TokenInfo{}, err
	}
	var info TokenInfo
	if err := r.serializer.Deserialize(encoded, &info); err != nil {
		return TokenInfo{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return info, nil
}

// GetTokensForUser returns every live record for userID, oldest first.
func (r *TokenRepository) GetTokensForUser(ctx context.Context, userID string) ([]TokenInfo, error) {
	digests, err := r.readIndex(ctx, r.userKey(userID))
	if err != nil {
		return nil, err
	}
	now := r.now()
	var out []TokenInfo
	for _, digest := range digests {
		info, err := r.getByDigest(ctx, digest)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if info.expired(now) {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

// RemoveToken deletes the record for raw and drops it from the indexes.
func (r *TokenRepository) RemoveToken(ctx context.Context, raw string) error {
	digest := tokenDigest(raw)

	info, err := r.getByDigest(ctx, digest)
	userID := ""
	if err == nil {
		userID = info.UserID
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.kv.Remove(ctx, r.tokenKey(digest)); err != nil {
		return err
	}
	if err := r.dropFromIndex(ctx, allTokensKey, digest); err != nil {
		return err
	}
	if userID != "" {
		if err := r.dropFromIndex(ctx, r.userKey(userID), digest); err != nil {
			return err
		}
	}
	return nil
}

// RemoveTokensForUser deletes every record indexed under userID and
// returns how many were removed.
func (r *TokenRepository) RemoveTokensForUser(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	digests, err := r.readIndex(ctx, r.userKey(userID))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, digest := range digests {
		if err := r.kv.Remove(ctx, r.tokenKey(digest)); err != nil {
			return removed, err
		}
		if err := r.dropFromIndex(ctx, allTokensKey, digest); err != nil {
			return removed, err
		}
		removed++
	}
	if err := r.kv.Remove(ctx, r.userKey(userID)); err != nil {
		return removed, err
	}
	return removed, nil
}

// RemoveExpiredTokens walks the global index, deletes records that are
// past expiry or already gone from the backend, and compacts the indexes.
func (r *TokenRepository) RemoveExpiredTokens(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	digests, err := r.readIndex(ctx, allTokensKey)
	if err != nil {
		return 0, err
	}
	now := r.now()
	removed := 0
	live := digests[:0:0]

	for _, digest := range digests {
		info, err := r.getByDigest(ctx, digest)
		switch {
		case errors.Is(err, store.ErrNotFound):
			removed++
		case err != nil:
			return removed, err
		case info.expired(now):
			if err := r.kv.Remove(ctx, r.tokenKey(digest)); err != nil {
				return removed, err
			}
			if info.UserID != "" {
				if err := r.dropFromIndex(ctx, r.userKey(info.UserID), digest); err != nil {
					return removed, err
				}
			}
			removed++
		default:
			live = append(live, digest)
		}
	}
	if err := r.writeIndex(ctx, allTokensKey, live); err != nil {
		return removed, err
	}
	return removed, nil
}

// Count returns the number of live records.
func (r *TokenRepository) Count(ctx context.Context) (int, error) {
	return r.countIndex(ctx, allTokensKey)
}

// CountForUser returns the number of live records for userID.
func (r *TokenRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	return r.countIndex(ctx, r.userKey(userID))
}

func (r *TokenRepository) countIndex(ctx context.Context, key string) (int, error) {
	digests, err := r.readIndex(ctx, key)
	if err != nil {
		return 0, err
	}
	now := r.now()
	count := 0
	for _, digest := range digests {
		info, err := r.getByDigest(ctx, digest)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return 0, err
		}
		if !info.expired(now) {
			count++
		}
	}
	return count, nil
}

func (r *TokenRepository) readIndex(ctx context.Context, key string) ([]string, error) {
	encoded, err := r.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var digests []string
	if err := r.serializer.Deserialize(encoded, &digests); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return digests, nil
}

func (r *TokenRepository) writeIndex(ctx context.Context, key string, digests []string) error {
	if len(digests) == 0 {
		return r.kv.Remove(ctx, key)
	}
	encoded, err := r.serializer.Serialize(digests)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, key, encoded, 0)
}

func (r *TokenRepository) appendIndex(ctx context.Context, key, digest string) error {
	digests, err := r.readIndex(ctx, key)
	if err != nil {
		return err
	}
	if slices.Contains(digests, digest) {
		return nil
	}
	return r.writeIndex(ctx, key, append(digests, digest))
}

func (r *TokenRepository) dropFromIndex(ctx context.Context, key, digest string) error {
	digests, err := r.readIndex(ctx, key)
	if err != nil {
		return err
	}
	i := slices.Index(digests, digest)
	if i < 0 {
		return nil
	}
	return r.writeIndex(ctx, key, slices.Delete(digests, i, i+1))
}

const revokedTokenType = "revoked"

const metadataRevocationReason = "revocationReason"

// RepositoryRevoker layers the Revoker capability over a TokenRepository.
// Revoked tokens are stored as records with TokenType "revoked" and the
// reason under the "revocationReason" metadata key, so revocations survive
// process restarts when the repository runs on a durable backend.
type RepositoryRevoker struct {
	repo    *TokenRepository
	parser  *Parser
	metrics *Metrics
	ttl     time.Duration
}

// NewRepositoryRevoker returns a revoker persisting into repo. A nil
// parser falls back to the default Parser.
func NewRepositoryRevoker(repo *TokenRepository, parser *Parser) *RepositoryRevoker {
	if parser == nil {
		parser = NewParser(nil)
	}
	return &RepositoryRevoker{
		repo:   repo,
		parser: parser,
		ttl:    defaultRevocationTTL,
	}
}

// UseMetrics attaches a metrics sink and returns the revoker.
func (rr *RepositoryRevoker) UseMetrics(m *Metrics) *RepositoryRevoker {
	rr.metrics = m
	return rr
}

// Revoke marks raw as revoked until its exp claim, or for the default
// retention window when the token has no usable expiry. Returns false if
// raw does not parse or the record cannot be stored.
func (rr *RepositoryRevoker) Revoke(ctx context.Context, raw, reason string) bool {
	tok, ok := rr.parser.TryParse(raw)
	if !ok {
		return false
	}

	expiresAt := rr.repo.now().Add(rr.ttl)
	if exp, ok := numericClaim(tok.Payload()[ClaimExpiresAt]); ok {
		expiresAt = time.Unix(exp, 0)
	}
	sub, _ := tok.stringClaim(ClaimSubject)

	info := TokenInfo{
		Raw:       raw,
		UserID:    sub,
		TokenType: revokedTokenType,
		ExpiresAt: expiresAt,
		Metadata:  map[string]string{metadataRevocationReason: reason},
	}
	if err := rr.repo.StoreToken(ctx, info); err != nil {
		return false
	}
	rr.metrics.Inc(MetricRevocation)
	return true
}

// IsRevoked reports whether raw has a live revoked record.
func (rr *RepositoryRevoker) IsRevoked(raw string) bool {
	info, err := rr.repo.GetToken(context.Background(), raw)
	return err == nil && info.TokenType == revokedTokenType
}

// RevocationReason returns the stored reason for a revoked token.
func (rr *RepositoryRevoker) RevocationReason(raw string) (string, bool) {
	info, err := rr.repo.GetToken(context.Background(), raw)
	if err != nil || info.TokenType != revokedTokenType {
		return "", false
	}
	reason, ok := info.Metadata[metadataRevocationReason]
	return reason, ok
}
