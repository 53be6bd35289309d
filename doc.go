// Package goToken implements the full lifecycle of JWT-style compact tokens:
// building and signing, structural parsing, ordered claim validation, bounded
// caching, and revocation tracking.
//
// The package is designed for concurrent server workloads: [Parser],
// [Validator], caches, and registries are safe to share across goroutines.
// [Builder] instances are single-writer and build one token at a time;
// [Token] values are immutable and safe to share freely once constructed.
//
// # Architecture boundaries
//
// goToken is the public surface. It exposes [Builder], [Parser], [Validator],
// [Token], [ValidationParameters], and the cache, revocation, and repository
// types. Wire-format encoding and the per-algorithm signature engine live
// under internal/ and are never exported; persistence backends live under
// the store sub-package behind the [store.KV] interface.
//
// # Validation contract
//
// Validation failures are data, never errors: every pipeline outcome is a
// [ValidationResult] whose first entry names the first failing stage.
// Returned errors are reserved for structural problems (malformed tokens in
// Parse) and cooperative cancellation in the WithContext entry points.
//
// # Performance contract
//
// Validate is the hot path. Signature verification runs at most once per
// distinct token and parameter set when result caching is enabled, and the
// counters in [Metrics] are lock-free atomics safe to leave attached in
// production.
package goToken
