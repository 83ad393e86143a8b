package ports

import (
	"context"
	"time"

	"github.com/layer-3/siwa/core"
)

// NonceStore holds pending-challenge records keyed by nonce. Reads must not
// return records whose expiry has passed, and expired records are eventually
// reclaimed. Absent records are reported as (nil, nil); errors are reserved
// for backend failures.
type NonceStore interface {
	Get(ctx context.Context, nonce string) (*core.NonceRecord, error)
	Set(ctx context.Context, nonce string, record *core.NonceRecord) error
	Delete(ctx context.Context, nonce string) error

	// Consume atomically removes and returns the record for the nonce, or
	// (nil, nil) if it is absent. This is the primitive that guarantees
	// at-most-once nonce consumption under concurrent verification.
	Consume(ctx context.Context, nonce string) (*core.NonceRecord, error)
}

// SessionStore holds session records keyed by the opaque bearer token, with
// the same expiry semantics as NonceStore.
type SessionStore interface {
	Get(ctx context.Context, token string) (*core.SessionRecord, error)
	Set(ctx context.Context, token string, record *core.SessionRecord) error
	Delete(ctx context.Context, token string) error
}

// RateLimitStore implements a fixed-window request counter per caller
// identifier. Increment should be atomic to avoid undercounting concurrent
// bursts. A window straddle can admit up to twice the configured maximum;
// that imprecision is accepted.
type RateLimitStore interface {
	Increment(ctx context.Context, identifier string, window time.Duration, maxRequests int) (core.RateLimitResult, error)
}

// NonceReadWriter is the base nonce contract without atomic consumption.
// Wrap it in a FallbackNonceStore to satisfy NonceStore when the backend
// has no atomic read-and-delete.
type NonceReadWriter interface {
	Get(ctx context.Context, nonce string) (*core.NonceRecord, error)
	Set(ctx context.Context, nonce string, record *core.NonceRecord) error
	Delete(ctx context.Context, nonce string) error
}

// FallbackNonceStore adapts a NonceReadWriter into a NonceStore by composing
// get-then-delete. Two concurrent Consume calls for the same nonce can both
// observe the record before either delete lands, so this carries a real
// time-of-check-to-time-of-use window; prefer a backend with native atomic
// consumption wherever replay resistance matters.
type FallbackNonceStore struct {
	NonceReadWriter
}

// Consume reads then deletes the record. See the type comment for the
// weaker guarantee this composition provides.
func (s FallbackNonceStore) Consume(ctx context.Context, nonce string) (*core.NonceRecord, error) {
	record, err := s.Get(ctx, nonce)
	if err != nil || record == nil {
		return nil, err
	}
	if err := s.Delete(ctx, nonce); err != nil {
		return nil, err
	}
	return record, nil
}
