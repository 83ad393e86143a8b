package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/siwa/core"
	"github.com/layer-3/siwa/ports"
)

const (
	noncePrefix   = "siwa:nonce:"
	sessionPrefix = "siwa:session:"
	limitPrefix   = "siwa:ratelimit:"
)

// RedisStore backs the nonce, session and rate-limit contracts with Redis,
// making the state shareable across instances. Records are stored as JSON
// with key TTLs matching their expiry, so Redis reclaims them without any
// sweep on our side. Atomic nonce consumption uses GETDEL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis store around an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Nonces returns the nonce store view.
func (s *RedisStore) Nonces() ports.NonceStore { return redisNonces{s} }

// Sessions returns the session store view.
func (s *RedisStore) Sessions() ports.SessionStore { return redisSessions{s} }

// RateLimits returns the rate-limit store view.
func (s *RedisStore) RateLimits() ports.RateLimitStore { return redisLimits{s} }

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", core.ErrStoreOperationFailed, op, err)
}

func (s *RedisStore) setJSON(ctx context.Context, key string, value any, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return storeError("marshal record", err)
	}

	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return storeError("set "+key, err)
	}
	return nil
}

type redisNonces struct{ s *RedisStore }

func (r redisNonces) Get(ctx context.Context, nonce string) (*core.NonceRecord, error) {
	payload, err := r.s.client.Get(ctx, noncePrefix+nonce).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get nonce", err)
	}

	return decodeNonceRecord(payload)
}

func (r redisNonces) Set(ctx context.Context, nonce string, record *core.NonceRecord) error {
	return r.s.setJSON(ctx, noncePrefix+nonce, record, record.ExpiresAt)
}

func (r redisNonces) Delete(ctx context.Context, nonce string) error {
	if err := r.s.client.Del(ctx, noncePrefix+nonce).Err(); err != nil {
		return storeError("delete nonce", err)
	}
	return nil
}

// Consume reads and deletes the record in a single GETDEL round trip, which
// Redis executes atomically: concurrent consumers of the same nonce get
// exactly one winner.
func (r redisNonces) Consume(ctx context.Context, nonce string) (*core.NonceRecord, error) {
	payload, err := r.s.client.GetDel(ctx, noncePrefix+nonce).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("consume nonce", err)
	}

	return decodeNonceRecord(payload)
}

func decodeNonceRecord(payload []byte) (*core.NonceRecord, error) {
	var record core.NonceRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, storeError("decode nonce record", err)
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, nil
	}
	return &record, nil
}

type redisSessions struct{ s *RedisStore }

func (r redisSessions) Get(ctx context.Context, token string) (*core.SessionRecord, error) {
	payload, err := r.s.client.Get(ctx, sessionPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get session", err)
	}

	var record core.SessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, storeError("decode session record", err)
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, nil
	}
	return &record, nil
}

func (r redisSessions) Set(ctx context.Context, token string, record *core.SessionRecord) error {
	return r.s.setJSON(ctx, sessionPrefix+token, record, record.ExpiresAt)
}

func (r redisSessions) Delete(ctx context.Context, token string) error {
	if err := r.s.client.Del(ctx, sessionPrefix+token).Err(); err != nil {
		return storeError("delete session", err)
	}
	return nil
}

type redisLimits struct{ s *RedisStore }

// Increment runs INCR with a window-long TTL attached on first increment.
// The window is fixed, starting at the first request after the previous key
// expired; Redis reclaims the counter when the window rolls over.
func (r redisLimits) Increment(ctx context.Context, identifier string, window time.Duration, maxRequests int) (core.RateLimitResult, error) {
	key := limitPrefix + identifier

	pipe := r.s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return core.RateLimitResult{}, storeError("increment rate limit", err)
	}

	count := int(incr.Val())
	reset := time.Now().Add(ttl.Val())

	return core.RateLimitResult{
		Allowed:   count <= maxRequests,
		Count:     count,
		ResetTime: reset,
	}, nil
}
