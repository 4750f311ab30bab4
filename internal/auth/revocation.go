package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers logged-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevocations keeps revoked token ids as expiring Redis keys.
type RedisRevocations struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisRevocations builds a Redis-backed revocation store.
func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client, prefix: "stationhub:revoked:", now: time.Now}
}

func (r *RedisRevocations) key(tokenID string) string {
	return r.prefix + tokenID
}

// Revoke marks tokenID revoked until the token would have expired anyway.
func (r *RedisRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked.
func (r *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("auth: check revocation: %w", err)
	}
	return n > 0, nil
}

var _ RevocationStore = (*RedisRevocations)(nil)
