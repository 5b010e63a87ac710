package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DenyList records revoked token ids until the token would have expired
// anyway. Without one, logout is purely client side.
type DenyList interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisDenyList stores revoked token ids as keys with a TTL equal to the
// token's remaining lifetime.
type RedisDenyList struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisDenyList connects to the Redis instance at url (redis://...).
func NewRedisDenyList(ctx context.Context, url string) (*RedisDenyList, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisDenyListFromClient(client), nil
}

// NewRedisDenyListFromClient wraps an existing client.
func NewRedisDenyListFromClient(client *redis.Client) *RedisDenyList {
	return &RedisDenyList{client: client, prefix: "campus:revoked:", now: time.Now}
}

// Revoke denies tokenID until expiresAt. Already-expired tokens are ignored.
func (d *RedisDenyList) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, d.prefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked.
func (d *RedisDenyList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

// Close releases the Redis connection pool.
func (d *RedisDenyList) Close() error {
	return d.client.Close()
}
