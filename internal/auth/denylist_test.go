package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDenyList(t *testing.T) (*RedisDenyList, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisDenyListFromClient(client), mr
}

func TestRedisDenyListRevokesUntilExpiry(t *testing.T) {
	d, mr := newTestDenyList(t)
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(time.Hour + time.Second)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry lives only as long as the token")
}

func TestRedisDenyListSkipsExpiredTokens(t *testing.T) {
	d, mr := newTestDenyList(t)
	require.NoError(t, d.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("campus:revoked:old"))
}

func TestNewRedisDenyListPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	d, err := NewRedisDenyList(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer d.Close()

	_, err = NewRedisDenyList(context.Background(), "redis://127.0.0.1:1")
	assert.Error(t, err)
}
