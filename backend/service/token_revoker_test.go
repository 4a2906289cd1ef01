package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisRevoker(t *testing.T) {
	connString := os.Getenv("REDIS_CONN_STRING")
	if connString == "" {
		t.Skip("REDIS_CONN_STRING not set, skipping redis test")
	}
	opt, err := redis.ParseURL(connString)
	assert.NoError(t, err)
	rdb := redis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	revoker := NewRedisRevoker(rdb)
	token := "token-" + uuid.NewString()

	revoked, err := revoker.IsRevoked(ctx, token)
	assert.NoError(t, err)
	assert.False(t, revoked)

	assert.NoError(t, revoker.Revoke(ctx, token, time.Minute))
	revoked, err = revoker.IsRevoked(ctx, token)
	assert.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := rdb.TTL(ctx, blacklistPrefix+token).Result()
	assert.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	expired := "expired-" + uuid.NewString()
	assert.NoError(t, revoker.Revoke(ctx, expired, 0))
	revoked, err = revoker.IsRevoked(ctx, expired)
	assert.NoError(t, err)
	assert.False(t, revoked)
}
