package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitService_CheckLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("under limit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		svc := NewRateLimitService(client)

		mock.ExpectIncr("rate_limit:user:7").SetVal(3)
		mock.ExpectExpireNX("rate_limit:user:7", time.Minute).SetVal(false)

		allowed, count, retry, err := svc.CheckLimit(ctx, "user:7", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, int64(3), count)
		assert.Zero(t, retry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("over limit reports ttl", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		svc := NewRateLimitService(client)

		mock.ExpectIncr("rate_limit:user:7").SetVal(6)
		mock.ExpectExpireNX("rate_limit:user:7", time.Minute).SetVal(false)
		mock.ExpectTTL("rate_limit:user:7").SetVal(42 * time.Second)

		allowed, _, retry, err := svc.CheckLimit(ctx, "user:7", 5, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, 42*time.Second, retry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		svc := NewRateLimitService(client)

		mock.ExpectIncr("rate_limit:user:7").SetErr(errors.New("connection refused"))

		_, _, _, err := svc.CheckLimit(ctx, "user:7", 5, time.Minute)
		assert.Error(t, err)
	})
}
