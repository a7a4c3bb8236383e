// internal/notify/ratelimit_test.go
package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, 3)

	mock.ExpectIncr("notify:rate:guardian@example.com").SetVal(1)
	mock.ExpectExpire("notify:rate:guardian@example.com", time.Hour).SetVal(true)

	allowed, err := limiter.Allow(context.Background(), "guardian@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, 3)

	mock.ExpectIncr("notify:rate:guardian@example.com").SetVal(4)

	allowed, err := limiter.Allow(context.Background(), "guardian@example.com")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRateLimiter_FailsOpenOnRedisError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, 3)

	mock.ExpectIncr("notify:rate:guardian@example.com").SetErr(fmt.Errorf("connection refused"))

	allowed, err := limiter.Allow(context.Background(), "guardian@example.com")
	require.Error(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_ZeroLimitDisablesLimiting(t *testing.T) {
	client, _ := redismock.NewClientMock()
	limiter := NewRateLimiter(client, 0)

	allowed, err := limiter.Allow(context.Background(), "guardian@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}
