// internal/notify/ratelimit.go
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitWindow is the sliding window granularity. Counters expire an
// hour after the first send to a recipient.
const rateLimitWindow = time.Hour

// RateLimiter caps notifications per recipient per hour using a Redis
// counter. A Redis failure fails open.
type RateLimiter struct {
	client *redis.Client
	limit  int
}

func NewRateLimiter(client *redis.Client, perRecipientPerHour int) *RateLimiter {
	return &RateLimiter{client: client, limit: perRecipientPerHour}
}

// Allow reports whether one more notification may be sent to the
// recipient within the current window.
func (r *RateLimiter) Allow(ctx context.Context, recipient string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("notify:rate:%s", recipient)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
			return true, err
		}
	}
	return count <= int64(r.limit), nil
}
