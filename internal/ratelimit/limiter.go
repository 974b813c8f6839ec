package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Result is the outcome of a rate-limit check. Error carries an
// explanation when the limiter could not actually enforce anything.
type Result struct {
	Success   bool
	Remaining int64
	Error     string
}

// Limiter bounds request frequency per identifier with a Redis-backed
// sliding window. The limiter is a soft protection: without a backend,
// or when the backend fails, checks succeed rather than block traffic.
type Limiter struct {
	client  *redis.Client
	purpose string
	max     int64
	window  time.Duration
	logger  *zap.Logger
}

// New builds a purpose-scoped limiter. Distinct purposes keep
// independent counters for the same identifier. client may be nil.
func New(client *redis.Client, purpose string, max int, window time.Duration, logger *zap.Logger) *Limiter {
	return &Limiter{
		client:  client,
		purpose: purpose,
		max:     int64(max),
		window:  window,
		logger:  logger,
	}
}

// Check counts recent requests for the identifier inside the trailing
// window and admits the request if the permitted count is not yet
// exhausted. Prune, add and count run in one transaction, so
// concurrent checks at the window boundary cannot admit more than max;
// a denied check removes its own entry and does not consume quota. A
// nil limiter or nil backend always admits.
func (l *Limiter) Check(ctx context.Context, identifier string) Result {
	if l == nil || l.client == nil {
		return Result{Success: true, Error: "Rate limiting not configured"}
	}

	now := time.Now()
	key := fmt.Sprintf("rl:%s:%s", l.purpose, identifier)
	cutoff := strconv.FormatInt(now.Add(-l.window).UnixNano(), 10)
	member := uuid.NewString()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", cutoff)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("rate limiter backend unavailable",
			zap.String("purpose", l.purpose), zap.Error(err))
		return Result{Success: true, Error: "rate limiter unavailable"}
	}

	// count includes the entry added above.
	if count.Val() > l.max {
		_ = l.client.ZRem(ctx, key, member).Err()
		return Result{Success: false, Remaining: 0}
	}
	return Result{Success: true, Remaining: l.max - count.Val()}
}
