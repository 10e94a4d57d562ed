package summarizer

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultRateLimit is the QPS applied when no limit is configured.
const DefaultRateLimit = 10

// RateLimiter caps outbound LLM calls across all analyze workers so
// concurrent batches share one provider quota.
type RateLimiter struct {
	limiter *rate.Limiter
}

func NewRateLimiter(qps int) *RateLimiter {
	if qps <= 0 {
		qps = DefaultRateLimit
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(qps), qps)}
}

// Wait blocks until a call slot is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
