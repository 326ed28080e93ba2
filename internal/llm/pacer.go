package llm

import (
	"context"
	"time"

	"github.com/joseph-ayodele/specs-importer/internal/common"
	"golang.org/x/time/rate"
)

// NewPacer returns a limiter allowing requestsPerMinute calls, one at a time.
// A non-positive rate disables pacing.
func NewPacer(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// Wait blocks until the pacer allows another request. A nil pacer never blocks.
func Wait(ctx context.Context, pacer *rate.Limiter) error {
	if pacer == nil {
		return nil
	}
	if err := pacer.Wait(ctx); err != nil {
		return common.NewTransportError("rate limiter wait", err)
	}
	return nil
}
