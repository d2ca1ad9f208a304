package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/basil51/ai-school-sub003/internal/logger"
	"github.com/basil51/ai-school-sub003/internal/metrics"
)

// RetryProvider repeats failed calls that Retryable accepts, backing off
// exponentially with ±20% jitter. Invalid content is repeated at most once
// per call.
type RetryProvider struct {
	inner   Provider
	config  RetryConfig
	log     *logger.Logger
	metrics *metrics.Metrics
}

// WithRetry wraps p. log and m may be nil.
func WithRetry(p Provider, cfg RetryConfig, log *logger.Logger, m *metrics.Metrics) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg, log: logger.OrNop(log), metrics: m}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	repeatedInvalid := false

	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt >= r.config.MaxAttempts || !Retryable(err) {
			return nil, err
		}
		var inv *ErrInvalidResponse
		if errors.As(err, &inv) {
			if repeatedInvalid {
				return nil, err
			}
			repeatedInvalid = true
		}

		wait := r.wait(attempt, err)
		reason := retryReason(err)
		r.metrics.LLMRetry(purpose, reason)
		r.log.Warn("retrying generation",
			"purpose", purpose,
			"attempt", attempt,
			"reason", reason,
			"wait", wait,
			"error", err,
		)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

// wait returns the pause after the given 1-based attempt. A rate limit
// that names its own delay wins.
func (r *RetryProvider) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	d := float64(r.config.InitialWait)
	for i := 1; i < attempt; i++ {
		d *= r.config.Multiplier
	}
	if ceiling := float64(r.config.MaxWait); ceiling > 0 && d > ceiling {
		d = ceiling
	}
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(d)
}
