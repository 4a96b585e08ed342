package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checkmate-agent/internal/application/port/output"
)

// RetryPolicy describes how to walk an ordered model list when the provider
// rate limits. Models[0] is the preferred model; each subsequent entry is the
// fallback for the one before it.
type RetryPolicy struct {
	Models  []string
	Backoff time.Duration
}

func DefaultRetryPolicy(models ...string) RetryPolicy {
	return RetryPolicy{Models: models, Backoff: 2 * time.Second}
}

var _ output.LLMPort = (*Retrier)(nil)

// Retrier wraps a provider adapter with the fall-through behaviour. A request
// that already pins a model bypasses the list.
type Retrier struct {
	inner  output.LLMPort
	policy RetryPolicy
	logger output.LoggerPort
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewRetrier(inner output.LLMPort, policy RetryPolicy, logger output.LoggerPort) *Retrier {
	return &Retrier{
		inner:  inner,
		policy: policy,
		logger: logger,
		sleep:  sleepCtx,
	}
}

func (r *Retrier) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	if req.Model != "" || len(r.policy.Models) == 0 {
		return r.inner.Chat(ctx, req)
	}

	var lastErr error
	for i, model := range r.policy.Models {
		if i > 0 {
			r.logger.Warn("Falling back to next model", "model", model, "attempt", i)
			if err := r.sleep(ctx, r.policy.Backoff); err != nil {
				return nil, err
			}
		}

		attempt := req
		attempt.Model = model
		resp, err := r.inner.Chat(ctx, attempt)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all models exhausted: %w", lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
