package evaluator

import (
	"context"
	"errors"
	"time"
)

// retryEvaluator retries a failed evaluation once after a short backoff.
// A pending activity stays pending across the retry, so a transient API
// failure costs the learner nothing but the wait.
type retryEvaluator struct {
	inner   Evaluator
	backoff time.Duration
}

// WithRetry wraps an Evaluator with a single retry.
func WithRetry(inner Evaluator, backoff time.Duration) Evaluator {
	return &retryEvaluator{inner: inner, backoff: backoff}
}

func (r *retryEvaluator) Evaluate(ctx context.Context, req Request) (*Verdict, error) {
	v, err := r.inner.Evaluate(ctx, req)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(r.backoff):
	}
	return r.inner.Evaluate(ctx, req)
}
