package ai

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
)

// RetryPolicy bounds the completion client's retry loop.
// Delay for attempt n is min(InitialDelay * 2^n, MaxDelay).
type RetryPolicy struct {
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	AttemptTimeout time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     3,
		InitialDelay:   time.Second,
		MaxDelay:       10 * time.Second,
		AttemptTimeout: 30 * time.Second,
	}
}

// Client executes completions against one provider/model pair with retry,
// exponential backoff and a per-attempt timeout. This is the only layer in
// the pipeline that retries anything.
type Client struct {
	provider CompletionProvider
	model    string
	policy   RetryPolicy
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewClient(provider CompletionProvider, model string, policy RetryPolicy) *Client {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = time.Second
	}
	if policy.MaxDelay < policy.InitialDelay {
		policy.MaxDelay = policy.InitialDelay
	}
	return &Client{
		provider: provider,
		model:    model,
		policy:   policy,
		sleep:    sleepCtx,
	}
}

func (c *Client) Model() string {
	return c.model
}

// Complete runs up to MaxRetries+1 attempts. A timed-out attempt counts
// like any other retryable failure; non-retryable errors fail immediately.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("provider", c.provider.Name()), zap.String("model", c.model))
	var lastErr error
	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		result, err := c.attempt(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if !retryable(err) {
			logger.Warn("completion failed, not retryable", zap.Int("attempt", attempt+1), zap.Error(err))
			return nil, err
		}
		if attempt == c.policy.MaxRetries {
			break
		}
		delay := c.backoffDelay(attempt)
		logger.Warn("completion failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}
	return nil, &completionError{cause: lastErr}
}

// CompleteStream produces fragments in upstream emission order. Streaming
// never retries; consumers cancel by abandoning the channel or the context.
func (c *Client) CompleteStream(ctx context.Context, req CompletionRequest) (<-chan StreamDelta, error) {
	return c.provider.CompleteStream(ctx, c.model, req)
}

func (c *Client) attempt(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if c.policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.policy.AttemptTimeout)
		defer cancel()
	}
	return c.provider.Complete(ctx, c.model, req)
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.policy.InitialDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= c.policy.MaxDelay {
			return c.policy.MaxDelay
		}
	}
	if delay > c.policy.MaxDelay {
		return c.policy.MaxDelay
	}
	return delay
}

type completionError struct {
	cause error
}

func (e *completionError) Error() string {
	if e.cause == nil {
		return appErr.ErrCompletion.Error()
	}
	return appErr.ErrCompletion.Error() + ": " + e.cause.Error()
}

func (e *completionError) Unwrap() []error {
	return []error{appErr.ErrCompletion, e.cause}
}

// retryable reports whether an attempt failure is worth repeating:
// rate limits, upstream 5xx, and transient network failures. Everything
// else (other 4xx, malformed responses) fails the call immediately.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		status := statusErr.StatusCode()
		return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"connection reset", "connection refused", "broken pipe", "timeout", "temporarily unavailable"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
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
