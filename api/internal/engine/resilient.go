package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

type ResilienceConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
	// Logger receives retry attempts; nil keeps fortify quiet.
	Logger *slog.Logger
}

func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		MaxAttempts: 2,
		RetryDelay:  300 * time.Millisecond,
		Timeout:     60 * time.Second,
	}
}

// Resilient retries transient failures of the wrapped engine and bounds the
// whole call, retries included, by Timeout.
type Resilient struct {
	inner Engine
	cfg   ResilienceConfig
}

func NewResilient(inner Engine, cfg ResilienceConfig) *Resilient {
	def := DefaultResilienceConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Resilient{inner: inner, cfg: cfg}
}

func (r *Resilient) Name() string     { return r.inner.Name() }
func (r *Resilient) GetModel() string { return r.inner.GetModel() }

func (r *Resilient) Complete(ctx context.Context, in Input) (string, error) {
	rt := retry.New[string](retry.Config{
		MaxAttempts:   r.cfg.MaxAttempts,
		InitialDelay:  r.cfg.RetryDelay,
		BackoffPolicy: retry.BackoffExponential,
		IsRetryable:   Retryable,
		Logger:        r.cfg.Logger,
	})
	t := timeout.New[string](timeout.Config{
		DefaultTimeout: r.cfg.Timeout,
	})

	return t.Execute(ctx, r.cfg.Timeout, func(ctx context.Context) (string, error) {
		return rt.Do(ctx, func(ctx context.Context) (string, error) {
			return r.inner.Complete(ctx, in)
		})
	})
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled) {
		return false
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Temporary()
	}
	return true
}
