package catalog

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-faster/errors"
)

// RetryConfig controls how a Source is retried.
type RetryConfig struct {
	// Attempts is the total number of tries; values below 1 mean one try.
	Attempts int
	// Timeout bounds each individual try. Zero disables the bound.
	Timeout time.Duration
	// InitialInterval is the first backoff delay. Zero uses the backoff default.
	InitialInterval time.Duration
}

// retrySource retries LoadErrors with exponential backoff.
type retrySource struct {
	src Source
	cfg RetryConfig
}

// WithRetry wraps src so that *LoadError failures are retried. Format errors
// are returned immediately since retrying cannot fix a malformed document.
func WithRetry(src Source, cfg RetryConfig) Source {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &retrySource{src: src, cfg: cfg}
}

func (r *retrySource) Load(ctx context.Context) (*Catalog, error) {
	b := backoff.NewExponentialBackOff()
	if r.cfg.InitialInterval > 0 {
		b.InitialInterval = r.cfg.InitialInterval
	}

	return backoff.Retry(ctx, func() (*Catalog, error) {
		c, err := r.loadOnce(ctx)
		if err != nil {
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return c, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.cfg.Attempts)),
	)
}

func (r *retrySource) loadOnce(ctx context.Context) (*Catalog, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	return r.src.Load(ctx)
}
