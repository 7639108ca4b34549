package infrastructure

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// RetryOptions configures exponential backoff for startup connections
type RetryOptions struct {
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint64
}

// StartupRetryOptions waits up to a minute for dependencies that start alongside the service
func StartupRetryOptions() RetryOptions {
	return RetryOptions{
		MaxElapsedTime:  time.Minute,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		MaxRetries:      10,
	}
}

// WithRetry runs operation until it succeeds, the options are exhausted or ctx is done
func WithRetry[T any](ctx context.Context, name string, operation func(context.Context) (T, error), opts RetryOptions) (T, error) {
	var result T

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(opts.MaxElapsedTime),
		backoff.WithInitialInterval(opts.InitialInterval),
		backoff.WithMaxInterval(opts.MaxInterval),
	), opts.MaxRetries)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		var err error
		result, err = operation(ctx)
		if err != nil {
			log.WithFields(log.Fields{
				"dependency": name,
				"attempt":    attempt,
				"error":      err,
			}).Warn("Connection attempt failed")
		}
		return err
	}, backoff.WithContext(b, ctx))
	return result, err
}
