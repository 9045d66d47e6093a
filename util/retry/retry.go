// Package retry repeats a failing operation with a linear or capped exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/chetch/services/errors"
	"github.com/chetch/services/ulogger"
)

type options struct {
	retryCount          int
	backoffMultiplier   int
	backoffDurationType time.Duration
	exponential         bool
	backoffFactor       float64
	maxBackoff          time.Duration
	message             string
}

type Option func(*options)

func WithRetryCount(n int) Option {
	return func(o *options) {
		o.retryCount = n
	}
}

func WithBackoffMultiplier(m int) Option {
	return func(o *options) {
		o.backoffMultiplier = m
	}
}

func WithBackoffDurationType(d time.Duration) Option {
	return func(o *options) {
		o.backoffDurationType = d
	}
}

// WithExponentialBackoff starts at the backoff duration type and multiplies it by the backoff
// factor after every failed attempt, up to the max backoff.
func WithExponentialBackoff() Option {
	return func(o *options) {
		o.exponential = true
	}
}

func WithBackoffFactor(f float64) Option {
	return func(o *options) {
		o.backoffFactor = f
	}
}

func WithMaxBackoff(d time.Duration) Option {
	return func(o *options) {
		o.maxBackoff = d
	}
}

// WithMessage is logged at warn level with the attempt number after every failed attempt.
func WithMessage(msg string) Option {
	return func(o *options) {
		o.message = msg
	}
}

// Retry calls f until it succeeds, the attempts are used up or ctx is done. The error of the last
// attempt is returned.
func Retry[T any](ctx context.Context, logger ulogger.Logger, f func() (T, error), opts ...Option) (T, error) {
	o := &options{
		retryCount:          3,
		backoffMultiplier:   2,
		backoffDurationType: time.Second,
		backoffFactor:       2.0,
		maxBackoff:          30 * time.Second,
		message:             "retrying",
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.retryCount < 1 {
		o.retryCount = 1
	}

	var (
		result T
		err    error
	)

	backoff := o.backoffDurationType

	for i := 0; i < o.retryCount; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, errors.NewContextCanceledError("%s: stopped after %d attempts", o.message, i, ctxErr)
		}

		result, err = f()
		if err == nil {
			return result, nil
		}

		if i == o.retryCount-1 {
			break
		}

		logger.Warnf("%s (attempt %d of %d): %v", o.message, i+1, o.retryCount, err)

		var sleepErr error

		if o.exponential {
			sleepErr = sleepFunc(ctx, backoff)
			backoff = CappedExponentialBackoff(backoff, o.backoffFactor, o.maxBackoff)
		} else {
			sleepErr = BackoffAndSleep(ctx, i, o.backoffMultiplier, o.backoffDurationType)
		}

		if sleepErr != nil {
			return result, errors.NewContextCanceledError("%s: stopped after %d attempts", o.message, i+1, sleepErr)
		}
	}

	return result, err
}
