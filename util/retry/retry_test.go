package retry

import (
	"context"
	"testing"
	"time"

	"github.com/chetch/services/errors"
	"github.com/chetch/services/util/test/mocklogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSleeps(t *testing.T) *[]time.Duration {
	t.Helper()

	var slept []time.Duration

	original := sleepFunc
	sleepFunc = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}

	t.Cleanup(func() { sleepFunc = original })

	return &slept
}

func TestRetrySucceedsFirstTime(t *testing.T) {
	logger := mocklogger.NewTestLogger()
	slept := recordSleeps(t)

	result, err := Retry(context.Background(), logger, func() (string, error) {
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Empty(t, *slept)
	logger.AssertNumberOfCalls(t, "Warnf", 0)
}

func TestRetryLinearBackoff(t *testing.T) {
	logger := mocklogger.NewTestLogger()
	slept := recordSleeps(t)

	calls := 0

	result, err := Retry(context.Background(), logger, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.NewProcessingError("not yet")
		}

		return calls, nil
	}, WithRetryCount(5), WithBackoffMultiplier(2), WithBackoffDurationType(time.Millisecond), WithMessage("Trying again"))

	require.NoError(t, err)
	assert.Equal(t, 3, result)
	assert.Equal(t, []time.Duration{time.Millisecond, 3 * time.Millisecond}, *slept)
	logger.AssertNumberOfCalls(t, "Warnf", 2)
	assert.Contains(t, logger.Entries()[0].Message, "Trying again (attempt 1 of 5)")
}

func TestRetryExponentialBackoffIsCapped(t *testing.T) {
	logger := mocklogger.NewTestLogger()
	slept := recordSleeps(t)

	_, err := Retry(context.Background(), logger, func() (string, error) {
		return "", errors.NewProcessingError("persistent error")
	},
		WithRetryCount(5),
		WithExponentialBackoff(),
		WithBackoffDurationType(50*time.Millisecond),
		WithBackoffFactor(2.0),
		WithMaxBackoff(150*time.Millisecond))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrProcessing))
	assert.Equal(t, []time.Duration{
		50 * time.Millisecond,
		100 * time.Millisecond,
		150 * time.Millisecond,
		150 * time.Millisecond,
	}, *slept)
}

func TestRetryStopsWhenContextDone(t *testing.T) {
	logger := mocklogger.NewTestLogger()
	_ = recordSleeps(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0

	_, err := Retry(ctx, logger, func() (string, error) {
		calls++
		return "", errors.NewProcessingError("error")
	})

	require.Error(t, err)
	assert.Equal(t, 0, calls)
	assert.True(t, errors.IsCancellation(err))
}

func TestBackoffAndSleep(t *testing.T) {
	slept := recordSleeps(t)

	require.NoError(t, BackoffAndSleep(context.Background(), 2, 3, time.Millisecond))
	assert.Equal(t, []time.Duration{7 * time.Millisecond}, *slept)
}

func TestCappedExponentialBackoff(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, CappedExponentialBackoff(100*time.Millisecond, 2.0, time.Second))
	assert.Equal(t, time.Second, CappedExponentialBackoff(800*time.Millisecond, 2.0, time.Second))
}
