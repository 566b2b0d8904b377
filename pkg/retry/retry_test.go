package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/echo-client/pkg/retry/backoff"
)

var errTransient = errors.New("transient")

func TestRetry_SucceedsAfterTransientErrors(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts

	var calls int
	attempts, err := Retry(
		func() error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		},
		RetriableErrors(errTransient),
		Backoff(backoff.BinaryExponential(time.Millisecond), time.Second),
	)
	require.NoError(t, err)
	assert.EqualValues(t, 3, attempts)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, ts.sleepTimes)
}

func TestRetrier(t *testing.T) {
	sleeperImpl = &testSleeper{}
	r := NewRetrier(Limit(4), RetriableErrors(errTransient))

	attempts, err := r.Retry(func() error { return nil })
	assert.NoError(t, err)
	assert.EqualValues(t, 1, attempts)

	// Unknown errors are returned immediately
	attempts, err = r.Retry(func() error { return errors.New("fatal") })
	assert.EqualError(t, err, "fatal")
	assert.EqualValues(t, 1, attempts)

	attempts, err = r.Retry(func() error { return errTransient })
	assert.Equal(t, errTransient, err)
	assert.EqualValues(t, 4, attempts)
}

func TestRealSleeper(t *testing.T) {
	sleeperImpl = &realSleeper{}

	start := time.Now()
	attempts, err := Retry(func() error { return errTransient },
		Limit(2),
		Backoff(backoff.Constant(200*time.Millisecond), time.Second),
	)
	elapsed := time.Since(start)

	assert.Error(t, err)
	assert.EqualValues(t, 2, attempts)
	assert.True(t, elapsed >= 200*time.Millisecond)
	assert.True(t, elapsed < time.Second)
}
