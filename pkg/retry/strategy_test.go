package retry

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/code-payments/echo-client/pkg/retry/backoff"
)

func TestLimit(t *testing.T) {
	strategy := Limit(3)
	assert.True(t, strategy(1, errTransient))
	assert.True(t, strategy(2, errTransient))
	assert.False(t, strategy(3, errTransient))
}

func TestRetriableErrors(t *testing.T) {
	other := errors.New("other")
	strategy := RetriableErrors(errTransient, other)

	assert.True(t, strategy(1, errTransient))
	assert.True(t, strategy(1, errors.Wrap(other, "wrapped")))
	assert.False(t, strategy(1, errors.New("unexpected")))
}

func TestBackoff_Capped(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts
	strategy := Backoff(backoff.BinaryExponential(100*time.Millisecond), 300*time.Millisecond)

	for i := uint(1); i <= 4; i++ {
		assert.True(t, strategy(i, errTransient))
	}
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
		300 * time.Millisecond,
	}, ts.sleepTimes)
}

func TestBackoffWithJitter(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts
	delay := time.Millisecond
	strategy := BackoffWithJitter(backoff.Constant(delay), delay, 0.1)

	for i := 0; i < 10000; i++ {
		assert.True(t, strategy(1, errTransient))
	}

	for _, d := range ts.sleepTimes {
		assert.InDelta(t, float64(delay), float64(d), 0.1*float64(delay)+1)
	}
	assert.InDelta(t, float64(delay), float64(ts.Mean()), 0.01*float64(delay))
}

func TestContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int
	attempts, err := Retry(
		func() error {
			calls++
			if calls == 3 {
				cancel()
			}
			return errTransient
		},
		Context(ctx),
		RetriableErrors(errTransient),
	)
	assert.Equal(t, errTransient, err)
	assert.EqualValues(t, 3, attempts)
	assert.False(t, Context(ctx)(1, errTransient))
}

type testSleeper struct {
	sleepTimes []time.Duration
}

func (t *testSleeper) Sleep(d time.Duration) {
	t.sleepTimes = append(t.sleepTimes, d)
}

func (t *testSleeper) Mean() time.Duration {
	var total float64
	for _, d := range t.sleepTimes {
		total += float64(d)
	}
	return time.Duration(math.Round(total / float64(len(t.sleepTimes))))
}
