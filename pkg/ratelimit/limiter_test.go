package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced wall clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestLimiter(max int, window, maxWait time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := New(max, window, maxWait,
		WithClock(clock.Now),
		WithSleeper(func(_ context.Context, d time.Duration) error {
			clock.Advance(d)
			return nil
		}),
	)
	return limiter, clock
}

func TestLimiter_AllowWithinBudget(t *testing.T) {
	limiter, _ := newTestLimiter(3, time.Minute, 0)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(), "call %d should be allowed", i+1)
		limiter.Record()
	}

	assert.False(t, limiter.Allow(), "budget should be exhausted after max calls")
}

func TestLimiter_WindowElapseResetsCount(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Minute, 0)

	limiter.Record()
	limiter.Record()
	assert.False(t, limiter.Allow())

	clock.Advance(time.Minute)

	assert.True(t, limiter.Allow(), "allow should return true after window elapses")
	assert.Equal(t, 2, limiter.Remaining(), "count should reset to zero with the window")
}

func TestLimiter_Remaining(t *testing.T) {
	limiter, _ := newTestLimiter(5, time.Minute, 0)

	assert.Equal(t, 5, limiter.Remaining())
	limiter.Record()
	limiter.Record()
	assert.Equal(t, 3, limiter.Remaining())
}

func TestLimiter_WaitSleepsUntilReset(t *testing.T) {
	limiter, clock := newTestLimiter(1, time.Minute, 0)

	limiter.Record()
	clock.Advance(10 * time.Second)

	// Budget is full; Wait should sleep out the remaining 50s and succeed.
	err := limiter.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, limiter.Allow())
}

func TestLimiter_WaitBounded(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute, 5*time.Second)

	limiter.Record()

	err := limiter.Wait(context.Background())
	assert.ErrorIs(t, err, ErrBudgetExhausted)
}

func TestLimiter_WaitNoopWhenBudgetFree(t *testing.T) {
	limiter := New(1, time.Minute, 0,
		WithClock(time.Now),
		WithSleeper(func(_ context.Context, _ time.Duration) error {
			t.Fatal("sleep should not be called when budget is free")
			return nil
		}),
	)

	require.NoError(t, limiter.Wait(context.Background()))
}

func TestLimiter_WaitCancellation(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := New(1, time.Minute, 0,
		WithClock(clock.Now),
		WithSleeper(sleepContext),
	)

	limiter.Record()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLimiter_Reset(t *testing.T) {
	limiter, _ := newTestLimiter(2, time.Minute, 0)

	limiter.Record()
	limiter.Record()
	assert.False(t, limiter.Allow())

	limiter.Reset()
	assert.True(t, limiter.Allow())
	assert.Equal(t, 2, limiter.Remaining())
}

func TestLimiter_RecordRollsExpiredWindow(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Minute, 0)

	limiter.Record()
	limiter.Record()
	clock.Advance(2 * time.Minute)

	limiter.Record()
	assert.Equal(t, 1, limiter.Remaining(), "stale window should reset before recording")
}
