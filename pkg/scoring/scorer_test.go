package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedwise/feedwise/pkg/logging"
	"github.com/feedwise/feedwise/pkg/ratelimit"
	"github.com/feedwise/feedwise/pkg/types"
)

// fakeProvider returns a canned reply or error and records call counts.
type fakeProvider struct {
	kind  types.ProviderKind
	reply string
	err   error
	calls int
}

func (p *fakeProvider) Complete(_ context.Context, _ string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *fakeProvider) Kind() types.ProviderKind { return p.kind }

func (p *fakeProvider) Name() string { return string(p.kind) }

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, _ := logging.NewLogger("scoring-test")
	t.Cleanup(func() { logger.Close() })
	return logger
}

func testLimiter() *ratelimit.Limiter {
	return ratelimit.New(1000, time.Minute, 0)
}

func testItem() types.FeedItem {
	return types.FeedItem{Title: "Complete Go Masterclass", Channel: "GoSchool"}
}

func TestScorer_PrimarySucceeds(t *testing.T) {
	cloud := &fakeProvider{kind: types.ProviderCloud, reply: "9"}
	local := &fakeProvider{kind: types.ProviderLocal, reply: "5"}

	scorer, err := New(testLimiter(), testLogger(t), cloud, local)
	require.NoError(t, err)

	result := scorer.Score(context.Background(), testItem())

	assert.True(t, result.Valid)
	assert.Equal(t, 9, result.Value)
	assert.Equal(t, types.ProviderCloud, result.Provider)
	assert.Equal(t, 0, local.calls, "fallback should not run when primary succeeds")
}

func TestScorer_FallbackToLocal(t *testing.T) {
	cloud := &fakeProvider{kind: types.ProviderCloud, err: errors.New("429 too many requests")}
	local := &fakeProvider{kind: types.ProviderLocal, reply: "8"}

	scorer, err := New(testLimiter(), testLogger(t), cloud, local)
	require.NoError(t, err)

	result := scorer.Score(context.Background(), testItem())

	assert.True(t, result.Valid)
	assert.Equal(t, 8, result.Value)
	assert.Equal(t, types.ProviderLocal, result.Provider)
	assert.Equal(t, 1, cloud.calls)
}

func TestScorer_FallbackOnUnparseableReply(t *testing.T) {
	cloud := &fakeProvider{kind: types.ProviderCloud, reply: "definitely watchable"}
	local := &fakeProvider{kind: types.ProviderLocal, reply: "6"}

	scorer, err := New(testLimiter(), testLogger(t), cloud, local)
	require.NoError(t, err)

	result := scorer.Score(context.Background(), testItem())

	assert.True(t, result.Valid)
	assert.Equal(t, 6, result.Value)
	assert.Equal(t, types.ProviderLocal, result.Provider)
}

func TestScorer_BothProvidersFail(t *testing.T) {
	cloud := &fakeProvider{kind: types.ProviderCloud, err: errors.New("timeout")}
	local := &fakeProvider{kind: types.ProviderLocal, err: errors.New("connection refused")}

	scorer, err := New(testLimiter(), testLogger(t), cloud, local)
	require.NoError(t, err)

	result := scorer.Score(context.Background(), testItem())

	assert.False(t, result.Valid)
	require.Error(t, result.Err)

	var scoreErr *Error
	assert.ErrorAs(t, result.Err, &scoreErr)
}

func TestScorer_RecordsEveryAttempt(t *testing.T) {
	cloud := &fakeProvider{kind: types.ProviderCloud, err: errors.New("boom")}
	local := &fakeProvider{kind: types.ProviderLocal, reply: "7"}
	limiter := testLimiter()

	scorer, err := New(limiter, testLogger(t), cloud, local)
	require.NoError(t, err)

	scorer.Score(context.Background(), testItem())

	assert.Equal(t, 2, scorer.Calls(), "failed attempts must count against the budget too")
	assert.Equal(t, 998, limiter.Remaining())
}

func TestScorer_BudgetExhaustedSkipsFallback(t *testing.T) {
	// One call allowed per window, already spent, with a tiny max wait so
	// Wait gives up instead of sleeping out the window.
	limiter := ratelimit.New(1, time.Hour, time.Millisecond)
	limiter.Record()

	cloud := &fakeProvider{kind: types.ProviderCloud, reply: "9"}
	local := &fakeProvider{kind: types.ProviderLocal, reply: "9"}

	scorer, err := New(limiter, testLogger(t), cloud, local)
	require.NoError(t, err)

	result := scorer.Score(context.Background(), testItem())

	assert.False(t, result.Valid)
	assert.ErrorIs(t, result.Err, ratelimit.ErrBudgetExhausted)
	assert.Equal(t, 0, cloud.calls)
	assert.Equal(t, 0, local.calls)
}

func TestScorer_RequiresProviders(t *testing.T) {
	_, err := New(testLimiter(), testLogger(t))
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testItem())

	assert.Contains(t, prompt, "Complete Go Masterclass")
	assert.Contains(t, prompt, "GoSchool")
	assert.Contains(t, prompt, "Respond with just a number 1-10")
}
