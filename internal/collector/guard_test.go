package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RRGSentinel/internal/model"
)

func TestGuardedFetcher_PassesThrough(t *testing.T) {
	mock := &MockFetcher{End: jan(26)}
	g := NewGuardedFetcher(mock, GuardOptions{RatePerSecond: 1000, Burst: 10})

	bars, err := g.FetchBars(context.Background(), "AAA", model.TimeframeWeekly, 12)
	require.NoError(t, err)
	assert.Len(t, bars, 12)
	assert.Equal(t, "mock", g.Name())
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestGuardedFetcher_OpensAfterConsecutiveFailures(t *testing.T) {
	mock := &MockFetcher{Errors: map[string]error{"BAD": ErrMockFailure}}
	g := NewGuardedFetcher(mock, GuardOptions{
		RatePerSecond:   1000,
		Burst:           10,
		BreakerFailures: 2,
		BreakerTimeout:  time.Hour,
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := g.FetchBars(ctx, "BAD", model.TimeframeWeekly, 10)
		assert.ErrorIs(t, err, ErrMockFailure)
	}
	assert.Equal(t, gobreaker.StateOpen, g.State())

	_, err := g.FetchBars(ctx, "GOOD", model.TimeframeWeekly, 10)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int64(2), mock.Calls())
}

func TestGuardedFetcher_CancellationDoesNotTrip(t *testing.T) {
	mock := &MockFetcher{}
	g := NewGuardedFetcher(mock, GuardOptions{RatePerSecond: 1000, Burst: 10, BreakerFailures: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.FetchBars(ctx, "AAA", model.TimeframeWeekly, 10)
	assert.Error(t, err)
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestGuardedFetcher_WrappedCancellationDoesNotTrip(t *testing.T) {
	mock := &MockFetcher{Errors: map[string]error{
		"AAA": fmt.Errorf("yahoo: %w", &url.Error{Op: "Get", URL: "http://example.invalid", Err: context.Canceled}),
		"BBB": fmt.Errorf("vstrader: %w", context.DeadlineExceeded),
	}}
	g := NewGuardedFetcher(mock, GuardOptions{RatePerSecond: 1000, Burst: 10, BreakerFailures: 1, BreakerTimeout: time.Hour})
	ctx := context.Background()

	_, err := g.FetchBars(ctx, "AAA", model.TimeframeWeekly, 10)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = g.FetchBars(ctx, "BBB", model.TimeframeWeekly, 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, err = g.FetchBars(ctx, "AAA", model.TimeframeWeekly, 10)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, gobreaker.StateClosed, g.State())
	assert.Equal(t, int64(3), mock.Calls())
}
