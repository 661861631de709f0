package trajectory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RRGSentinel/internal/calculator"
	"RRGSentinel/internal/model"
)

func TestWindowRequest_Validate(t *testing.T) {
	assert.NoError(t, TailRequest(3).Validate())
	assert.NoError(t, RangeRequest(d(1), d(5)).Validate())
	assert.ErrorIs(t, TailRequest(-1).Validate(), calculator.ErrInvalidParameter)
	assert.ErrorIs(t, WindowRequest{}.Validate(), calculator.ErrInvalidParameter)
	assert.ErrorIs(t, RangeRequest(d(5), d(1)).Validate(), calculator.ErrInvalidParameter)
}

func TestWindowRequest_Apply(t *testing.T) {
	all := days(1, 10)
	assert.Equal(t, days(8, 10), TailRequest(3).Apply(all))
	assert.Equal(t, all, TailRequest(30).Apply(all))
	assert.Equal(t, days(3, 5), RangeRequest(d(3), d(5)).Apply(all))
	assert.Equal(t, days(4, 5), WindowRequest{TailCount: 2, From: d(3), To: d(5)}.Apply(all))
	assert.Empty(t, RangeRequest(d(20), d(25)).Apply(all))
}

func TestSelector_TailFromFreshDates(t *testing.T) {
	s := NewStore()
	s.Update("AAA", traj("AAA", days(1, 10)...))
	sel := NewSelector(s)

	got, err := sel.Select(TailRequest(3), true)
	require.NoError(t, err)
	assert.Equal(t, days(8, 10), got.Dates)
	assert.Equal(t, model.WindowSourceFresh, got.Source)
}

func TestSelector_EmptyCycleFallsBackToStoredDates(t *testing.T) {
	s := NewStore()
	s.Update("AAA", traj("AAA", days(1, 10)...))
	sel := NewSelector(s)

	// the current cycle produced nothing and the empty update is a no-op
	s.Update("AAA", nil)
	got, err := sel.Select(TailRequest(3), false)
	require.NoError(t, err)
	assert.Equal(t, days(8, 10), got.Dates)
	assert.Equal(t, model.WindowSourceStored, got.Source)
}

func TestSelector_EmptyCycleServesStoredTailForNewRequest(t *testing.T) {
	s := NewStore()
	s.Update("AAA", traj("AAA", days(1, 10)...))
	sel := NewSelector(s)

	first, err := sel.Select(TailRequest(3), true)
	require.NoError(t, err)
	require.Equal(t, days(8, 10), first.Dates)

	// a longer tail asked for during a cycle that produced nothing
	got, err := sel.Select(TailRequest(5), false)
	require.NoError(t, err)
	assert.Equal(t, days(6, 10), got.Dates)
	assert.Equal(t, model.WindowSourceStored, got.Source)

	// a range lifted the same way
	_, err = sel.Select(RangeRequest(d(2), d(4)), true)
	require.NoError(t, err)
	got, err = sel.Select(TailRequest(2), false)
	require.NoError(t, err)
	assert.Equal(t, days(9, 10), got.Dates)
}

func TestSelector_LaggingSecurityDoesNotShortenWindow(t *testing.T) {
	s := NewStore()
	s.Update("AAA", traj("AAA", days(1, 10)...))
	s.Update("BBB", traj("BBB", days(1, 9)...))
	sel := NewSelector(s)

	got, err := sel.Select(TailRequest(3), true)
	require.NoError(t, err)
	assert.Equal(t, days(8, 10), got.Dates)
	assert.Equal(t, model.WindowSourceFresh, got.Source)
}

func TestSelector_NeverEmptyOnceDatesExist(t *testing.T) {
	s := NewStore()
	s.Update("AAA", traj("AAA", days(1, 10)...))
	sel := NewSelector(s)

	got, err := sel.Select(RangeRequest(d(20), d(25)), false)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d(10)}, got.Dates)
	assert.Equal(t, model.WindowSourceLatest, got.Source)
}

func TestSelector_NoDataEver(t *testing.T) {
	sel := NewSelector(NewStore())
	got, err := sel.Select(TailRequest(8), false)
	require.NoError(t, err)
	assert.Empty(t, got.Dates)
	assert.Equal(t, model.WindowSourceNone, got.Source)
	_, ok := got.Latest()
	assert.False(t, ok)
}

func TestSelector_InvalidRequest(t *testing.T) {
	sel := NewSelector(NewStore())
	_, err := sel.Select(TailRequest(-2), true)
	assert.ErrorIs(t, err, calculator.ErrInvalidParameter)
}

func TestSelector_ResetForgetsServedWindow(t *testing.T) {
	s := NewStore()
	sel := NewSelector(s)
	s.Update("AAA", traj("AAA", days(1, 4)...))
	_, err := sel.Select(TailRequest(2), true)
	require.NoError(t, err)
	require.Equal(t, days(3, 4), sel.LastServed())

	s.Reset()
	sel.Reset()
	got, err := sel.Select(TailRequest(2), false)
	require.NoError(t, err)
	assert.Empty(t, got.Dates)
	assert.Empty(t, sel.LastServed())
}

func TestHorizonRequest(t *testing.T) {
	latest := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	req := HorizonRequest(model.TimeframeDaily, latest)
	assert.Equal(t, latest.AddDate(0, 0, -180), req.From)
	assert.Equal(t, latest, req.To)

	weekly := HorizonRequest(model.TimeframeWeekly, latest)
	assert.Equal(t, latest.AddDate(0, 0, -365), weekly.From)
}
