package recorder

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RRGSentinel/internal/model"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "rrg.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func testSnapshot(id string, seq uint64) *model.Snapshot {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 7)
	return &model.Snapshot{
		CycleID:     id,
		Sequence:    seq,
		Benchmark:   model.SecurityRef{ID: "^NSEI", Label: "NIFTY 50"},
		Timeframe:   model.TimeframeWeekly,
		TailCount:   2,
		GeneratedAt: d2.Add(18 * time.Hour),
		Dates:       []time.Time{d1, d2},
		Source:      model.WindowSourceFresh,
		Trajectories: []*model.Trajectory{{
			SecurityID: "^CNXIT",
			Label:      "NIFTY IT",
			Points: []model.TrajectoryPoint{
				{Date: d1, RSRatio: 101.2, RSMomentum: 99.1, Quadrant: model.QuadrantWeakening},
				{Date: d2, RSRatio: 101.5, RSMomentum: 100.4, Quadrant: model.QuadrantLeading},
			},
		}},
		Statuses: []model.SecurityStatus{
			{SecurityID: "^CNXIT", Label: "NIFTY IT", OK: true},
			{SecurityID: "NEW", Label: "NEW", Reason: "insufficient_history", Err: errors.New("only 12 dates")},
		},
	}
}

func count(t *testing.T, r *SQLiteRecorder, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, r.db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestSQLiteRecorder_RecordCycle(t *testing.T) {
	r := newTestRecorder(t)
	require.NoError(t, r.RecordCycle(testSnapshot("c-1", 1)))

	assert.Equal(t, 1, count(t, r, `SELECT COUNT(*) FROM cycles`))
	assert.Equal(t, 2, count(t, r, `SELECT COUNT(*) FROM security_status WHERE cycle_id = ?`, "c-1"))
	assert.Equal(t, 2, count(t, r, `SELECT COUNT(*) FROM trajectory_points WHERE security_id = ?`, "^CNXIT"))
	assert.Equal(t, 1, count(t, r, `SELECT COUNT(*) FROM security_status WHERE ok = 0 AND reason = ?`, "insufficient_history"))

	var detail string
	require.NoError(t, r.db.QueryRow(`SELECT detail FROM security_status WHERE security_id = 'NEW'`).Scan(&detail))
	assert.Equal(t, "only 12 dates", detail)
}

func TestSQLiteRecorder_DuplicateCycleRollsBack(t *testing.T) {
	r := newTestRecorder(t)
	require.NoError(t, r.RecordCycle(testSnapshot("c-1", 1)))
	assert.Error(t, r.RecordCycle(testSnapshot("c-1", 2)))

	assert.Equal(t, 1, count(t, r, `SELECT COUNT(*) FROM cycles`))
	assert.Equal(t, 2, count(t, r, `SELECT COUNT(*) FROM security_status`))
}

func TestSQLiteRecorder_RecentCycles(t *testing.T) {
	r := newTestRecorder(t)
	require.NoError(t, r.RecordCycle(testSnapshot("c-1", 1)))
	require.NoError(t, r.RecordCycle(testSnapshot("c-2", 2)))

	got, err := r.RecentCycles(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c-2", got[0].CycleID)
	assert.Equal(t, uint64(2), got[0].Sequence)
	assert.Equal(t, "^NSEI", got[0].Benchmark)
	assert.Equal(t, model.TimeframeWeekly, got[0].Timeframe)
	assert.Equal(t, model.WindowSourceFresh, got[0].Source)
	assert.Equal(t, 1, got[0].OK)
	assert.Equal(t, 1, got[0].Excluded)
	assert.Equal(t, 2, got[0].Dates)
}

func TestSQLiteRecorder_EmptyWindow(t *testing.T) {
	r := newTestRecorder(t)
	snap := testSnapshot("c-empty", 1)
	snap.Dates = nil
	snap.Trajectories = nil
	snap.Source = model.WindowSourceNone
	require.NoError(t, r.RecordCycle(snap))

	assert.Equal(t, 1, count(t, r, `SELECT COUNT(*) FROM cycles WHERE window_start IS NULL`))
}

func TestSQLiteRecorder_RecordReset(t *testing.T) {
	r := newTestRecorder(t)
	require.NoError(t, r.RecordReset(&ResetEvent{Reason: "benchmark", Benchmark: "^NSEI", Timeframe: model.TimeframeWeekly, DatesDropped: 40}))
	assert.Equal(t, 1, count(t, r, `SELECT COUNT(*) FROM store_resets WHERE dates_dropped = 40`))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordCycle(testSnapshot("x", 1)))
	got, err := r.RecentCycles(5)
	assert.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, r.Close())
}
