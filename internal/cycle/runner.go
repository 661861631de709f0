// Package cycle runs one fetch, compute, store, select and publish pass.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"RRGSentinel/internal/calculator"
	"RRGSentinel/internal/collector"
	"RRGSentinel/internal/model"
	"RRGSentinel/internal/observability"
	"RRGSentinel/internal/recorder"
	"RRGSentinel/internal/rotation"
	"RRGSentinel/internal/session"
	"RRGSentinel/internal/trajectory"
)

// ErrSuperseded is returned by Run when a newer request already published.
var ErrSuperseded = errors.New("cycle superseded by a newer request")

// Request asks for one cycle. A zero Selection reuses the session's current
// selection; a nil Cutoff uses the session's cutoff.
type Request struct {
	Selection session.Selection
	Cutoff    *time.Time
	Trigger   string // "cron", "command", "cli"
	// Frames adds animation frames over the slider horizon.
	Frames bool
}

// Options configure a Runner.
type Options struct {
	Fetcher     collector.Fetcher
	Periods     int
	Concurrency int
	Session     *session.Manager
	Sink        Sink
	Recorder    recorder.Recorder
	Metrics     *observability.Metrics
	Now         func() time.Time
}

// Runner owns the trajectory store and serialises cycles against it.
type Runner struct {
	opts     Options
	store    *trajectory.Store
	selector *trajectory.Selector

	mu        sync.Mutex // one cycle at a time
	seq       atomic.Uint64
	published atomic.Uint64
}

// NewRunner creates a Runner with an empty store.
func NewRunner(opts Options) *Runner {
	if opts.Sink == nil {
		opts.Sink = LogSink{}
	}
	if opts.Recorder == nil {
		opts.Recorder = recorder.NewNoopRecorder()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Periods <= 0 {
		opts.Periods = 200
	}
	if opts.Session == nil {
		// In-memory managers cannot fail to load.
		opts.Session, _ = session.NewManager("", session.Selection{})
	}
	store := trajectory.NewStore()
	return &Runner{
		opts:     opts,
		store:    store,
		selector: trajectory.NewSelector(store),
	}
}

// Store exposes the trajectory store.
func (r *Runner) Store() *trajectory.Store { return r.store }

// Run executes one cycle and publishes its snapshot. Only invalid
// parameters, a cancelled context or a superseded request make it fail;
// per-security problems are reported in the snapshot.
func (r *Runner) Run(ctx context.Context, req Request) (*model.Snapshot, error) {
	seq := r.seq.Add(1)
	start := r.opts.Now()

	sel := req.Selection
	if sel.Benchmark.ID == "" {
		sel = r.opts.Session.Selection()
	}
	if err := sel.Params.Validate(); err != nil {
		r.opts.Metrics.RecordCycle("invalid", r.opts.Now().Sub(start))
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq < r.published.Load() {
		r.opts.Metrics.RecordStaleSnapshot()
		r.opts.Metrics.RecordCycle("stale", r.opts.Now().Sub(start))
		return nil, fmt.Errorf("%w: request %d, published %d", ErrSuperseded, seq, r.published.Load())
	}

	cycleID := uuid.NewString()
	logger := log.With().Str("cycle", cycleID).Uint64("seq", seq).Str("trigger", req.Trigger).Logger()
	logger.Info().Str("benchmark", sel.Benchmark.ID).Str("timeframe", string(sel.Timeframe)).
		Int("securities", len(sel.Securities)).Msg("cycle started")

	if reason := r.opts.Session.Apply(sel); reason != session.ResetNone {
		r.reset(string(reason), sel)
	}

	col := collector.NewCollector(r.opts.Fetcher, sel.Benchmark, sel.Securities, sel.Timeframe, r.opts.Periods)
	if r.opts.Concurrency > 0 {
		col.Concurrency = r.opts.Concurrency
	}
	batch, err := col.Collect(ctx)
	if err != nil {
		r.opts.Metrics.RecordCycle("cancelled", r.opts.Now().Sub(start))
		return nil, err
	}
	if batch.BenchmarkErr != nil {
		r.opts.Metrics.RecordFetchError("benchmark")
	}
	for range batch.Failed {
		r.opts.Metrics.RecordFetchError("security")
	}

	res, err := rotation.Compute(ctx, rotation.Input{
		Benchmark:  batch.Benchmark,
		Securities: batch.Securities,
		Failed:     batch.Failed,
	}, sel.Params)
	if err != nil {
		r.opts.Metrics.RecordCycle("invalid", r.opts.Now().Sub(start))
		return nil, err
	}

	r.updateStore(res)

	cutoff := req.Cutoff
	if cutoff == nil {
		cutoff = r.opts.Session.GetState().Cutoff
	}
	wreq := trajectory.TailRequest(sel.Params.TailCount)
	if cutoff != nil {
		wreq.To = *cutoff
	}
	window, err := r.selector.Select(wreq, len(res.Dates) > 0)
	if err != nil {
		r.opts.Metrics.RecordCycle("invalid", r.opts.Now().Sub(start))
		return nil, err
	}

	snap := r.snapshot(cycleID, seq, sel, res, window)
	if req.Frames {
		snap.Frames = r.frames(sel)
	}
	for _, st := range snap.Statuses {
		if !st.OK {
			logger.Warn().Str("security", st.SecurityID).Str("reason", st.Reason).Err(st.Err).Msg("security excluded")
		}
		r.opts.Metrics.RecordSecurityStatus(st.Reason)
	}
	r.opts.Metrics.RecordWindowSource(string(window.Source))
	r.opts.Metrics.UpdateStore(len(r.store.AvailableDates()), r.store.Len())

	if err := r.opts.Recorder.RecordCycle(snap); err != nil {
		logger.Error().Err(err).Msg("record cycle")
	}

	result := "published"
	if err := r.opts.Sink.Publish(ctx, snap); err != nil {
		logger.Error().Err(err).Msg("publish snapshot")
		result = "publish_failed"
	}
	r.published.Store(seq)
	r.opts.Session.RecordCycle(snap.GeneratedAt)
	r.opts.Metrics.RecordCycle(result, r.opts.Now().Sub(start))

	counts := snap.QuadrantCounts
	logger.Info().
		Int("ok", res.OK()).
		Int("leading", counts[model.QuadrantLeading]).
		Int("weakening", counts[model.QuadrantWeakening]).
		Int("lagging", counts[model.QuadrantLagging]).
		Int("improving", counts[model.QuadrantImproving]).
		Int("excluded", len(snap.Excluded())).
		Int("dates", len(window.Dates)).
		Str("source", string(window.Source)).
		Dur("took", r.opts.Now().Sub(start)).
		Msg("cycle finished")
	return snap, nil
}

// updateStore merges every fresh trajectory concurrently. Securities that
// failed this cycle keep whatever the store already holds.
func (r *Runner) updateStore(res *rotation.Result) {
	var wg sync.WaitGroup
	for id, traj := range res.Trajectories {
		wg.Add(1)
		go func(id string, traj *model.Trajectory) {
			defer wg.Done()
			r.store.Update(id, traj)
		}(id, traj)
	}
	wg.Wait()
}

func (r *Runner) snapshot(cycleID string, seq uint64, sel session.Selection, res *rotation.Result, window trajectory.Selection) *model.Snapshot {
	var windowed []*model.Trajectory
	for _, ref := range sel.Securities {
		traj, ok := r.store.Get(ref.ID)
		if !ok {
			continue
		}
		if part := trajectory.Slice(traj, window.Dates); part.Len() > 0 {
			windowed = append(windowed, part)
		}
	}
	colors := make(map[model.Quadrant]string, len(model.Quadrants))
	for _, q := range model.Quadrants {
		colors[q] = calculator.QuadrantColor(q)
	}
	return &model.Snapshot{
		CycleID:        cycleID,
		Sequence:       seq,
		Benchmark:      sel.Benchmark,
		Timeframe:      sel.Timeframe,
		TailCount:      sel.Params.TailCount,
		GeneratedAt:    r.opts.Now().UTC(),
		Dates:          window.Dates,
		Source:         window.Source,
		Trajectories:   windowed,
		Statuses:       res.Statuses,
		Bounds:         calculator.AxisBounds(windowed),
		QuadrantColors: colors,
		QuadrantCounts: rotation.QuadrantCounts(res.Trajectories),
	}
}

// frames builds one frame per thinned date of the slider horizon. A
// security appears in a frame once it has a full tail up to that date.
func (r *Runner) frames(sel session.Selection) []model.Frame {
	dates := r.store.AvailableDates()
	if len(dates) == 0 {
		return nil
	}
	horizon := trajectory.HorizonRequest(sel.Timeframe, dates[len(dates)-1]).Apply(dates)
	if len(horizon) == 0 {
		horizon = dates
	}
	trajs := r.store.All()
	var frames []model.Frame
	for _, d := range trajectory.FrameDates(horizon, sel.Params.TailCount) {
		f := model.Frame{Date: d}
		for _, traj := range trajs {
			if tail, ok := trajectory.TailAt(traj, d, sel.Params.TailCount); ok {
				f.Trajectories = append(f.Trajectories, tail)
			}
		}
		frames = append(frames, f)
	}
	return frames
}

// Reset wipes the store and the last served window. It waits for a running cycle.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	sel := r.opts.Session.Selection()
	r.opts.Session.MarkReset()
	r.reset(string(session.ResetManual), sel)
}

func (r *Runner) reset(reason string, sel session.Selection) {
	dropped := len(r.store.AvailableDates())
	r.store.Reset()
	r.selector.Reset()
	r.opts.Metrics.RecordStoreReset(reason)
	r.opts.Metrics.UpdateStore(0, 0)
	if err := r.opts.Recorder.RecordReset(&recorder.ResetEvent{
		Reason:       reason,
		Benchmark:    sel.Benchmark.ID,
		Timeframe:    sel.Timeframe,
		DatesDropped: dropped,
	}); err != nil {
		log.Error().Err(err).Msg("record reset")
	}
	log.Info().Str("reason", reason).Int("dates_dropped", dropped).Msg("trajectory store reset")
}

// History returns the latest recorded cycles, newest first.
func (r *Runner) History(limit int) ([]recorder.CycleSummary, error) {
	return r.opts.Recorder.RecentCycles(limit)
}

// Status describes the store without running a cycle.
func (r *Runner) Status() model.StoreStatus {
	dates := r.store.AvailableDates()
	st := model.StoreStatus{
		Securities:   r.store.Len(),
		Dates:        len(dates),
		Generation:   r.store.Generation(),
		LastSequence: r.published.Load(),
		Window:       r.selector.LastServed(),
		Session:      r.opts.Session.GetState(),
	}
	if len(dates) > 0 {
		st.First = dates[0]
		st.Last = dates[len(dates)-1]
	}
	return st
}
