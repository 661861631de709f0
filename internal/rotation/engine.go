package rotation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"RRGSentinel/internal/calculator"
	"RRGSentinel/internal/model"
)

// Input is everything one computation cycle reads. It is not modified.
type Input struct {
	Benchmark  model.Security
	Securities []model.Security
	// Failed holds securities whose fetch already failed upstream.
	Failed map[string]error
}

// Result is the output of Compute.
type Result struct {
	Trajectories map[string]*model.Trajectory
	Statuses     []model.SecurityStatus // same order as Input.Securities
	Dates        []time.Time            // union of all trajectory dates, ascending
}

// OK returns the number of securities with a trajectory.
func (r *Result) OK() int {
	return len(r.Trajectories)
}

// Compute runs the rotation engine over one input snapshot. Per-security
// failures are reported in Result.Statuses and never abort the batch; the
// only returned error is calculator.ErrInvalidParameter.
//
// Each security is normalized on its own goroutine; they share the aligned
// series read-only and write to their own result slot.
func Compute(ctx context.Context, in Input, p calculator.Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Trajectories: make(map[string]*model.Trajectory),
		Statuses:     make([]model.SecurityStatus, len(in.Securities)),
	}
	errs := make([]error, len(in.Securities))
	trajs := make([]*model.Trajectory, len(in.Securities))

	pending := make(map[string][]model.PricePoint, len(in.Securities))
	for i, s := range in.Securities {
		switch {
		case in.Failed[s.ID] != nil:
			errs[i] = fmt.Errorf("%w: fetch %s: %v", calculator.ErrInsufficientHistory, s.ID, in.Failed[s.ID])
		case len(s.Points) == 0:
			errs[i] = fmt.Errorf("%w: %s has no prices", calculator.ErrInsufficientHistory, s.ID)
		default:
			pending[s.ID] = s.Points
		}
	}

	var aligned *model.AlignedSeries
	var alignErr error
	if len(pending) > 0 {
		aligned, alignErr = calculator.Align(pending, in.Benchmark.Points, p.MinHistory())
	}

	var wg sync.WaitGroup
	for i, s := range in.Securities {
		if errs[i] != nil {
			continue
		}
		if alignErr != nil {
			errs[i] = alignErr
			continue
		}
		wg.Add(1)
		go func(i int, s model.Security) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			dates, sec, bench, err := calculator.Pair(aligned, s.ID, p.MinHistory())
			if err != nil {
				errs[i] = err
				return
			}
			trajs[i], errs[i] = BuildTrajectory(model.SecurityRef{ID: s.ID, Label: s.Label}, dates, sec, bench, p)
		}(i, s)
	}
	wg.Wait()

	seen := make(map[time.Time]struct{})
	for i, s := range in.Securities {
		st := model.SecurityStatus{SecurityID: s.ID, Label: s.Label, OK: errs[i] == nil}
		if errs[i] != nil {
			st.Err = errs[i]
			st.Reason = calculator.Reason(errs[i])
		} else {
			res.Trajectories[s.ID] = trajs[i]
			for _, pt := range trajs[i].Points {
				if _, ok := seen[pt.Date]; !ok {
					seen[pt.Date] = struct{}{}
					res.Dates = append(res.Dates, pt.Date)
				}
			}
		}
		res.Statuses[i] = st
	}
	sort.Slice(res.Dates, func(a, b int) bool { return res.Dates[a].Before(res.Dates[b]) })
	return res, nil
}

// BuildTrajectory computes RS-Ratio and RS-Momentum over one security's
// aligned prices and keeps only the dates where both are defined.
func BuildTrajectory(ref model.SecurityRef, dates []time.Time, security, benchmark []float64, p calculator.Params) (*model.Trajectory, error) {
	if len(dates) != len(security) || len(dates) != len(benchmark) {
		return nil, fmt.Errorf("%w: %d dates, %d prices, %d benchmark prices",
			calculator.ErrInvalidParameter, len(dates), len(security), len(benchmark))
	}
	ratio, err := calculator.RSRatio(security, benchmark, p.EMASpan)
	if err != nil {
		return nil, fmt.Errorf("%s rs-ratio: %w", ref.ID, err)
	}
	momentum, err := calculator.RSMomentum(ratio, p.MomentumLookback, p.EMASpan)
	if err != nil {
		return nil, fmt.Errorf("%s rs-momentum: %w", ref.ID, err)
	}

	traj := &model.Trajectory{SecurityID: ref.ID, Label: ref.Name()}
	for t := range dates {
		if calculator.IsAbsent(ratio[t]) || calculator.IsAbsent(momentum[t]) {
			continue
		}
		traj.Points = append(traj.Points, model.TrajectoryPoint{
			Date:       dates[t],
			RSRatio:    ratio[t],
			RSMomentum: momentum[t],
			Quadrant:   calculator.Classify(ratio[t], momentum[t]),
		})
	}
	if len(traj.Points) == 0 {
		return nil, fmt.Errorf("%w: %s has no defined points", calculator.ErrInsufficientHistory, ref.ID)
	}
	return traj, nil
}

// QuadrantCounts tallies the latest quadrant of each trajectory.
func QuadrantCounts(trajs map[string]*model.Trajectory) map[model.Quadrant]int {
	counts := make(map[model.Quadrant]int, len(model.Quadrants))
	for _, t := range trajs {
		if last, ok := t.Last(); ok {
			counts[last.Quadrant]++
		}
	}
	return counts
}
