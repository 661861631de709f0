package trajectory

import (
	"time"

	"RRGSentinel/internal/model"
)

// Slice keeps the points of traj whose date is in dates.
func Slice(traj *model.Trajectory, dates []time.Time) *model.Trajectory {
	if traj == nil {
		return nil
	}
	keep := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		keep[d] = struct{}{}
	}
	out := &model.Trajectory{SecurityID: traj.SecurityID, Label: traj.Label}
	for _, p := range traj.Points {
		if _, ok := keep[p.Date]; ok {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

// TailAt returns the last n points of traj on or before cutoff. It reports
// false when fewer than n points exist up to cutoff.
func TailAt(traj *model.Trajectory, cutoff time.Time, n int) (*model.Trajectory, bool) {
	if traj == nil || n < 1 {
		return nil, false
	}
	end := 0
	for end < len(traj.Points) && !traj.Points[end].Date.After(cutoff) {
		end++
	}
	if end < n {
		return nil, false
	}
	out := &model.Trajectory{SecurityID: traj.SecurityID, Label: traj.Label}
	out.Points = append(out.Points, traj.Points[end-n:end]...)
	return out, true
}

// FrameDates thins dates to at most about 50 animation frames per tail
// length and always ends on the last date.
func FrameDates(dates []time.Time, tail int) []time.Time {
	if len(dates) == 0 {
		return nil
	}
	if tail < 1 {
		tail = 1
	}
	step := len(dates) / (50 * tail)
	if step < 1 {
		step = 1
	}
	var frames []time.Time
	for i := 0; i < len(dates); i += step {
		frames = append(frames, dates[i])
	}
	if last := dates[len(dates)-1]; !frames[len(frames)-1].Equal(last) {
		frames = append(frames, last)
	}
	return frames
}
