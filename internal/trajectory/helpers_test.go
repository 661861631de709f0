package trajectory

import (
	"time"

	"RRGSentinel/internal/model"
)

// d returns the n-th day of January 2024 (d(1) is Jan 1).
func d(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func days(from, to int) []time.Time {
	var out []time.Time
	for n := from; n <= to; n++ {
		out = append(out, d(n))
	}
	return out
}

func traj(id string, dates ...time.Time) *model.Trajectory {
	t := &model.Trajectory{SecurityID: id, Label: id}
	for i, dt := range dates {
		t.Points = append(t.Points, model.TrajectoryPoint{
			Date:       dt,
			RSRatio:    100 + float64(i),
			RSMomentum: 100 - float64(i),
			Quadrant:   model.QuadrantWeakening,
		})
	}
	return t
}
