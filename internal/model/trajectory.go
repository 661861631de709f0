package model

import "time"

// Quadrant is the market phase of a security relative to its benchmark.
type Quadrant string

const (
	QuadrantLeading   Quadrant = "Leading"
	QuadrantWeakening Quadrant = "Weakening"
	QuadrantLagging   Quadrant = "Lagging"
	QuadrantImproving Quadrant = "Improving"
)

// Quadrants lists every quadrant in clockwise chart order.
var Quadrants = []Quadrant{QuadrantLeading, QuadrantWeakening, QuadrantLagging, QuadrantImproving}

// TrajectoryPoint is one fully defined RRG observation.
type TrajectoryPoint struct {
	Date       time.Time `json:"date"`
	RSRatio    float64   `json:"rs_ratio"`
	RSMomentum float64   `json:"rs_momentum"`
	Quadrant   Quadrant  `json:"quadrant"`
}

// Trajectory is the ordered RRG path of one security.
// A Trajectory is never mutated after it is built; a new input snapshot
// produces a new Trajectory.
type Trajectory struct {
	SecurityID string            `json:"security_id"`
	Label      string            `json:"label"`
	Points     []TrajectoryPoint `json:"points"`
}

// Len returns the number of points.
func (t *Trajectory) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Points)
}

// Dates returns the dates of all points in order.
func (t *Trajectory) Dates() []time.Time {
	if t == nil {
		return nil
	}
	dates := make([]time.Time, len(t.Points))
	for i, p := range t.Points {
		dates[i] = p.Date
	}
	return dates
}

// Last returns the most recent point.
func (t *Trajectory) Last() (TrajectoryPoint, bool) {
	if t.Len() == 0 {
		return TrajectoryPoint{}, false
	}
	return t.Points[len(t.Points)-1], true
}

// Clone returns a deep copy.
func (t *Trajectory) Clone() *Trajectory {
	if t == nil {
		return nil
	}
	c := *t
	c.Points = append([]TrajectoryPoint(nil), t.Points...)
	return &c
}
