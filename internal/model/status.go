package model

import "time"

// SecurityStatus reports whether a security made it into a cycle's output.
type SecurityStatus struct {
	SecurityID string `json:"security_id"`
	Label      string `json:"label"`
	OK         bool   `json:"ok"`
	Reason     string `json:"reason,omitempty"`
	Err        error  `json:"-"`
}

// WindowSource tells which candidate date set a display window came from.
type WindowSource string

const (
	WindowSourceFresh  WindowSource = "fresh"
	WindowSourceStored WindowSource = "stored"
	WindowSourceLatest WindowSource = "latest"
	WindowSourceNone   WindowSource = "none"
)

// Bounds is a chart viewport in RS-Ratio / RS-Momentum space.
type Bounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// Snapshot is what a cycle hands to its consumer.
type Snapshot struct {
	CycleID      string           `json:"cycle_id"`
	Sequence     uint64           `json:"sequence"`
	Benchmark    SecurityRef      `json:"benchmark"`
	Timeframe    Timeframe        `json:"timeframe"`
	TailCount    int              `json:"tail_count"`
	GeneratedAt  time.Time        `json:"generated_at"`
	Dates        []time.Time      `json:"dates"`
	Source       WindowSource     `json:"source"`
	Trajectories []*Trajectory    `json:"trajectories"`
	Statuses     []SecurityStatus `json:"statuses"`
	Bounds       Bounds           `json:"bounds"`
	// QuadrantColors maps each quadrant to its chart colour.
	QuadrantColors map[Quadrant]string `json:"quadrant_colors"`
	// QuadrantCounts tallies the latest quadrant of every trajectory.
	QuadrantCounts map[Quadrant]int `json:"quadrant_counts"`
	Frames         []Frame          `json:"frames,omitempty"`
}

// Frame is one animation step: each security's tail ending at Date.
type Frame struct {
	Date         time.Time     `json:"date"`
	Trajectories []*Trajectory `json:"trajectories"`
}

// Excluded returns the statuses of securities left out of the cycle.
func (s *Snapshot) Excluded() []SecurityStatus {
	var out []SecurityStatus
	for _, st := range s.Statuses {
		if !st.OK {
			out = append(out, st)
		}
	}
	return out
}

// StoreStatus describes the accumulated trajectory store.
type StoreStatus struct {
	Securities   int          `json:"securities"`
	Dates        int          `json:"dates"`
	First        time.Time    `json:"first"`
	Last         time.Time    `json:"last"`
	Generation   uint64       `json:"generation"`
	LastSequence uint64       `json:"last_sequence"`
	Window       []time.Time  `json:"window"`
	Session      SessionState `json:"session"`
}
