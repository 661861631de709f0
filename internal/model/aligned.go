package model

import "time"

// AlignedSeries maps one shared, strictly increasing date axis to an
// optional close per security. Closes[id][i] belongs to Dates[i];
// Present[id][i] is false where the security has no quote that day.
type AlignedSeries struct {
	Dates     []time.Time
	Benchmark []float64
	Closes    map[string][]float64
	Present   map[string][]bool
}
