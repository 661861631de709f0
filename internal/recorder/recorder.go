package recorder

import (
	"time"

	"RRGSentinel/internal/model"
)

// ResetEvent records a wipe of the trajectory store.
type ResetEvent struct {
	Reason       string // "benchmark", "timeframe", "securities", "params", "manual"
	Benchmark    string
	Timeframe    model.Timeframe
	DatesDropped int
}

// CycleSummary is one row of the cycle log.
type CycleSummary struct {
	CycleID     string
	Sequence    uint64
	Benchmark   string
	Timeframe   model.Timeframe
	Source      model.WindowSource
	OK          int
	Excluded    int
	Dates       int
	GeneratedAt time.Time
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordCycle(snap *model.Snapshot) error
	RecordReset(evt *ResetEvent) error
	RecentCycles(limit int) ([]CycleSummary, error)
	Close() error
}
