package cycle

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"RRGSentinel/internal/model"
)

// Sink receives the snapshot of every published cycle.
type Sink interface {
	Publish(ctx context.Context, snap *model.Snapshot) error
}

// LogSink logs a one-line summary per security.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, snap *model.Snapshot) error {
	for _, traj := range snap.Trajectories {
		last, ok := traj.Last()
		if !ok {
			continue
		}
		log.Info().
			Str("cycle", snap.CycleID).
			Str("security", traj.SecurityID).
			Str("quadrant", string(last.Quadrant)).
			Float64("rs_ratio", last.RSRatio).
			Float64("rs_momentum", last.RSMomentum).
			Time("date", last.Date).
			Msg("rotation")
	}
	for _, st := range snap.Excluded() {
		log.Warn().Str("cycle", snap.CycleID).Str("security", st.SecurityID).Str("reason", st.Reason).Msg("excluded")
	}
	return nil
}

// JSONSink writes each snapshot as an indented JSON document.
type JSONSink struct {
	mu sync.Mutex
	W  io.Writer
}

func (s *JSONSink) Publish(_ context.Context, snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.W)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// MultiSink fans a snapshot out to several sinks and returns the first error.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, snap *model.Snapshot) error {
	var first error
	for _, s := range m {
		if err := s.Publish(ctx, snap); err != nil && first == nil {
			first = err
		}
	}
	return first
}
