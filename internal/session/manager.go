package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"RRGSentinel/internal/calculator"
	"RRGSentinel/internal/model"
)

// ResetReason says why a selection change invalidates stored trajectories.
type ResetReason string

const (
	ResetNone       ResetReason = ""
	ResetBenchmark  ResetReason = "benchmark"
	ResetTimeframe  ResetReason = "timeframe"
	ResetSecurities ResetReason = "securities"
	ResetParams     ResetReason = "params"
	ResetManual     ResetReason = "manual"
)

// Selection is what a cycle is asked to compute.
type Selection struct {
	Benchmark  model.SecurityRef
	Timeframe  model.Timeframe
	Securities []model.SecurityRef
	Params     calculator.Params
}

// Manager keeps the persisted session state with concurrency safety.
// An empty file path keeps the state in memory only.
type Manager struct {
	mu       sync.Mutex
	state    *model.SessionState
	filePath string
}

// NewManager creates a Manager, loading state from disk and seeding a fresh
// state from defaults.
func NewManager(filePath string, defaults Selection) (*Manager, error) {
	state := &model.SessionState{}
	if filePath != "" {
		loaded, err := LoadState(filePath)
		if err != nil {
			return nil, fmt.Errorf("load session state: %w", err)
		}
		state = loaded
	}

	if state.Benchmark.ID == "" {
		state.Benchmark = defaults.Benchmark
		state.Timeframe = defaults.Timeframe
		state.Securities = append([]model.SecurityRef(nil), defaults.Securities...)
		state.EMASpan = defaults.Params.EMASpan
		state.MomentumLookback = defaults.Params.MomentumLookback
		state.TailCount = defaults.Params.TailCount
	}

	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// GetState returns a copy of the current session state.
func (m *Manager) GetState() model.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *m.state
	s.Securities = append([]model.SecurityRef(nil), m.state.Securities...)
	if m.state.Cutoff != nil {
		c := *m.state.Cutoff
		s.Cutoff = &c
	}
	return s
}

// Selection returns the current selection.
func (m *Manager) Selection() Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Selection{
		Benchmark:  m.state.Benchmark,
		Timeframe:  m.state.Timeframe,
		Securities: append([]model.SecurityRef(nil), m.state.Securities...),
		Params:     m.params(),
	}
}

func (m *Manager) params() calculator.Params {
	return calculator.Params{
		EMASpan:          m.state.EMASpan,
		MomentumLookback: m.state.MomentumLookback,
		TailCount:        m.state.TailCount,
	}
}

// Apply makes sel the current selection. It returns a non-empty reason when
// the benchmark, the timeframe, the security set or the smoothing
// parameters changed, in which case the caller must reset its trajectory
// store. Tail length and security order never force a reset.
func (m *Manager) Apply(sel Selection) ResetReason {
	m.mu.Lock()
	defer m.mu.Unlock()

	reason := ResetNone
	cur := m.params()
	switch {
	case sel.Benchmark.ID != m.state.Benchmark.ID:
		reason = ResetBenchmark
	case sel.Timeframe != m.state.Timeframe:
		reason = ResetTimeframe
	case !sameIDs(sel.Securities, m.state.Securities):
		reason = ResetSecurities
	case sel.Params.EMASpan != cur.EMASpan || sel.Params.MomentumLookback != cur.MomentumLookback:
		reason = ResetParams
	}

	m.state.Benchmark = sel.Benchmark
	m.state.Timeframe = sel.Timeframe
	m.state.Securities = append([]model.SecurityRef(nil), sel.Securities...)
	m.state.EMASpan = sel.Params.EMASpan
	m.state.MomentumLookback = sel.Params.MomentumLookback
	m.state.TailCount = sel.Params.TailCount
	if reason != ResetNone {
		m.state.Resets++
		m.state.Cutoff = nil
		log.Info().Str("reason", string(reason)).Str("benchmark", sel.Benchmark.ID).Msg("selection changed")
	}

	if err := m.save(); err != nil {
		log.Error().Err(err).Msg("failed to save session state")
	}
	return reason
}

// SetTail changes the number of trailing points shown.
func (m *Manager) SetTail(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: tail count must be >= 1, got %d", calculator.ErrInvalidParameter, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.TailCount = n
	if err := m.save(); err != nil {
		log.Error().Err(err).Msg("failed to save session state after tail change")
	}
	return nil
}

// SetCutoff pins the display to a past date; nil follows the latest date.
func (m *Manager) SetCutoff(cutoff *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cutoff != nil {
		c := model.Day(*cutoff)
		cutoff = &c
	}
	m.state.Cutoff = cutoff
	if err := m.save(); err != nil {
		log.Error().Err(err).Msg("failed to save session state after cutoff change")
	}
}

// MarkReset counts a manual store reset.
func (m *Manager) MarkReset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Resets++
	m.state.Cutoff = nil
	if err := m.save(); err != nil {
		log.Error().Err(err).Msg("failed to save session state after reset")
	}
}

// RecordCycle counts a completed cycle.
func (m *Manager) RecordCycle(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Cycles++
	m.state.LastCycleAt = at.UTC()
	if err := m.save(); err != nil {
		log.Error().Err(err).Msg("failed to save session state after cycle")
	}
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	return SaveState(m.filePath, m.state)
}

func sameIDs(a, b []model.SecurityRef) bool {
	if len(a) != len(b) {
		return false
	}
	ids := func(refs []model.SecurityRef) []string {
		out := make([]string, len(refs))
		for i, r := range refs {
			out[i] = r.ID
		}
		sort.Strings(out)
		return out
	}
	x, y := ids(a), ids(b)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
