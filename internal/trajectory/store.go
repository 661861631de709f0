// Package trajectory holds computed RRG trajectories across cycles and
// resolves the dates a consumer should display.
package trajectory

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"RRGSentinel/internal/model"
)

// UpdateResult describes what an Update did.
type UpdateResult struct {
	Applied bool // false for an empty trajectory
	Added   int  // dates new to the available set
	Total   int  // size of the available set after the merge
}

// Store owns the latest trajectory per security and the available date set.
//
// The available date set only grows: Update merges, never replaces, and an
// empty trajectory leaves it untouched. Reset is the only way to shrink it.
type Store struct {
	// resetMu makes Reset atomic with respect to in-flight updates.
	resetMu sync.RWMutex

	trajMu sync.RWMutex
	trajs  map[string]*model.Trajectory

	// datesMu serialises every merge into the available date set.
	datesMu sync.Mutex
	dates   []time.Time
	index   map[time.Time]struct{}

	generation uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		trajs: make(map[string]*model.Trajectory),
		index: make(map[time.Time]struct{}),
	}
}

// Update stores traj for id and merges its dates into the available set.
// Updates for different ids may run concurrently.
func (s *Store) Update(id string, traj *model.Trajectory) UpdateResult {
	s.resetMu.RLock()
	defer s.resetMu.RUnlock()

	if traj.Len() == 0 {
		log.Info().Str("security", id).Msg("empty trajectory, store update skipped")
		return UpdateResult{Total: s.datesLen()}
	}

	stored := traj.Clone()
	s.trajMu.Lock()
	s.trajs[id] = stored
	s.trajMu.Unlock()

	added, total := s.merge(stored.Dates())
	return UpdateResult{Applied: true, Added: added, Total: total}
}

func (s *Store) merge(dates []time.Time) (added, total int) {
	s.datesMu.Lock()
	defer s.datesMu.Unlock()

	for _, d := range dates {
		if _, ok := s.index[d]; ok {
			continue
		}
		s.index[d] = struct{}{}
		s.dates = append(s.dates, d)
		added++
	}
	if added > 0 {
		sort.Slice(s.dates, func(i, j int) bool { return s.dates[i].Before(s.dates[j]) })
	}
	return added, len(s.dates)
}

func (s *Store) datesLen() int {
	s.datesMu.Lock()
	defer s.datesMu.Unlock()
	return len(s.dates)
}

// Get returns a copy of the stored trajectory for id.
func (s *Store) Get(id string) (*model.Trajectory, bool) {
	s.trajMu.RLock()
	defer s.trajMu.RUnlock()
	t, ok := s.trajs[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// All returns copies of every stored trajectory ordered by security id.
func (s *Store) All() []*model.Trajectory {
	s.trajMu.RLock()
	defer s.trajMu.RUnlock()
	out := make([]*model.Trajectory, 0, len(s.trajs))
	for _, t := range s.trajs {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SecurityID < out[j].SecurityID })
	return out
}

// Len returns the number of stored trajectories.
func (s *Store) Len() int {
	s.trajMu.RLock()
	defer s.trajMu.RUnlock()
	return len(s.trajs)
}

// AvailableDates returns a copy of the available date set, ascending.
func (s *Store) AvailableDates() []time.Time {
	s.datesMu.Lock()
	defer s.datesMu.Unlock()
	return append([]time.Time(nil), s.dates...)
}

// Generation counts resets; it changes exactly when the store is cleared.
func (s *Store) Generation() uint64 {
	s.resetMu.RLock()
	defer s.resetMu.RUnlock()
	return s.generation
}

// Reset clears every trajectory and the available date set together.
func (s *Store) Reset() {
	s.resetMu.Lock()
	defer s.resetMu.Unlock()

	s.trajMu.Lock()
	s.trajs = make(map[string]*model.Trajectory)
	s.trajMu.Unlock()

	s.datesMu.Lock()
	s.dates = nil
	s.index = make(map[time.Time]struct{})
	s.datesMu.Unlock()

	s.generation++
	log.Info().Uint64("generation", s.generation).Msg("trajectory store reset")
}
