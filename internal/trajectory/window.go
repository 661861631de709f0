package trajectory

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"RRGSentinel/internal/calculator"
	"RRGSentinel/internal/model"
)

// WindowRequest asks for the display dates: an optional inclusive date range
// followed by an optional tail length. Zero From/To leave that end open.
type WindowRequest struct {
	TailCount int
	From      time.Time
	To        time.Time
}

// TailRequest asks for the n most recent dates.
func TailRequest(n int) WindowRequest {
	return WindowRequest{TailCount: n}
}

// RangeRequest asks for every date in [from, to].
func RangeRequest(from, to time.Time) WindowRequest {
	return WindowRequest{From: from, To: to}
}

// HorizonRequest asks for the slider horizon of tf ending at latest.
func HorizonRequest(tf model.Timeframe, latest time.Time) WindowRequest {
	return WindowRequest{From: latest.Add(-tf.SliderHorizon()), To: latest}
}

// Validate rejects negative tails, inverted ranges and requests that select nothing.
func (r WindowRequest) Validate() error {
	if r.TailCount < 0 {
		return fmt.Errorf("%w: tail_count must be positive, got %d", calculator.ErrInvalidParameter, r.TailCount)
	}
	if r.TailCount == 0 && r.From.IsZero() && r.To.IsZero() {
		return fmt.Errorf("%w: window request needs a tail count or a date range", calculator.ErrInvalidParameter)
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return fmt.Errorf("%w: window range starts %s after it ends %s",
			calculator.ErrInvalidParameter, r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	}
	return nil
}

// Apply filters ascending dates by the range, then keeps the tail.
func (r WindowRequest) Apply(dates []time.Time) []time.Time {
	var out []time.Time
	for _, d := range dates {
		if !r.From.IsZero() && d.Before(r.From) {
			continue
		}
		if !r.To.IsZero() && d.After(r.To) {
			continue
		}
		out = append(out, d)
	}
	if r.TailCount > 0 && len(out) > r.TailCount {
		out = out[len(out)-r.TailCount:]
	}
	return out
}

// Selection is a resolved display window.
type Selection struct {
	Dates  []time.Time
	Source model.WindowSource
}

// Latest returns the last selected date.
func (s Selection) Latest() (time.Time, bool) {
	if len(s.Dates) == 0 {
		return time.Time{}, false
	}
	return s.Dates[len(s.Dates)-1], true
}

// Selector resolves window requests against a Store's merged date set.
// Once the store has held any date it never resolves to an empty window.
type Selector struct {
	store *Store

	mu     sync.Mutex
	served []time.Time
}

// NewSelector creates a selector over store.
func NewSelector(store *Store) *Selector {
	return &Selector{store: store}
}

// Select resolves req against the store's available dates, which already
// include whatever the just-finished cycle merged in. fresh reports whether
// that cycle contributed any dates; it only labels the result.
//
// When req selects nothing the most recent stored date is returned alone.
func (s *Selector) Select(req WindowRequest, fresh bool) (Selection, error) {
	if err := req.Validate(); err != nil {
		return Selection{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.store.AvailableDates()
	var sel Selection
	switch picked := req.Apply(stored); {
	case len(picked) > 0 && fresh:
		sel = Selection{Dates: picked, Source: model.WindowSourceFresh}
	case len(picked) > 0:
		sel = Selection{Dates: picked, Source: model.WindowSourceStored}
	case len(stored) > 0:
		sel = Selection{Dates: stored[len(stored)-1:], Source: model.WindowSourceLatest}
	default:
		sel = Selection{Source: model.WindowSourceNone}
	}

	if sel.Source != model.WindowSourceFresh && sel.Source != model.WindowSourceNone {
		log.Warn().
			Str("source", string(sel.Source)).
			Bool("fresh", fresh).
			Int("stored", len(stored)).
			Msg("window resolved from fallback dates")
	}
	if len(sel.Dates) > 0 {
		s.served = append([]time.Time(nil), sel.Dates...)
	}
	return sel, nil
}

// LastServed returns the last window handed out.
func (s *Selector) LastServed() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.served...)
}

// Reset forgets the last served window; call it together with Store.Reset.
func (s *Selector) Reset() {
	s.mu.Lock()
	s.served = nil
	s.mu.Unlock()
}
