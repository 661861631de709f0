package collector

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"RRGSentinel/internal/model"
)

// MockFetcher returns deterministic generated data for development and
// testing. Each symbol gets its own drift and phase, so a mock universe
// spreads over all four quadrants.
type MockFetcher struct {
	Price float64
	End   time.Time
	// Data overrides generation for a symbol.
	Data map[string][]model.OHLCV
	// Errors makes a symbol fail.
	Errors map[string]error

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many times FetchBars was invoked.
func (m *MockFetcher) Calls() int64 { return m.calls.Load() }

func (m *MockFetcher) FetchBars(ctx context.Context, symbol string, tf model.Timeframe, periods int) ([]model.OHLCV, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	if bars, ok := m.Data[symbol]; ok {
		return bars, nil
	}
	end := m.End
	if end.IsZero() {
		end = weekEnding(time.Now())
	}
	base := m.Price
	if base <= 0 {
		base = 100
	}
	return generateMockBars(symbol, base, end, tf, periods), nil
}

func generateMockBars(symbol string, basePrice float64, end time.Time, tf model.Timeframe, count int) []model.OHLCV {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	seed := h.Sum32()
	drift := (float64(seed%21) - 10) * 0.0004
	phase := float64(seed%628) / 100

	step := 7
	if tf == model.TimeframeDaily {
		step = 1
	}
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + drift*float64(i) + 0.04*math.Sin(float64(i)/6+phase))
		bars[i] = model.OHLCV{
			Time:   model.Day(end).AddDate(0, 0, -(count-1-i)*step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Batch is the raw material of one computation cycle.
type Batch struct {
	Benchmark  model.Security
	Securities []model.Security // every configured security, in order
	// Failed maps security id to its fetch error.
	Failed map[string]error
	// BenchmarkErr is set when the benchmark could not be fetched; the
	// benchmark series is then empty.
	BenchmarkErr error
}

// Collector fetches the benchmark and every security for one cycle.
type Collector struct {
	Fetcher     Fetcher
	Benchmark   model.SecurityRef
	Securities  []model.SecurityRef
	Timeframe   model.Timeframe
	Periods     int
	Concurrency int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, benchmark model.SecurityRef, securities []model.SecurityRef, tf model.Timeframe, periods int) *Collector {
	return &Collector{
		Fetcher:     fetcher,
		Benchmark:   benchmark,
		Securities:  securities,
		Timeframe:   tf,
		Periods:     periods,
		Concurrency: 4,
	}
}

// Collect fetches all series concurrently. A failed security is recorded in
// Batch.Failed and does not stop the others. The only returned error is a
// cancelled context.
func (c *Collector) Collect(ctx context.Context) (*Batch, error) {
	refs := append([]model.SecurityRef{c.Benchmark}, c.Securities...)
	points := make([][]model.PricePoint, len(refs))
	errs := make([]error, len(refs))

	limit := c.Concurrency
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref model.SecurityRef) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-sem }()

			bars, err := c.Fetcher.FetchBars(ctx, ref.ID, c.Timeframe, c.Periods)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", c.Fetcher.Name(), err)
				return
			}
			if len(bars) == 0 {
				errs[i] = fmt.Errorf("%s: no bars for %s", c.Fetcher.Name(), ref.ID)
				return
			}
			points[i] = model.PricePointsFromBars(bars)
		}(i, ref)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &Batch{
		Benchmark:  model.Security{ID: c.Benchmark.ID, Label: c.Benchmark.Name(), Points: points[0]},
		Securities: make([]model.Security, len(c.Securities)),
		Failed:     make(map[string]error),
	}
	if errs[0] != nil {
		batch.BenchmarkErr = errs[0]
		log.Error().Err(errs[0]).Str("benchmark", c.Benchmark.ID).Msg("benchmark fetch failed")
	}
	for i, ref := range c.Securities {
		batch.Securities[i] = model.Security{ID: ref.ID, Label: ref.Name(), Points: points[i+1]}
		if err := errs[i+1]; err != nil {
			batch.Failed[ref.ID] = err
			log.Warn().Err(err).Str("security", ref.ID).Msg("security fetch failed")
		}
	}
	log.Debug().
		Int("securities", len(c.Securities)).
		Int("failed", len(batch.Failed)).
		Str("timeframe", string(c.Timeframe)).
		Msg("collect done")
	return batch, nil
}

// ErrMockFailure is a convenience error for MockFetcher.Errors.
var ErrMockFailure = errors.New("mock fetch failure")
