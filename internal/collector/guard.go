package collector

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"RRGSentinel/internal/model"
)

// GuardOptions configures GuardedFetcher.
type GuardOptions struct {
	RatePerSecond   float64
	Burst           int
	BreakerFailures uint32        // consecutive failures that open the breaker
	BreakerTimeout  time.Duration // how long the breaker stays open
}

// DefaultGuardOptions suits the public chart APIs.
func DefaultGuardOptions() GuardOptions {
	return GuardOptions{
		RatePerSecond:   2,
		Burst:           4,
		BreakerFailures: 5,
		BreakerTimeout:  time.Minute,
	}
}

// GuardedFetcher paces calls to the wrapped Fetcher with a token bucket and
// stops calling it while a circuit breaker is open.
type GuardedFetcher struct {
	next    Fetcher
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

var _ Fetcher = (*GuardedFetcher)(nil)

// NewGuardedFetcher wraps next.
func NewGuardedFetcher(next Fetcher, opts GuardOptions) *GuardedFetcher {
	def := DefaultGuardOptions()
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = def.RatePerSecond
	}
	if opts.Burst < 1 {
		opts.Burst = def.Burst
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = def.BreakerFailures
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = def.BreakerTimeout
	}
	failures := opts.BreakerFailures
	settings := gobreaker.Settings{
		Name:    next.Name(),
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Cancellation is the caller's doing, not the provider's.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("fetcher", name).Str("from", from.String()).Str("to", to.String()).Msg("fetch circuit breaker state change")
		},
	}
	return &GuardedFetcher{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (g *GuardedFetcher) Name() string { return g.next.Name() }

// State reports the breaker state.
func (g *GuardedFetcher) State() gobreaker.State { return g.breaker.State() }

func (g *GuardedFetcher) FetchBars(ctx context.Context, symbol string, tf model.Timeframe, periods int) ([]model.OHLCV, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.FetchBars(ctx, symbol, tf, periods)
	})
	if err != nil {
		return nil, err
	}
	return out.([]model.OHLCV), nil
}
