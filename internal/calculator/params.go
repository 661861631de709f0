package calculator

import "fmt"

const (
	DefaultEMASpan          = 14
	DefaultMomentumLookback = 10
	DefaultTailCount        = 8
)

// Params are the shared knobs of one computation cycle.
type Params struct {
	EMASpan          int // m: EMA span and rolling-mean window
	MomentumLookback int // k: rate-of-change shift
	TailCount        int // points shown per security
}

// DefaultParams returns m=14, k=10, tail=8.
func DefaultParams() Params {
	return Params{
		EMASpan:          DefaultEMASpan,
		MomentumLookback: DefaultMomentumLookback,
		TailCount:        DefaultTailCount,
	}
}

// Validate rejects non-positive parameters.
func (p Params) Validate() error {
	if p.EMASpan < 1 {
		return fmt.Errorf("%w: ema_span must be >= 1, got %d", ErrInvalidParameter, p.EMASpan)
	}
	if p.MomentumLookback < 1 {
		return fmt.Errorf("%w: momentum_lookback must be >= 1, got %d", ErrInvalidParameter, p.MomentumLookback)
	}
	if p.TailCount < 1 {
		return fmt.Errorf("%w: tail_count must be >= 1, got %d", ErrInvalidParameter, p.TailCount)
	}
	return nil
}

// Warmup is the number of leading aligned dates without a full
// (RS-Ratio, RS-Momentum) pair: the rolling mean needs m-1 dates and the
// rate of change k more.
func (p Params) Warmup() int {
	return p.EMASpan - 1 + p.MomentumLookback
}

// MinHistory is the shortest aligned series accepted for a security:
// rolling window + smoothing span + momentum lookback.
func (p Params) MinHistory() int {
	return 2*p.EMASpan + p.MomentumLookback
}
