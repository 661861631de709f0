package calculator

import (
	"fmt"
	"math"
)

// RSRatio computes RS-Ratio for a security against its benchmark on a shared
// date axis:
//
//	raw      = security / benchmark
//	smoothed = EMA(raw, span)
//	RS-Ratio = 100 * smoothed / mean(smoothed over the last span dates)
//
// The first span-1 entries, and any entry whose rolling mean is zero, are absent.
func RSRatio(security, benchmark []float64, span int) ([]float64, error) {
	if span < 1 {
		return nil, fmt.Errorf("%w: ema_span must be >= 1, got %d", ErrInvalidParameter, span)
	}
	if len(security) != len(benchmark) {
		return nil, fmt.Errorf("%w: security has %d prices, benchmark %d", ErrInvalidParameter, len(security), len(benchmark))
	}

	raw := make([]float64, len(security))
	for i := range security {
		if err := checkPrice(benchmark[i]); err != nil {
			return nil, fmt.Errorf("benchmark price at %d: %w", i, err)
		}
		if err := checkPrice(security[i]); err != nil {
			return nil, fmt.Errorf("security price at %d: %w", i, err)
		}
		raw[i] = security[i] / benchmark[i]
	}

	smoothed, err := Smooth(raw, span)
	if err != nil {
		return nil, err
	}
	mean, err := RollingMean(smoothed, span)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(smoothed))
	for t := range smoothed {
		if IsAbsent(mean[t]) || mean[t] == 0 {
			out[t] = Absent
			continue
		}
		out[t] = 100 * smoothed[t] / mean[t]
	}
	return out, nil
}

func checkPrice(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return fmt.Errorf("%w: corrupt price %v", ErrDivisionByZero, p)
	}
	return nil
}
