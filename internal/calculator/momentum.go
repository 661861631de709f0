package calculator

import "fmt"

// RSMomentum computes RS-Momentum from an RS-Ratio series:
//
//	roc         = (ratio[t] - ratio[t-k]) / ratio[t-k]
//	RS-Momentum = 100 + 100 * EMA(roc, span)
//
// roc is absent for t < k or where either ratio is absent; the EMA runs over
// the defined suffix only. A defined zero ratio is corrupt input.
func RSMomentum(ratio []float64, lookback, span int) ([]float64, error) {
	if lookback < 1 {
		return nil, fmt.Errorf("%w: momentum_lookback must be >= 1, got %d", ErrInvalidParameter, lookback)
	}
	if span < 1 {
		return nil, fmt.Errorf("%w: ema_span must be >= 1, got %d", ErrInvalidParameter, span)
	}

	roc := make([]float64, len(ratio))
	for t := range ratio {
		if t < lookback || IsAbsent(ratio[t]) || IsAbsent(ratio[t-lookback]) {
			roc[t] = Absent
			continue
		}
		base := ratio[t-lookback]
		if base == 0 {
			return nil, fmt.Errorf("%w: zero RS-Ratio at %d", ErrDivisionByZero, t-lookback)
		}
		roc[t] = (ratio[t] - base) / base
	}

	smoothed, err := SmoothDefined(roc, span)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(smoothed))
	for t, v := range smoothed {
		if IsAbsent(v) {
			out[t] = Absent
			continue
		}
		out[t] = 100 + 100*v
	}
	return out, nil
}
