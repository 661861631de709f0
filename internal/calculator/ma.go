package calculator

import "fmt"

// CalculateSMA is the mean of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: period must be positive", ErrInvalidParameter)
	}
	if len(values) < period {
		return 0, fmt.Errorf("%w: %d values for a %d-period mean", ErrInsufficientHistory, len(values), period)
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), nil
}

// RollingMean returns, for every index t, the mean of values[t-window+1..t].
// Entries before window-1, or whose window holds an absent value, are absent.
func RollingMean(values []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: window must be >= 1, got %d", ErrInvalidParameter, window)
	}
	out := make([]float64, len(values))
	gap := -1 // index of the latest absent value
	for t := range values {
		if IsAbsent(values[t]) {
			gap = t
		}
		if t < window-1 || gap > t-window {
			out[t] = Absent
			continue
		}
		mean, err := CalculateSMA(values[:t+1], window)
		if err != nil {
			return nil, err
		}
		out[t] = mean
	}
	return out, nil
}
