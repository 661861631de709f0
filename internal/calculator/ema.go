package calculator

import (
	"fmt"
	"math"
)

// Absent marks an undefined value inside a series.
var Absent = math.NaN()

// IsAbsent reports whether v is an undefined series value.
func IsAbsent(v float64) bool {
	return math.IsNaN(v)
}

// Smooth returns the exponential moving average of values with
// alpha = 2/(span+1), seeded with values[0]. The output has the same length
// as the input.
func Smooth(values []float64, span int) ([]float64, error) {
	return SmoothDefined(values, span)
}

// SmoothDefined is Smooth over the defined part of values: leading absent
// entries stay absent and the average is seeded with the first defined value.
// An absent entry after the seed is emitted as absent and does not move the
// average.
func SmoothDefined(values []float64, span int) ([]float64, error) {
	if span < 1 {
		return nil, fmt.Errorf("%w: span must be >= 1, got %d", ErrInvalidParameter, span)
	}
	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(values))
	seeded := false
	var prev float64
	for i, v := range values {
		if IsAbsent(v) {
			out[i] = Absent
			continue
		}
		if !seeded {
			prev = v
			seeded = true
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out, nil
}
