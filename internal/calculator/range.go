package calculator

import (
	"math"

	"RRGSentinel/internal/model"
)

const (
	axisCenter     = 100.0
	minHalfRange   = 7.0
	minAxisPadding = 1.5
)

// AxisBounds returns a chart viewport centred on (100, 100) that contains
// every point of the given trajectories. Padding is 5% of the data range on
// each axis (at least 1.5) and the half-range is never below 7.
func AxisBounds(trajectories []*model.Trajectory) model.Bounds {
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, t := range trajectories {
		if t == nil {
			continue
		}
		for _, p := range t.Points {
			xMin = math.Min(xMin, p.RSRatio)
			xMax = math.Max(xMax, p.RSRatio)
			yMin = math.Min(yMin, p.RSMomentum)
			yMax = math.Max(yMax, p.RSMomentum)
		}
	}

	xHalf, yHalf := minHalfRange, minHalfRange
	if !math.IsInf(xMin, 1) {
		xHalf = halfRange(xMin, xMax)
		yHalf = halfRange(yMin, yMax)
	}
	return model.Bounds{
		XMin: axisCenter - xHalf,
		XMax: axisCenter + xHalf,
		YMin: axisCenter - yHalf,
		YMax: axisCenter + yHalf,
	}
}

func halfRange(lo, hi float64) float64 {
	padding := math.Max((hi-lo)*0.05, minAxisPadding)
	dist := math.Max(math.Abs(lo-axisCenter), math.Abs(hi-axisCenter)) + padding
	return math.Max(dist, minHalfRange)
}
