package calculator

import "RRGSentinel/internal/model"

// Classify maps an (RS-Ratio, RS-Momentum) pair to its quadrant. Exactly 100
// counts as the lower side on both axes.
func Classify(ratio, momentum float64) model.Quadrant {
	switch {
	case ratio > 100 && momentum > 100:
		return model.QuadrantLeading
	case ratio > 100:
		return model.QuadrantWeakening
	case momentum > 100:
		return model.QuadrantImproving
	default:
		return model.QuadrantLagging
	}
}

// QuadrantColor returns the marker colour used for a quadrant.
func QuadrantColor(q model.Quadrant) string {
	switch q {
	case model.QuadrantLeading:
		return "#008217"
	case model.QuadrantWeakening:
		return "#918000"
	case model.QuadrantImproving:
		return "#00749D"
	default:
		return "#E0002B"
	}
}
