package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"RRGSentinel/internal/model"
)

func TestClassify_AllQuadrants(t *testing.T) {
	tests := []struct {
		ratio, momentum float64
		want            model.Quadrant
	}{
		{101, 101, model.QuadrantLeading},
		{101, 100, model.QuadrantWeakening},
		{101, 99, model.QuadrantWeakening},
		{100, 100, model.QuadrantLagging},
		{99, 99, model.QuadrantLagging},
		{100, 100.0001, model.QuadrantImproving},
		{95, 105, model.QuadrantImproving},
		{math.Inf(1), math.Inf(-1), model.QuadrantWeakening},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.ratio, tt.momentum), "(%v, %v)", tt.ratio, tt.momentum)
	}
}

func TestClassify_Sequence(t *testing.T) {
	ratio := []float64{98, 99, 100, 103, 105}
	momentum := []float64{101, 100, 99, 102, 104}
	want := []model.Quadrant{
		model.QuadrantImproving,
		model.QuadrantLagging,
		model.QuadrantLagging,
		model.QuadrantLeading,
		model.QuadrantLeading,
	}
	for i := range ratio {
		assert.Equal(t, want[i], Classify(ratio[i], momentum[i]))
	}
}

func TestQuadrantColor(t *testing.T) {
	assert.Equal(t, "#008217", QuadrantColor(model.QuadrantLeading))
	assert.Equal(t, "#918000", QuadrantColor(model.QuadrantWeakening))
	assert.Equal(t, "#00749D", QuadrantColor(model.QuadrantImproving))
	assert.Equal(t, "#E0002B", QuadrantColor(model.QuadrantLagging))
}
