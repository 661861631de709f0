package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSRatio_ConstantRelativePriceIsCentered(t *testing.T) {
	bench := []float64{100, 101, 99, 102, 103, 104}
	sec := make([]float64, len(bench))
	for i, b := range bench {
		sec[i] = 2 * b
	}
	out, err := RSRatio(sec, bench, 3)
	require.NoError(t, err)
	require.Len(t, out, len(bench))
	assert.True(t, IsAbsent(out[0]))
	assert.True(t, IsAbsent(out[1]))
	for _, v := range out[2:] {
		assert.InDelta(t, 100.0, v, 1e-9)
	}
}

func TestRSRatio_HandComputed(t *testing.T) {
	// span 2: alpha 2/3; ema = 1, 5/3, 29/9; rolling mean = -, 4/3, 22/9
	out, err := RSRatio([]float64{1, 2, 4}, []float64{1, 1, 1}, 2)
	require.NoError(t, err)
	assert.True(t, IsAbsent(out[0]))
	assert.InDelta(t, 125.0, out[1], 1e-9)
	assert.InDelta(t, 100.0*29/22, out[2], 1e-9)
}

func TestRSRatio_CorruptPrices(t *testing.T) {
	tests := []struct {
		name  string
		sec   []float64
		bench []float64
	}{
		{"zero benchmark", []float64{1, 2}, []float64{1, 0}},
		{"negative benchmark", []float64{1, 2}, []float64{-1, 1}},
		{"zero security", []float64{0, 2}, []float64{1, 1}},
	}
	for _, tt := range tests {
		_, err := RSRatio(tt.sec, tt.bench, 2)
		assert.ErrorIs(t, err, ErrDivisionByZero, tt.name)
	}
}

func TestRSRatio_InvalidInput(t *testing.T) {
	_, err := RSRatio([]float64{1, 2}, []float64{1}, 2)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = RSRatio([]float64{1}, []float64{1}, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
