package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = CalculateSMA([]float64{1}, 2)
	assert.Error(t, err)
	_, err = CalculateSMA([]float64{1}, 0)
	assert.Error(t, err)
}

func TestRollingMean(t *testing.T) {
	out, err := RollingMean([]float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	assert.True(t, IsAbsent(out[0]))
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, out[1:])
}

func TestRollingMean_AbsentInsideWindow(t *testing.T) {
	out, err := RollingMean([]float64{1, Absent, 3, 4}, 2)
	require.NoError(t, err)
	assert.True(t, IsAbsent(out[0]))
	assert.True(t, IsAbsent(out[1]))
	assert.True(t, IsAbsent(out[2]))
	assert.Equal(t, 3.5, out[3])
}

func TestRollingMean_InvalidWindow(t *testing.T) {
	_, err := RollingMean([]float64{1}, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
