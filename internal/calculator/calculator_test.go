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

	assert.Equal(t, 1.5, SMAOrLast([]float64{1, 2}, 20))
	assert.Zero(t, SMAOrLast(nil, 20))
}

func TestCalculateRSI(t *testing.T) {
	rising := make([]float64, 20)
	falling := make([]float64, 20)
	flat := make([]float64, 20)
	for i := range rising {
		rising[i] = 1 + float64(i)*0.01
		falling[i] = 1 - float64(i)*0.01
		flat[i] = 1
	}

	rsi, err := CalculateRSI(rising, 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)

	rsi, _ = CalculateRSI(falling, 14)
	assert.InDelta(t, 0.0, rsi, 1e-9)

	rsi, _ = CalculateRSI(flat, 14)
	assert.Equal(t, 50.0, rsi)

	rsi, _ = CalculateRSI(rising[:5], 14)
	assert.Equal(t, 50.0, rsi, "insufficient data defaults to neutral")
}

func TestCalculateRange(t *testing.T) {
	high, low, err := CalculateRange([]float64{5, 1, 3, 2}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, high)
	assert.Equal(t, 2.0, low)

	high, low, _ = CalculateRange([]float64{5, 1, 3, 2}, 0)
	assert.Equal(t, 5.0, high)
	assert.Equal(t, 1.0, low)

	_, _, err = CalculateRange(nil, 3)
	assert.Error(t, err)
}

func TestCalculateRangePosition(t *testing.T) {
	pos, _ := CalculateRangePosition(1.5, 2, 1)
	assert.Equal(t, 0.5, pos)
	pos, _ = CalculateRangePosition(3, 2, 1)
	assert.Equal(t, 1.0, pos)
	pos, _ = CalculateRangePosition(1, 1, 1)
	assert.Equal(t, 0.5, pos)
	_, err := CalculateRangePosition(1, 0, 1)
	assert.Error(t, err)
}
