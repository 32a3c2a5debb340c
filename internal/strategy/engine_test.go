package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrossPay/internal/model"
)

func TestClassify_StrongRate(t *testing.T) {
	ind := &model.MarketIndicators{
		CurrentRate:   1.05,
		SMAShort:      1.03,
		SMALong:       1.02,
		RSI:           72,
		RangePosition: 0.95,
		Samples:       30,
	}
	sig := Classify(ind, DefaultThresholds())
	require.Len(t, sig.Factors, 3)
	assert.Equal(t, model.MarketGood, sig.Condition)
	assert.Greater(t, sig.TotalScore, 1.0)
}

func TestClassify_WeakRate(t *testing.T) {
	ind := &model.MarketIndicators{
		CurrentRate:   0.97,
		SMALong:       1.00,
		RSI:           22,
		RangePosition: 0.02,
		Samples:       30,
	}
	sig := Classify(ind, DefaultThresholds())
	assert.Equal(t, model.MarketBad, sig.Condition)
	assert.InDelta(t, -2.0, sig.TotalScore, 1e-9)
}

func TestClassify_Sideways(t *testing.T) {
	ind := &model.MarketIndicators{
		CurrentRate:   1.00,
		SMALong:       1.00,
		RSI:           50,
		RangePosition: 0.5,
		Samples:       30,
	}
	sig := Classify(ind, DefaultThresholds())
	assert.Equal(t, model.MarketOK, sig.Condition)
	assert.Zero(t, sig.TotalScore)
}

func TestClassify_TooFewSamples(t *testing.T) {
	ind := &model.MarketIndicators{CurrentRate: 2, SMALong: 1, RSI: 99, RangePosition: 1, Samples: 2}
	sig := Classify(ind, DefaultThresholds())
	assert.Equal(t, model.MarketOK, sig.Condition)
	assert.Empty(t, sig.Factors)
}

func TestMapCondition_Boundaries(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		score float64
		want  model.MarketCondition
	}{
		{2.0, model.MarketGood},
		{0.6, model.MarketGood},
		{0.59, model.MarketOK},
		{0, model.MarketOK},
		{-0.59, model.MarketOK},
		{-0.6, model.MarketBad},
		{-2.0, model.MarketBad},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapCondition(tt.score, th), "score %.2f", tt.score)
	}
}

func TestScoreMADeviation_NoSMA(t *testing.T) {
	f := scoreMADeviation(&model.MarketIndicators{CurrentRate: 1})
	assert.Zero(t, f.Weighted)
}
