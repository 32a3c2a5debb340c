package strategy

import (
	"time"

	"CrossPay/internal/model"
)

// Thresholds configures the mapping from total score to market condition.
type Thresholds struct {
	Good       float64 `yaml:"good"`        // total score at or above -> GOOD
	Bad        float64 `yaml:"bad"`         // total score at or below -> BAD
	MinSamples int     `yaml:"min_samples"` // fewer observed rates -> OK
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{Good: 0.6, Bad: -0.6, MinSamples: 5}
}

// mapCondition maps a total score to a market condition.
func mapCondition(totalScore float64, th Thresholds) model.MarketCondition {
	switch {
	case totalScore >= th.Good:
		return model.MarketGood
	case totalScore <= th.Bad:
		return model.MarketBad
	default:
		return model.MarketOK
	}
}

// Classify computes the market condition from the observed-rate indicators.
// With too little history it reports OK.
func Classify(ind *model.MarketIndicators, th Thresholds) *model.ConditionSignal {
	sig := &model.ConditionSignal{
		Indicators: *ind,
		Condition:  model.MarketOK,
		At:         time.Now(),
	}
	if ind.Samples < th.MinSamples {
		return sig
	}

	sig.Factors = []model.FactorScore{
		scoreMADeviation(ind),
		scoreMomentum(ind),
		scoreRangePosition(ind),
	}
	for _, f := range sig.Factors {
		sig.TotalScore += f.Weighted
	}
	sig.Condition = mapCondition(sig.TotalScore, th)
	return sig
}
