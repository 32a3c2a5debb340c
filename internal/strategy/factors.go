package strategy

import (
	"fmt"

	"CrossPay/internal/model"
)

// A higher rate means more target currency per unit converted, so every
// factor scores high rates positively.

// scoreMADeviation scores how far the current rate sits from the long SMA.
// Weight: 0.40
func scoreMADeviation(ind *model.MarketIndicators) model.FactorScore {
	if ind.SMALong == 0 {
		return model.FactorScore{Name: "ma_deviation", Weight: 0.40, Commentary: "sma unavailable"}
	}
	deviation := (ind.CurrentRate - ind.SMALong) / ind.SMALong * 100 // percentage

	var score float64
	switch {
	case deviation >= 2:
		score = 2.0
	case deviation >= 1:
		score = 1.5
	case deviation >= 0.5:
		score = 1.0
	case deviation >= 0.1:
		score = 0.5
	case deviation > -0.1:
		score = 0
	case deviation > -0.5:
		score = -0.5
	case deviation > -1:
		score = -1.0
	case deviation > -2:
		score = -1.5
	default:
		score = -2.0
	}

	return model.FactorScore{
		Name:       "ma_deviation",
		RawScore:   score,
		Weight:     0.40,
		Weighted:   score * 0.40,
		Commentary: fmt.Sprintf("%+.2f%% vs sma%d", deviation, 20),
	}
}

// scoreMomentum scores the RSI of the observed rates.
// Weight: 0.30
func scoreMomentum(ind *model.MarketIndicators) model.FactorScore {
	rsi := ind.RSI
	var score float64
	switch {
	case rsi >= 75:
		score = 2.0
	case rsi >= 65:
		score = 1.0
	case rsi >= 55:
		score = 0.5
	case rsi > 45:
		score = 0
	case rsi > 35:
		score = -0.5
	case rsi > 25:
		score = -1.0
	default:
		score = -2.0
	}

	return model.FactorScore{
		Name:       "momentum",
		RawScore:   score,
		Weight:     0.30,
		Weighted:   score * 0.30,
		Commentary: fmt.Sprintf("rsi=%.0f", rsi),
	}
}

// scoreRangePosition scores where the rate sits inside its recent range.
// Weight: 0.30
func scoreRangePosition(ind *model.MarketIndicators) model.FactorScore {
	pos := ind.RangePosition * 100

	var score float64
	switch {
	case pos >= 90:
		score = 2.0
	case pos >= 75:
		score = 1.0
	case pos >= 60:
		score = 0.5
	case pos > 40:
		score = 0
	case pos > 25:
		score = -0.5
	case pos > 10:
		score = -1.0
	default:
		score = -2.0
	}

	return model.FactorScore{
		Name:       "range_position",
		RawScore:   score,
		Weight:     0.30,
		Weighted:   score * 0.30,
		Commentary: fmt.Sprintf("position=%.0f%%", pos),
	}
}
