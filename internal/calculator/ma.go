package calculator

import (
	"errors"

	"CrossPay/internal/model"
)

// CalculateSMA computes the simple moving average of the given rates over the specified period.
func CalculateSMA(rates []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(rates) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(rates) - period; i < len(rates); i++ {
		sum += rates[i]
	}
	return sum / float64(period), nil
}

// SMAOrLast is CalculateSMA that falls back to the average of whatever is
// available when the history is shorter than period.
func SMAOrLast(rates []float64, period int) float64 {
	if len(rates) == 0 {
		return 0
	}
	if len(rates) < period {
		period = len(rates)
	}
	v, _ := CalculateSMA(rates, period)
	return v
}

// ExtractRates returns the rate values of points in order.
func ExtractRates(points []model.RatePoint) []float64 {
	rates := make([]float64, len(points))
	for i, p := range points {
		rates[i] = p.Rate
	}
	return rates
}
