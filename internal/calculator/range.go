package calculator

import (
	"errors"
	"math"
)

// CalculateRange scans the most recent window rates and returns the high and low.
// A non-positive window scans everything.
func CalculateRange(rates []float64, window int) (high, low float64, err error) {
	if len(rates) == 0 {
		return 0, 0, errors.New("no rates provided")
	}
	n := len(rates)
	start := 0
	if window > 0 && n > window {
		start = n - window
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if rates[i] > high {
			high = rates[i]
		}
		if rates[i] < low {
			low = rates[i]
		}
	}
	return high, low, nil
}

// CalculateRangePosition returns where current sits within [low, high] (0.0~1.0).
func CalculateRangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
