package collector

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"CrossPay/internal/calculator"
	"CrossPay/internal/model"
)

// ErrNoRates is returned by Collect before any rate was observed.
var ErrNoRates = errors.New("no fx rates observed")

// Periods used for the indicators.
const (
	ShortPeriod = 5
	LongPeriod  = 20
	RSIPeriod   = 14
)

// RateCollector keeps a bounded history of FX rates reported by callers and
// computes indicators over it. Safe for concurrent use.
type RateCollector struct {
	mu       sync.RWMutex
	points   []model.RatePoint
	capacity int
	log      zerolog.Logger
}

// NewRateCollector creates a collector holding at most capacity points.
func NewRateCollector(capacity int, log zerolog.Logger) *RateCollector {
	if capacity < LongPeriod {
		capacity = LongPeriod
	}
	return &RateCollector{capacity: capacity, log: log}
}

func (c *RateCollector) Name() string { return "observed" }

// Observe appends a rate. Non-positive rates are ignored.
func (c *RateCollector) Observe(rate float64, at time.Time) {
	if rate <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.points = append(c.points, model.RatePoint{Time: at, Rate: rate})
	if len(c.points) > c.capacity {
		c.points = c.points[len(c.points)-c.capacity:]
	}
}

// LatestRate returns the most recently observed rate.
func (c *RateCollector) LatestRate() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.points) == 0 {
		return 0, false
	}
	return c.points[len(c.points)-1].Rate, true
}

// Points returns a copy of the history, oldest first.
func (c *RateCollector) Points() []model.RatePoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.RatePoint, len(c.points))
	copy(out, c.points)
	return out
}

// Collect computes all indicators over the observed history.
func (c *RateCollector) Collect() (*model.MarketIndicators, error) {
	rates := calculator.ExtractRates(c.Points())
	if len(rates) == 0 {
		return nil, ErrNoRates
	}
	current := rates[len(rates)-1]
	ind := &model.MarketIndicators{
		CurrentRate: current,
		SMAShort:    calculator.SMAOrLast(rates, ShortPeriod),
		SMALong:     calculator.SMAOrLast(rates, LongPeriod),
		Samples:     len(rates),
	}

	if rsi, err := calculator.CalculateRSI(rates, RSIPeriod); err != nil {
		c.log.Warn().Err(err).Msg("rsi calculation failed, defaulting to 50")
		ind.RSI = 50
	} else {
		ind.RSI = rsi
	}

	if h, l, err := calculator.CalculateRange(rates, LongPeriod); err != nil {
		c.log.Warn().Err(err).Msg("range calculation failed")
		ind.RangeHigh, ind.RangeLow = current, current
	} else {
		ind.RangeHigh, ind.RangeLow = h, l
	}

	if pos, err := calculator.CalculateRangePosition(current, ind.RangeHigh, ind.RangeLow); err != nil {
		c.log.Warn().Err(err).Msg("range position calculation failed")
		ind.RangePosition = 0.5
	} else {
		ind.RangePosition = pos
	}

	return ind, nil
}
