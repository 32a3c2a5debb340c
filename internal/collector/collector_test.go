package collector

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateCollector_ObserveAndCap(t *testing.T) {
	c := NewRateCollector(LongPeriod, zerolog.Nop())
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		c.Observe(1+float64(i)*0.001, start.Add(time.Duration(i)*time.Minute))
	}
	c.Observe(-1, start)

	pts := c.Points()
	require.Len(t, pts, LongPeriod)
	assert.InDelta(t, 1.010, pts[0].Rate, 1e-12)

	rate, ok := c.LatestRate()
	assert.True(t, ok)
	assert.InDelta(t, 1.029, rate, 1e-12)
}

func TestRateCollector_Collect(t *testing.T) {
	c := NewRateCollector(100, zerolog.Nop())
	_, err := c.Collect()
	assert.ErrorIs(t, err, ErrNoRates)

	now := time.Now()
	for i := 0; i < 25; i++ {
		c.Observe(1+float64(i)*0.01, now)
	}
	ind, err := c.Collect()
	require.NoError(t, err)
	assert.InDelta(t, 1.24, ind.CurrentRate, 1e-12)
	assert.Equal(t, 100.0, ind.RSI)
	assert.Equal(t, 1.0, ind.RangePosition)
	assert.Greater(t, ind.SMAShort, ind.SMALong)
	assert.Equal(t, 25, ind.Samples)
}

func TestFirstOf(t *testing.T) {
	c := NewRateCollector(10, zerolog.Nop())
	rate, name, ok := FirstOf(c, FixedSource{Rate: 1.5})
	assert.True(t, ok)
	assert.Equal(t, "fixed", name)
	assert.Equal(t, 1.5, rate)

	c.Observe(1.2, time.Now())
	rate, name, _ = FirstOf(c, FixedSource{Rate: 1.5})
	assert.Equal(t, "observed", name)
	assert.Equal(t, 1.2, rate)

	_, _, ok = FirstOf(nil, FixedSource{})
	assert.False(t, ok)
}
