package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrossPay/internal/model"
)

const eps = 1e-9

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newFixture(instantPercent float64) (*model.Settings, *model.UserLedger) {
	s := model.NewSettings(instantPercent, 24*3600)
	return &s, &model.UserLedger{}
}

func TestDepositSalary_Split(t *testing.T) {
	s, l := newFixture(0.25)
	l.InstantAvailable = 10
	l.OptimisedPending = 5

	res := DepositSalary(s, l, 200, 1.1, t0)

	assert.Equal(t, 200.0, res.Deposited)
	assert.Equal(t, 0.0, res.ConvertedThisRun)
	assert.InDelta(t, 60.0, l.InstantAvailable, eps)
	assert.InDelta(t, 155.0, l.OptimisedPending, eps)
	assert.InDelta(t, 215.0, l.InstantAvailable+l.OptimisedPending, eps)
	require.NotNil(t, l.LastDepositTime)
	assert.True(t, l.LastDepositTime.Equal(t0))
	assert.Zero(t, l.RentBucket+l.SavingsBucket+l.InvestingBucket, "deposits must not fill buckets")
}

func TestDepositSalary_FirstDepositSetsBaseline(t *testing.T) {
	s, l := newFixture(0.4)
	DepositSalary(s, l, 1000, 1.2345, t0)

	require.NotNil(t, l.BaselineFxRate)
	assert.Equal(t, 1.2345, *l.BaselineFxRate)
	assert.Equal(t, 1000.0, l.TotalSalaryReceived)
}

func TestDepositSalary_WeightedBaseline(t *testing.T) {
	s, l := newFixture(0.4)
	DepositSalary(s, l, 500, 1.00, t0)
	DepositSalary(s, l, 500, 1.10, t0.Add(time.Hour))

	require.NotNil(t, l.BaselineFxRate)
	assert.InDelta(t, 1.05, *l.BaselineFxRate, eps)

	DepositSalary(s, l, 1000, 1.20, t0.Add(2*time.Hour))
	assert.InDelta(t, (1.05*1000+1.20*1000)/2000, *l.BaselineFxRate, eps)
	assert.True(t, l.LastDepositTime.Equal(t0.Add(2*time.Hour)))
}

func TestDepositSalary_NonPositiveIsNoop(t *testing.T) {
	for _, amount := range []float64{0, -50} {
		s, l := newFixture(0.4)
		DepositSalary(s, l, 100, 1.0, t0)
		before := l.Clone()

		res := DepositSalary(s, l, amount, 2.0, t0.Add(time.Hour))

		assert.Zero(t, res.Deposited)
		assert.Zero(t, res.ConvertedThisRun)
		assert.Equal(t, model.Project(&before), res.Snapshot)
		assert.Equal(t, before, l.Clone())
	}
}

func TestOptimisationTick_MarketFractions(t *testing.T) {
	tests := []struct {
		condition model.MarketCondition
		fraction  float64
	}{
		{model.MarketGood, 0.5},
		{model.MarketOK, 0.2},
		{model.MarketBad, 0.0},
	}
	for _, tt := range tests {
		t.Run(string(tt.condition), func(t *testing.T) {
			s, l := newFixture(0.4)
			DepositSalary(s, l, 1000, 1.0, t0)

			res := OptimisationTick(s, l, tt.condition, 1.0, t0.Add(time.Minute))

			assert.InDelta(t, 600*tt.fraction, res.ConvertedThisRun, eps)
			assert.InDelta(t, 600*(1-tt.fraction), l.OptimisedPending, eps)
			assert.InDelta(t, 1000.0, l.InstantAvailable+l.OptimisedPending, eps)
		})
	}
}

func TestOptimisationTick_MaxWaitDominatesMarket(t *testing.T) {
	for _, c := range []model.MarketCondition{model.MarketGood, model.MarketOK, model.MarketBad} {
		t.Run(string(c), func(t *testing.T) {
			s, l := newFixture(0.4)
			DepositSalary(s, l, 1000, 1.0, t0)

			res := OptimisationTick(s, l, c, 1.0, t0.Add(24*time.Hour))

			assert.Equal(t, 600.0, res.ConvertedThisRun)
			assert.Zero(t, l.OptimisedPending)
			assert.InDelta(t, 1000.0, l.InstantAvailable, eps)
		})
	}
}

func TestOptimisationTick_ZeroWaitAlwaysConvertsAll(t *testing.T) {
	s, l := newFixture(0.4)
	s.MaxWaitSeconds = 0
	DepositSalary(s, l, 1000, 1.0, t0)

	res := OptimisationTick(s, l, model.MarketBad, 1.0, t0)
	assert.Equal(t, 600.0, res.ConvertedThisRun)
}

func TestOptimisationTick_Noops(t *testing.T) {
	s, l := newFixture(0.4)
	res := OptimisationTick(s, l, model.MarketGood, 1.0, t0)
	assert.Zero(t, res.ConvertedThisRun)
	assert.Equal(t, model.Snapshot{}, res.Snapshot)

	// everything instant, nothing pending
	s.InstantPercent = 1
	DepositSalary(s, l, 100, 1.0, t0)
	res = OptimisationTick(s, l, model.MarketGood, 1.0, t0.Add(48*time.Hour))
	assert.Zero(t, res.ConvertedThisRun)
	assert.Equal(t, 100.0, res.InstantAvailable)
}

func TestOverrideConvertNow(t *testing.T) {
	s, l := newFixture(0.4)
	DepositSalary(s, l, 1000, 1.0, t0)

	res := OverrideConvertNow(s, l, 1.0)
	assert.Equal(t, 600.0, res.ConvertedThisRun)
	assert.Zero(t, l.OptimisedPending)

	res = OverrideConvertNow(s, l, 1.0)
	assert.Zero(t, res.ConvertedThisRun)
	assert.InDelta(t, 1000.0, res.InstantAvailable, eps)
}

func TestOverrideConvertNow_NoDepositNoop(t *testing.T) {
	s, l := newFixture(0.4)
	res := OverrideConvertNow(s, l, 1.3)
	assert.Zero(t, res.ConvertedThisRun)
	assert.Zero(t, l.ExtraGainedVsInstant)
}

func TestUpdateFxGain_CanBeNegative(t *testing.T) {
	s, l := newFixture(0)
	DepositSalary(s, l, 100, 1.10, t0)
	OverrideConvertNow(s, l, 1.00)
	assert.InDelta(t, -10.0, l.ExtraGainedVsInstant, eps)
}

func TestUpdateFxGain_WithoutBaseline(t *testing.T) {
	l := &model.UserLedger{}
	updateFxGain(l, 100, 2.0)
	assert.Zero(t, l.ExtraGainedVsInstant)
}

func TestAllocateToBuckets_NormalizesWeights(t *testing.T) {
	s, l := newFixture(0.4)
	s.RentWeight, s.SavingsWeight, s.InvestingWeight = 2, 1, 1

	allocateToBuckets(100, s, l)

	assert.InDelta(t, 50.0, l.RentBucket, eps)
	assert.InDelta(t, 25.0, l.SavingsBucket, eps)
	assert.InDelta(t, 25.0, l.InvestingBucket, eps)
	assert.InDelta(t, 1.0, s.RentWeight+s.SavingsWeight+s.InvestingWeight, eps)
}

func TestAllocateToBuckets_ZeroWeightsFallBack(t *testing.T) {
	s, l := newFixture(0.4)
	s.RentWeight, s.SavingsWeight, s.InvestingWeight = 0, 0, 0

	allocateToBuckets(100, s, l)
	assert.InDelta(t, 50.0, l.RentBucket, eps)
	assert.InDelta(t, 30.0, l.SavingsBucket, eps)
	assert.InDelta(t, 20.0, l.InvestingBucket, eps)

	allocateToBuckets(-5, s, l)
	assert.InDelta(t, 50.0, l.RentBucket, eps)
}

func TestWithdraw(t *testing.T) {
	l := &model.UserLedger{InstantAvailable: 100}

	require.NoError(t, Withdraw(l, 40))
	assert.Equal(t, 60.0, l.InstantAvailable)
	assert.ErrorIs(t, Withdraw(l, 0), ErrInvalidAmount)
	assert.ErrorIs(t, Withdraw(l, 61), ErrInsufficientFunds)
	assert.Equal(t, 60.0, l.InstantAvailable)
}

func TestConvertFraction_Table(t *testing.T) {
	assert.Equal(t, 1.0, ConvertFraction(model.MarketBad, true))
	assert.Equal(t, 0.5, ConvertFraction(model.MarketGood, false))
	assert.Equal(t, 0.2, ConvertFraction(model.MarketOK, false))
	assert.Equal(t, 0.0, ConvertFraction(model.MarketBad, false))
	assert.Equal(t, 0.0, ConvertFraction(model.MarketCondition("WILD"), false))
}

func TestEndToEnd_DepositTickOverride(t *testing.T) {
	s, l := newFixture(0.4)

	res := DepositSalary(s, l, 1000, 1.00, t0)
	assert.InDelta(t, 400.0, res.InstantAvailable, eps)
	assert.InDelta(t, 600.0, res.OptimisedPending, eps)
	assert.InDelta(t, 1.00, res.BaselineFxRate, eps)

	res = OptimisationTick(s, l, model.MarketGood, 1.02, t0.Add(time.Hour))
	assert.InDelta(t, 300.0, res.ConvertedThisRun, eps)
	assert.InDelta(t, 700.0, res.InstantAvailable, eps)
	assert.InDelta(t, 300.0, res.OptimisedPending, eps)
	assert.InDelta(t, 150.0, res.RentBucket, eps)
	assert.InDelta(t, 90.0, res.SavingsBucket, eps)
	assert.InDelta(t, 60.0, res.InvestingBucket, eps)
	assert.InDelta(t, 6.0, res.ExtraGainedVsInstant, eps)

	res = OverrideConvertNow(s, l, 1.01)
	assert.InDelta(t, 300.0, res.ConvertedThisRun, eps)
	assert.InDelta(t, 1000.0, res.InstantAvailable, eps)
	assert.Zero(t, res.OptimisedPending)
	assert.InDelta(t, 300.0, res.RentBucket, eps)
	assert.InDelta(t, 180.0, res.SavingsBucket, eps)
	assert.InDelta(t, 120.0, res.InvestingBucket, eps)
	assert.InDelta(t, 9.0, res.ExtraGainedVsInstant, eps)
	assert.InDelta(t, 600.0, l.ConvertedTotal, eps)
	assert.Equal(t, 1000.0, res.TotalSalaryReceived)
}
