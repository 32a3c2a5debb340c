package routing

import "CrossPay/internal/model"

// updateBaselineFxRate folds a deposit into the amount-weighted baseline.
// Must run before the deposit is added to TotalSalaryReceived.
func updateBaselineFxRate(ledger *model.UserLedger, amount, fxRateAtDeposit float64) {
	if amount <= 0 {
		return
	}
	if ledger.BaselineFxRate == nil || ledger.TotalSalaryReceived <= 0 {
		rate := fxRateAtDeposit
		ledger.BaselineFxRate = &rate
		return
	}

	previousTotal := ledger.TotalSalaryReceived
	weighted := (*ledger.BaselineFxRate*previousTotal + fxRateAtDeposit*amount) / (previousTotal + amount)
	ledger.BaselineFxRate = &weighted
}

// allocateToBuckets splits a converted amount across rent, savings and
// investing. Normalizes the settings' weights in place.
func allocateToBuckets(amount float64, settings *model.Settings, ledger *model.UserLedger) {
	if amount <= 0 {
		return
	}
	settings.NormalizeWeights()

	ledger.RentBucket += amount * settings.RentWeight
	ledger.SavingsBucket += amount * settings.SavingsWeight
	ledger.InvestingBucket += amount * settings.InvestingWeight
}

// updateFxGain accumulates what converting now earned (or lost) against
// converting everything at the baseline rate.
func updateFxGain(ledger *model.UserLedger, converted, currentFxRate float64) {
	if converted <= 0 || ledger.BaselineFxRate == nil {
		return
	}
	ledger.ExtraGainedVsInstant += converted * (currentFxRate - *ledger.BaselineFxRate)
}
