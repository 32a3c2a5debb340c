package routing

import (
	"errors"
	"time"

	"CrossPay/internal/model"
)

var (
	// ErrInvalidAmount is returned at the boundary for non-positive amounts.
	// The engine itself treats them as no-ops.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidWeights is returned at the boundary when bucket weights sum to zero or less.
	ErrInvalidWeights = errors.New("bucket weights must sum to a positive number")
	// ErrInsufficientFunds is returned when a withdrawal exceeds the instant balance.
	ErrInsufficientFunds = errors.New("insufficient instant funds")
)

// ConvertFractions maps each market condition to the share of pending funds
// converted on a tick that happens before the max wait is reached.
var ConvertFractions = map[model.MarketCondition]float64{
	model.MarketGood: 0.5,
	model.MarketOK:   0.2,
	model.MarketBad:  0.0,
}

// ConvertFraction returns the share of pending funds to convert. Reaching the
// max wait always converts everything, whatever the market says.
func ConvertFraction(condition model.MarketCondition, maxWaitReached bool) float64 {
	if maxWaitReached {
		return 1.0
	}
	switch condition {
	case model.MarketGood, model.MarketOK, model.MarketBad:
		return ConvertFractions[condition]
	default:
		return 0
	}
}

// DepositSalary records a salary deposit and splits it into instant and
// pending funds. Non-positive amounts leave the ledger untouched.
func DepositSalary(settings *model.Settings, ledger *model.UserLedger, amount, fxRateAtDeposit float64, now time.Time) model.Result {
	if amount <= 0 {
		return result(ledger, 0, 0)
	}

	ledger.LastDepositTime = &now

	updateBaselineFxRate(ledger, amount, fxRateAtDeposit)
	ledger.TotalSalaryReceived += amount

	instantAmount := amount * settings.InstantPercent
	optimisedAmount := amount - instantAmount

	ledger.InstantAvailable += instantAmount
	ledger.OptimisedPending += optimisedAmount

	return result(ledger, amount, 0)
}

// OptimisationTick converts part of the pending funds based on the market
// condition, or all of them once MaxWaitSeconds has elapsed since the last deposit.
func OptimisationTick(settings *model.Settings, ledger *model.UserLedger, condition model.MarketCondition, currentFxRate float64, now time.Time) model.Result {
	if ledger.LastDepositTime == nil || ledger.OptimisedPending <= 0 {
		return result(ledger, 0, 0)
	}

	elapsed := now.Sub(*ledger.LastDepositTime).Seconds()
	fraction := ConvertFraction(condition, elapsed >= float64(settings.MaxWaitSeconds))

	converted := convert(settings, ledger, ledger.OptimisedPending*fraction, currentFxRate)
	return result(ledger, 0, converted)
}

// OverrideConvertNow converts all pending funds immediately.
func OverrideConvertNow(settings *model.Settings, ledger *model.UserLedger, currentFxRate float64) model.Result {
	if ledger.OptimisedPending <= 0 {
		return result(ledger, 0, 0)
	}
	converted := convert(settings, ledger, ledger.OptimisedPending, currentFxRate)
	return result(ledger, 0, converted)
}

// Withdraw takes amount out of the instant balance.
func Withdraw(ledger *model.UserLedger, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > ledger.InstantAvailable {
		return ErrInsufficientFunds
	}
	ledger.InstantAvailable -= amount
	return nil
}

func convert(settings *model.Settings, ledger *model.UserLedger, amount, currentFxRate float64) float64 {
	if amount >= ledger.OptimisedPending {
		// exact zero rather than a float residue
		amount = ledger.OptimisedPending
		ledger.OptimisedPending = 0
	} else {
		ledger.OptimisedPending -= amount
	}
	ledger.InstantAvailable += amount
	ledger.ConvertedTotal += amount

	allocateToBuckets(amount, settings, ledger)
	updateFxGain(ledger, amount, currentFxRate)
	return amount
}

func result(ledger *model.UserLedger, deposited, converted float64) model.Result {
	return model.Result{
		Deposited:        deposited,
		ConvertedThisRun: converted,
		Snapshot:         model.Project(ledger),
	}
}
