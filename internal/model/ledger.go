package model

import "time"

// UserLedger is the mutable routing state of one user.
type UserLedger struct {
	InstantAvailable float64 `json:"instant_available"`
	OptimisedPending float64 `json:"optimised_pending"`

	RentBucket      float64 `json:"rent_bucket"`
	SavingsBucket   float64 `json:"savings_bucket"`
	InvestingBucket float64 `json:"investing_bucket"`

	TotalSalaryReceived float64    `json:"total_salary_received"`
	LastDepositTime     *time.Time `json:"last_deposit_time,omitempty"`

	// BaselineFxRate is the amount-weighted average rate over all deposits,
	// i.e. the rate everything would have converted at on arrival.
	BaselineFxRate       *float64 `json:"baseline_fx_rate,omitempty"`
	ExtraGainedVsInstant float64  `json:"extra_gained_vs_instant"`

	// ConvertedTotal is the lifetime sum of amounts moved out of pending.
	ConvertedTotal float64 `json:"converted_total"`
}

// Snapshot is the external read-only view of a UserLedger.
type Snapshot struct {
	InstantAvailable     float64 `json:"instantAvailable"`
	OptimisedPending     float64 `json:"optimisedPending"`
	RentBucket           float64 `json:"rentBucket"`
	SavingsBucket        float64 `json:"savingsBucket"`
	InvestingBucket      float64 `json:"investingBucket"`
	TotalSalaryReceived  float64 `json:"totalSalaryReceived"`
	ExtraGainedVsInstant float64 `json:"extraGainedVsInstant"`
	BaselineFxRate       float64 `json:"baselineFxRate"`
}

// Project builds the Snapshot of l. An absent baseline is reported as 0.
func Project(l *UserLedger) Snapshot {
	snap := Snapshot{
		InstantAvailable:     l.InstantAvailable,
		OptimisedPending:     l.OptimisedPending,
		RentBucket:           l.RentBucket,
		SavingsBucket:        l.SavingsBucket,
		InvestingBucket:      l.InvestingBucket,
		TotalSalaryReceived:  l.TotalSalaryReceived,
		ExtraGainedVsInstant: l.ExtraGainedVsInstant,
	}
	if l.BaselineFxRate != nil {
		snap.BaselineFxRate = *l.BaselineFxRate
	}
	return snap
}

// Result is returned by every routing operation.
type Result struct {
	Deposited        float64 `json:"deposited"`
	ConvertedThisRun float64 `json:"converted_this_run"`
	Snapshot
}

// Clone returns a deep copy of l.
func (l *UserLedger) Clone() UserLedger {
	c := *l
	if l.LastDepositTime != nil {
		t := *l.LastDepositTime
		c.LastDepositTime = &t
	}
	if l.BaselineFxRate != nil {
		r := *l.BaselineFxRate
		c.BaselineFxRate = &r
	}
	return c
}
