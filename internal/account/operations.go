package account

import (
	"fmt"
	"math"
	"time"

	"CrossPay/internal/model"
	"CrossPay/internal/recorder"
	"CrossPay/internal/routing"
)

// DepositRequest is a salary deposit with optional settings overrides that
// are applied before the deposit is split.
type DepositRequest struct {
	Amount          float64
	FxRateAtDeposit float64
	Overrides       model.SettingsUpdate
}

// Deposit validates and applies a salary deposit.
func (m *Manager) Deposit(userID string, req DepositRequest, trigger model.TriggerType) (model.Result, error) {
	if req.Amount <= 0 {
		return model.Result{}, routing.ErrInvalidAmount
	}

	var (
		res      model.Result
		before   model.Snapshot
		settings model.Settings
	)
	now := m.clock()
	err := m.With(userID, func(s *model.Settings, l *model.UserLedger) error {
		if !req.Overrides.IsEmpty() {
			next := *s
			next.Apply(req.Overrides)
			if err := checkWeights(next); err != nil {
				return err
			}
			*s = next
		}
		before = model.Project(l)
		res = routing.DepositSalary(s, l, req.Amount, req.FxRateAtDeposit, now)
		settings = *s
		return nil
	})
	if err != nil {
		return model.Result{}, err
	}

	if !req.Overrides.IsEmpty() {
		m.recordSettings(userID, settings, now)
	}
	m.observeRate(req.FxRateAtDeposit, now)
	m.finish(userID, &recorder.RoutingEvent{
		Type: model.EventDeposit, Trigger: trigger, FxRate: req.FxRateAtDeposit,
		Amount: res.Deposited, Before: before, After: res.Snapshot, At: now,
	})
	return res, nil
}

// Tick runs one optimisation step for the user.
func (m *Manager) Tick(userID string, condition model.MarketCondition, currentFxRate float64, trigger model.TriggerType) (model.Result, error) {
	var (
		res    model.Result
		before model.Snapshot
	)
	now := m.clock()
	err := m.With(userID, func(s *model.Settings, l *model.UserLedger) error {
		before = model.Project(l)
		res = routing.OptimisationTick(s, l, condition, currentFxRate, now)
		return nil
	})
	if err != nil {
		return model.Result{}, err
	}

	// Scheduled ticks reuse an already observed rate.
	if trigger != model.TriggerScheduled {
		m.observeRate(currentFxRate, now)
	}
	m.finish(userID, &recorder.RoutingEvent{
		Type: model.EventTick, Trigger: trigger, Condition: condition, FxRate: currentFxRate,
		Converted: res.ConvertedThisRun, Before: before, After: res.Snapshot, At: now,
	})
	return res, nil
}

// Override converts all pending funds of the user now.
func (m *Manager) Override(userID string, currentFxRate float64, trigger model.TriggerType) (model.Result, error) {
	var (
		res    model.Result
		before model.Snapshot
	)
	now := m.clock()
	err := m.With(userID, func(s *model.Settings, l *model.UserLedger) error {
		before = model.Project(l)
		res = routing.OverrideConvertNow(s, l, currentFxRate)
		return nil
	})
	if err != nil {
		return model.Result{}, err
	}

	m.observeRate(currentFxRate, now)
	m.finish(userID, &recorder.RoutingEvent{
		Type: model.EventOverride, Trigger: trigger, FxRate: currentFxRate,
		Converted: res.ConvertedThisRun, Before: before, After: res.Snapshot, At: now,
	})
	return res, nil
}

// Withdraw takes amount out of the user's instant balance.
func (m *Manager) Withdraw(userID string, amount float64, trigger model.TriggerType) (model.Snapshot, error) {
	var before, after model.Snapshot
	now := m.clock()
	err := m.With(userID, func(_ *model.Settings, l *model.UserLedger) error {
		before = model.Project(l)
		if err := routing.Withdraw(l, amount); err != nil {
			return err
		}
		after = model.Project(l)
		return nil
	})
	if err != nil {
		return model.Snapshot{}, err
	}

	m.finish(userID, &recorder.RoutingEvent{
		Type: model.EventWithdraw, Trigger: trigger, Amount: amount,
		Before: before, After: after, At: now,
	})
	return after, nil
}

// UpdateSettings applies a partial settings update. Updates leaving the
// bucket weights with a non-positive sum are rejected.
func (m *Manager) UpdateSettings(userID string, u model.SettingsUpdate) (model.Settings, error) {
	var out model.Settings
	err := m.With(userID, func(s *model.Settings, _ *model.UserLedger) error {
		next := *s
		next.Apply(u)
		if err := checkWeights(next); err != nil {
			return err
		}
		*s = next
		out = next
		return nil
	})
	if err != nil {
		return model.Settings{}, err
	}
	m.recordSettings(userID, out, m.clock())
	return out, nil
}

// Status describes how far the user's pending funds are from forced conversion.
type Status struct {
	Pending         float64    `json:"pending"`
	Converted       float64    `json:"converted"`
	Progress        float64    `json:"progress"`  // 0..1, share of the max wait elapsed
	TimeLeft        float64    `json:"time_left"` // seconds until full conversion
	MaxWaitSeconds  int64      `json:"max_wait_seconds"`
	LastDepositTime *time.Time `json:"last_deposit_time,omitempty"`
}

// Status reports the optimisation progress of the user.
func (m *Manager) Status(userID string) Status {
	a := m.entry(userID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return computeStatus(&a.settings, &a.ledger, m.clock())
}

func computeStatus(s *model.Settings, l *model.UserLedger, now time.Time) Status {
	st := Status{
		Pending:        l.OptimisedPending,
		Converted:      l.ConvertedTotal,
		MaxWaitSeconds: s.MaxWaitSeconds,
	}
	maxWait := float64(s.MaxWaitSeconds)
	if l.LastDepositTime == nil {
		st.TimeLeft = math.Max(0, maxWait)
		return st
	}
	t := *l.LastDepositTime
	st.LastDepositTime = &t

	if maxWait <= 0 {
		st.Progress = 1
		return st
	}
	elapsed := now.Sub(t).Seconds()
	st.Progress = math.Max(0, math.Min(1, elapsed/maxWait))
	st.TimeLeft = math.Max(0, maxWait-elapsed)
	return st
}

func checkWeights(s model.Settings) error {
	if s.RentWeight+s.SavingsWeight+s.InvestingWeight <= 0 {
		return fmt.Errorf("rent=%g savings=%g investing=%g: %w",
			s.RentWeight, s.SavingsWeight, s.InvestingWeight, routing.ErrInvalidWeights)
	}
	return nil
}

func (m *Manager) observeRate(rate float64, at time.Time) {
	if m.rates != nil && rate > 0 {
		m.rates.Observe(rate, at)
	}
}

// finish records evt and updates metrics. Recorder failures are logged,
// never returned: the ledger has already changed.
func (m *Manager) finish(userID string, evt *recorder.RoutingEvent) {
	evt.ID = recorder.NewEventID()
	evt.UserID = userID

	if m.metrics != nil {
		m.metrics.Operations.WithLabelValues(string(evt.Type), string(evt.Trigger)).Inc()
		if evt.Type == model.EventDeposit {
			m.metrics.DepositedAmount.Add(evt.Amount)
		}
		if evt.Converted > 0 {
			m.metrics.ConvertedAmount.WithLabelValues(string(evt.Type)).Add(evt.Converted)
		}
		m.metrics.PendingAmount.WithLabelValues(userID).Set(evt.After.OptimisedPending)
	}

	m.log.Debug().
		Str("user", userID).
		Str("type", string(evt.Type)).
		Str("trigger", string(evt.Trigger)).
		Float64("amount", evt.Amount).
		Float64("converted", evt.Converted).
		Float64("pending", evt.After.OptimisedPending).
		Msg("routing operation applied")

	if err := m.rec.RecordRouting(evt); err != nil {
		m.log.Error().Err(err).Str("user", userID).Str("event_id", evt.ID).Msg("record routing event")
		if m.metrics != nil {
			m.metrics.RecorderErrors.WithLabelValues("routing").Inc()
		}
	}
}

func (m *Manager) recordSettings(userID string, s model.Settings, at time.Time) {
	err := m.rec.RecordSettings(&recorder.SettingsEvent{
		ID: recorder.NewEventID(), UserID: userID, Settings: s, At: at,
	})
	if err != nil {
		m.log.Error().Err(err).Str("user", userID).Msg("record settings event")
		if m.metrics != nil {
			m.metrics.RecorderErrors.WithLabelValues("settings").Inc()
		}
	}
}
