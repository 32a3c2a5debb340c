package model

// Default bucket weights, used on construction and whenever the configured
// weights sum to zero or less.
const (
	DefaultRentWeight      = 0.5
	DefaultSavingsWeight   = 0.3
	DefaultInvestingWeight = 0.2
)

// Settings holds one user's allocation parameters.
type Settings struct {
	InstantPercent  float64 `json:"instant_percent"`  // fraction of each deposit released immediately
	MaxWaitSeconds  int64   `json:"max_wait_seconds"` // pending funds fully convert after this long
	RentWeight      float64 `json:"rent_weight"`
	SavingsWeight   float64 `json:"savings_weight"`
	InvestingWeight float64 `json:"investing_weight"`
}

// SettingsUpdate is a partial override. Nil fields are left untouched.
type SettingsUpdate struct {
	InstantPercent  *float64 `json:"instant_percent,omitempty"`
	MaxWaitSeconds  *int64   `json:"max_wait_seconds,omitempty"`
	RentWeight      *float64 `json:"rent_weight,omitempty"`
	SavingsWeight   *float64 `json:"savings_weight,omitempty"`
	InvestingWeight *float64 `json:"investing_weight,omitempty"`
}

// NewSettings creates Settings with the default bucket weights.
func NewSettings(instantPercent float64, maxWaitSeconds int64) Settings {
	return Settings{
		InstantPercent:  instantPercent,
		MaxWaitSeconds:  maxWaitSeconds,
		RentWeight:      DefaultRentWeight,
		SavingsWeight:   DefaultSavingsWeight,
		InvestingWeight: DefaultInvestingWeight,
	}
}

// Apply copies every non-nil field of u into s. Values are not range checked.
func (s *Settings) Apply(u SettingsUpdate) {
	if u.InstantPercent != nil {
		s.InstantPercent = *u.InstantPercent
	}
	if u.MaxWaitSeconds != nil {
		s.MaxWaitSeconds = *u.MaxWaitSeconds
	}
	if u.RentWeight != nil {
		s.RentWeight = *u.RentWeight
	}
	if u.SavingsWeight != nil {
		s.SavingsWeight = *u.SavingsWeight
	}
	if u.InvestingWeight != nil {
		s.InvestingWeight = *u.InvestingWeight
	}
}

// IsEmpty reports whether the update carries no fields.
func (u SettingsUpdate) IsEmpty() bool {
	return u.InstantPercent == nil && u.MaxWaitSeconds == nil &&
		u.RentWeight == nil && u.SavingsWeight == nil && u.InvestingWeight == nil
}

// NormalizeWeights scales the bucket weights so they sum to 1.
// A non-positive sum resets them to the defaults.
func (s *Settings) NormalizeWeights() {
	total := s.RentWeight + s.SavingsWeight + s.InvestingWeight
	if total <= 0 {
		s.RentWeight = DefaultRentWeight
		s.SavingsWeight = DefaultSavingsWeight
		s.InvestingWeight = DefaultInvestingWeight
		return
	}
	s.RentWeight /= total
	s.SavingsWeight /= total
	s.InvestingWeight /= total
}
