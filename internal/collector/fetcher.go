package collector

// RateSource supplies the FX rate used for scheduled ticks.
type RateSource interface {
	LatestRate() (float64, bool)
	Name() string
}

// FixedSource always reports the same rate. Used as the fallback when no
// rate has been observed yet.
type FixedSource struct {
	Rate float64
}

func (f FixedSource) Name() string { return "fixed" }

func (f FixedSource) LatestRate() (float64, bool) {
	return f.Rate, f.Rate > 0
}

// FirstOf returns the rate of the first source that has one.
func FirstOf(sources ...RateSource) (float64, string, bool) {
	for _, s := range sources {
		if s == nil {
			continue
		}
		if r, ok := s.LatestRate(); ok {
			return r, s.Name(), true
		}
	}
	return 0, "", false
}
