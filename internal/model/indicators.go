package model

// MarketIndicators holds the indicators computed over the observed FX rates.
type MarketIndicators struct {
	CurrentRate   float64 `json:"current_rate"`
	SMAShort      float64 `json:"sma_short"`
	SMALong       float64 `json:"sma_long"`
	RSI           float64 `json:"rsi"`
	RangeHigh     float64 `json:"range_high"`
	RangeLow      float64 `json:"range_low"`
	RangePosition float64 `json:"range_position"` // 0.0 ~ 1.0
	Samples       int     `json:"samples"`
}
