package model

import (
	"fmt"
	"strings"
	"time"
)

// MarketCondition is the per-tick market signal supplied by the caller.
type MarketCondition string

const (
	MarketGood MarketCondition = "GOOD"
	MarketOK   MarketCondition = "OK"
	MarketBad  MarketCondition = "BAD"
)

// ParseMarketCondition accepts GOOD, OK or BAD in any case.
func ParseMarketCondition(s string) (MarketCondition, error) {
	switch c := MarketCondition(strings.ToUpper(strings.TrimSpace(s))); c {
	case MarketGood, MarketOK, MarketBad:
		return c, nil
	default:
		return "", fmt.Errorf("unknown market condition %q", s)
	}
}

// RatePoint is one observed FX rate.
type RatePoint struct {
	Time time.Time `json:"time"`
	Rate float64   `json:"rate"`
}
