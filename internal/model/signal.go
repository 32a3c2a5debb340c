package model

import "time"

// EventType names a state change recorded for a user.
type EventType string

const (
	EventDeposit  EventType = "DEPOSIT"
	EventTick     EventType = "TICK"
	EventOverride EventType = "OVERRIDE"
	EventWithdraw EventType = "WITHDRAW"
	EventSettings EventType = "SETTINGS"
)

// TriggerType indicates what started an operation.
type TriggerType string

const (
	TriggerAPI       TriggerType = "API"
	TriggerScheduled TriggerType = "SCHEDULED"
	TriggerCommand   TriggerType = "COMMAND"
)

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
}

// ConditionSignal is the output of the market classifier.
type ConditionSignal struct {
	Factors    []FactorScore    `json:"factors"`
	TotalScore float64          `json:"total_score"`
	Condition  MarketCondition  `json:"condition"`
	Indicators MarketIndicators `json:"indicators"`
	At         time.Time        `json:"at"`
}
