package recorder

import (
	"time"

	"github.com/google/uuid"

	"CrossPay/internal/model"
)

// RoutingEvent records one routing operation for a user.
type RoutingEvent struct {
	ID        string                `json:"id"`
	UserID    string                `json:"user_id"`
	Type      model.EventType       `json:"type"`
	Trigger   model.TriggerType     `json:"trigger"`
	Condition model.MarketCondition `json:"condition,omitempty"` // ticks only
	FxRate    float64               `json:"fx_rate"`
	Amount    float64               `json:"amount"` // deposited or withdrawn
	Converted float64               `json:"converted"`
	Before    model.Snapshot        `json:"before"`
	After     model.Snapshot        `json:"after"`
	At        time.Time             `json:"at"`
}

// SettingsEvent records a settings change.
type SettingsEvent struct {
	ID       string         `json:"id"`
	UserID   string         `json:"user_id"`
	Settings model.Settings `json:"settings"`
	At       time.Time      `json:"at"`
}

// NewEventID returns a fresh event id.
func NewEventID() string {
	return uuid.NewString()
}

// Recorder persists routing history for analysis.
type Recorder interface {
	RecordRouting(evt *RoutingEvent) error
	RecordSettings(evt *SettingsEvent) error
	Close() error
}

// HistoryReader is implemented by recorders that can read history back.
type HistoryReader interface {
	History(userID string, limit int) ([]RoutingEvent, error)
}
