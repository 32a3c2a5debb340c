package recorder

import "errors"

// Multi fans every event out to several recorders. All recorders are
// attempted; their errors are joined.
type Multi []Recorder

func (m Multi) RecordRouting(evt *RoutingEvent) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordRouting(evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) RecordSettings(evt *SettingsEvent) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordSettings(evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// History reads from the first member that supports it.
func (m Multi) History(userID string, limit int) ([]RoutingEvent, error) {
	for _, r := range m {
		if h, ok := r.(HistoryReader); ok {
			return h.History(userID, limit)
		}
	}
	return nil, ErrNoHistory
}

// ErrNoHistory is returned when no recorder keeps readable history.
var ErrNoHistory = errors.New("history not available")
