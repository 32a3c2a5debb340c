package account

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"CrossPay/internal/model"
	"CrossPay/internal/observability"
	"CrossPay/internal/recorder"
)

// RateObserver receives every FX rate reported with an operation.
type RateObserver interface {
	Observe(rate float64, at time.Time)
}

type account struct {
	mu       sync.Mutex
	settings model.Settings
	ledger   model.UserLedger
}

// Manager owns one Settings+UserLedger pair per user. Operations on the same
// user are serialized by that user's mutex; different users run in parallel.
type Manager struct {
	mu       sync.RWMutex
	accounts map[string]*account
	defaults model.Settings

	// saveMu guards persisted and the state file. Always taken after an
	// account lock, never before.
	saveMu    sync.Mutex
	persisted map[string]AccountState
	filePath  string

	clock   func() time.Time
	rec     recorder.Recorder
	rates   RateObserver
	metrics *observability.Metrics
	log     zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now as the source of operation timestamps.
func WithClock(clock func() time.Time) Option { return func(m *Manager) { m.clock = clock } }

// WithRecorder sets where routing events are recorded.
func WithRecorder(rec recorder.Recorder) Option { return func(m *Manager) { m.rec = rec } }

// WithRateObserver forwards reported FX rates, e.g. to the market collector.
func WithRateObserver(o RateObserver) Option { return func(m *Manager) { m.rates = o } }

// WithMetrics updates Prometheus metrics after every operation.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithLogger sets the logger, zerolog.Nop by default.
func WithLogger(log zerolog.Logger) Option { return func(m *Manager) { m.log = log } }

// NewManager creates a Manager, loading state from filePath when set.
// An empty filePath keeps everything in memory.
func NewManager(filePath string, defaults model.Settings, opts ...Option) (*Manager, error) {
	m := &Manager{
		accounts:  map[string]*account{},
		defaults:  defaults,
		persisted: map[string]AccountState{},
		filePath:  filePath,
		clock:     time.Now,
		rec:       recorder.NewNoopRecorder(),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if filePath != "" {
		state, err := LoadState(filePath)
		if err != nil {
			return nil, err
		}
		for id, st := range state.Accounts {
			m.accounts[id] = &account{settings: st.Settings, ledger: st.Ledger}
			m.persisted[id] = st
		}
		m.log.Info().Int("accounts", len(state.Accounts)).Str("file", filePath).Msg("account state loaded")
	}
	return m, nil
}

// Defaults returns the settings new users start with.
func (m *Manager) Defaults() model.Settings { return m.defaults }

// Users returns the known user ids, sorted.
func (m *Manager) Users() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// entry returns the account of userID, creating a fresh one on first access.
func (m *Manager) entry(userID string) *account {
	m.mu.RLock()
	a, ok := m.accounts[userID]
	m.mu.RUnlock()
	if ok {
		return a
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[userID]; ok {
		return a
	}
	a = &account{settings: m.defaults}
	m.accounts[userID] = a
	return a
}

// With runs fn with exclusive access to the user's settings and ledger and
// persists the result when fn succeeds. If fn fails or the state cannot be
// saved, the account is restored to what it was before. The pointers must
// not escape fn.
func (m *Manager) With(userID string, fn func(s *model.Settings, l *model.UserLedger) error) error {
	a := m.entry(userID)
	a.mu.Lock()
	defer a.mu.Unlock()

	settings, ledger := a.settings, a.ledger.Clone()
	if err := fn(&a.settings, &a.ledger); err != nil {
		a.settings, a.ledger = settings, ledger
		return err
	}
	if err := m.save(userID, a); err != nil {
		a.settings, a.ledger = settings, ledger
		m.log.Error().Err(err).Str("user", userID).Msg("save account state, change rolled back")
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// View is a read-only copy of one account.
type View struct {
	UserID   string         `json:"user_id"`
	Settings model.Settings `json:"settings"`
	Snapshot model.Snapshot `json:"state"`
}

// Get returns a copy of the user's settings and snapshot.
func (m *Manager) Get(userID string) View {
	a := m.entry(userID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return View{UserID: userID, Settings: a.settings, Snapshot: model.Project(&a.ledger)}
}

// Lookup is Get for existing users only. Unknown ids are not created.
func (m *Manager) Lookup(userID string) (View, bool) {
	m.mu.RLock()
	_, ok := m.accounts[userID]
	m.mu.RUnlock()
	if !ok {
		return View{}, false
	}
	return m.Get(userID), true
}

// Ledger returns a deep copy of the user's ledger.
func (m *Manager) Ledger(userID string) model.UserLedger {
	a := m.entry(userID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.Clone()
}

func (m *Manager) save(userID string, a *account) error {
	if m.filePath == "" {
		return nil
	}
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	prev, had := m.persisted[userID]
	m.persisted[userID] = AccountState{Settings: a.settings, Ledger: a.ledger.Clone()}
	if err := SaveState(m.filePath, &StateFile{Accounts: m.persisted}); err != nil {
		if had {
			m.persisted[userID] = prev
		} else {
			delete(m.persisted, userID)
		}
		return err
	}
	return nil
}
