package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"CrossPay/internal/model"
)

// SQLiteRecorder persists routing history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS routing_events (
			id                  TEXT PRIMARY KEY,
			user_id             TEXT NOT NULL,
			timestamp           INTEGER NOT NULL,
			event_type          TEXT NOT NULL,
			trigger_type        TEXT,
			market_condition    TEXT,
			fx_rate             REAL,
			amount              REAL,
			converted           REAL,
			instant_before      REAL,
			pending_before      REAL,
			rent_before         REAL,
			savings_before      REAL,
			investing_before    REAL,
			total_before        REAL,
			extra_before        REAL,
			baseline_before     REAL,
			instant_after       REAL,
			pending_after       REAL,
			rent_after          REAL,
			savings_after       REAL,
			investing_after     REAL,
			total_received      REAL,
			extra_gained        REAL,
			baseline_fx_rate    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_routing_user_ts ON routing_events(user_id, timestamp)`,

		`CREATE TABLE IF NOT EXISTS settings_history (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			timestamp        INTEGER NOT NULL,
			instant_percent  REAL,
			max_wait_seconds INTEGER,
			rent_weight      REAL,
			savings_weight   REAL,
			investing_weight REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_settings_user_ts ON settings_history(user_id, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return r.addMissingColumns("routing_events", beforeColumns)
}

// beforeColumns were added after the first schema version.
var beforeColumns = []string{
	"rent_before", "savings_before", "investing_before",
	"total_before", "extra_before", "baseline_before",
}

// addMissingColumns adds REAL columns that databases created by older
// versions lack.
func (r *SQLiteRecorder) addMissingColumns(table string, cols []string) error {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("table info %s: %w", table, err)
	}
	have := map[string]bool{}
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("scan table info: %w", err)
		}
		have[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, c := range cols {
		if have[c] {
			continue
		}
		if _, err := r.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s REAL", table, c)); err != nil {
			return fmt.Errorf("add column %s: %w", c, err)
		}
		r.log.Info().Str("table", table).Str("column", c).Msg("column added")
	}
	return nil
}

func (r *SQLiteRecorder) RecordRouting(evt *RoutingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, a := evt.Before, evt.After
	_, err := r.db.Exec(`INSERT INTO routing_events
		(id, user_id, timestamp, event_type, trigger_type, market_condition,
		 fx_rate, amount, converted,
		 instant_before, pending_before, rent_before, savings_before, investing_before,
		 total_before, extra_before, baseline_before,
		 instant_after, pending_after, rent_after, savings_after, investing_after,
		 total_received, extra_gained, baseline_fx_rate)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		evt.ID, evt.UserID, evt.At.UnixNano(), string(evt.Type), string(evt.Trigger), string(evt.Condition),
		evt.FxRate, evt.Amount, evt.Converted,
		b.InstantAvailable, b.OptimisedPending, b.RentBucket, b.SavingsBucket, b.InvestingBucket,
		b.TotalSalaryReceived, b.ExtraGainedVsInstant, b.BaselineFxRate,
		a.InstantAvailable, a.OptimisedPending, a.RentBucket, a.SavingsBucket, a.InvestingBucket,
		a.TotalSalaryReceived, a.ExtraGainedVsInstant, a.BaselineFxRate,
	)
	return err
}

func (r *SQLiteRecorder) RecordSettings(evt *SettingsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := evt.Settings
	_, err := r.db.Exec(`INSERT INTO settings_history
		(id, user_id, timestamp, instant_percent, max_wait_seconds, rent_weight, savings_weight, investing_weight)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.ID, evt.UserID, evt.At.UnixNano(),
		s.InstantPercent, s.MaxWaitSeconds, s.RentWeight, s.SavingsWeight, s.InvestingWeight,
	)
	return err
}

// History returns the most recent routing events of a user, newest first.
func (r *SQLiteRecorder) History(userID string, limit int) ([]RoutingEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`SELECT
		id, user_id, timestamp, event_type, trigger_type, market_condition,
		fx_rate, amount, converted,
		instant_before, pending_before,
		COALESCE(rent_before, 0), COALESCE(savings_before, 0), COALESCE(investing_before, 0),
		COALESCE(total_before, 0), COALESCE(extra_before, 0), COALESCE(baseline_before, 0),
		instant_after, pending_after,
		rent_after, savings_after, investing_after,
		total_received, extra_gained, baseline_fx_rate
		FROM routing_events WHERE user_id = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []RoutingEvent
	for rows.Next() {
		var (
			evt                      RoutingEvent
			ts                       int64
			eventType, trigger, cond string
		)
		if err := rows.Scan(
			&evt.ID, &evt.UserID, &ts, &eventType, &trigger, &cond,
			&evt.FxRate, &evt.Amount, &evt.Converted,
			&evt.Before.InstantAvailable, &evt.Before.OptimisedPending,
			&evt.Before.RentBucket, &evt.Before.SavingsBucket, &evt.Before.InvestingBucket,
			&evt.Before.TotalSalaryReceived, &evt.Before.ExtraGainedVsInstant, &evt.Before.BaselineFxRate,
			&evt.After.InstantAvailable, &evt.After.OptimisedPending,
			&evt.After.RentBucket, &evt.After.SavingsBucket, &evt.After.InvestingBucket,
			&evt.After.TotalSalaryReceived, &evt.After.ExtraGainedVsInstant, &evt.After.BaselineFxRate,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		evt.At = time.Unix(0, ts).UTC()
		evt.Type = model.EventType(eventType)
		evt.Trigger = model.TriggerType(trigger)
		evt.Condition = model.MarketCondition(cond)
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
