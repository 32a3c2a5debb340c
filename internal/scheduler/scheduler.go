package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"CrossPay/internal/account"
	"CrossPay/internal/collector"
	"CrossPay/internal/model"
	"CrossPay/internal/notifier"
	"CrossPay/internal/observability"
	"CrossPay/internal/strategy"
)

// Scheduler runs the periodic optimisation ticks and the daily summary.
type Scheduler struct {
	Cron           *cron.Cron
	Accounts       *account.Manager
	Rates          *collector.RateCollector
	Notifier       notifier.Notifier
	Metrics        *observability.Metrics
	Thresholds     strategy.Thresholds
	FallbackFxRate float64
	Log            zerolog.Logger
	Ctx            context.Context
	Now            func() time.Time
}

// TickReport describes one optimise-all run.
type TickReport struct {
	Signal      *model.ConditionSignal
	FxRate      float64
	RateSource  string
	Conversions []notifier.Conversion
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, accounts *account.Manager, rates *collector.RateCollector, n notifier.Notifier, log zerolog.Logger) *Scheduler {
	if n == nil {
		n = notifier.Noop{}
	}
	return &Scheduler{
		Cron:           cron.New(cron.WithSeconds()),
		Accounts:       accounts,
		Rates:          rates,
		Notifier:       n,
		Thresholds:     strategy.DefaultThresholds(),
		FallbackFxRate: 1.0,
		Log:            log,
		Ctx:            ctx,
		Now:            time.Now,
	}
}

// RegisterAll registers the optimise and summary jobs.
func (s *Scheduler) RegisterAll(optimiseCron, summaryCron string) error {
	if _, err := s.Cron.AddFunc(optimiseCron, func() { s.RunOptimiseNow() }); err != nil {
		return fmt.Errorf("register optimise task: %w", err)
	}
	if _, err := s.Cron.AddFunc(summaryCron, s.dailySummary); err != nil {
		return fmt.Errorf("register summary task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info().Msg("scheduler stopped")
}

// Signal classifies the market from the observed rates. Without history the
// market is reported as OK.
func (s *Scheduler) Signal() *model.ConditionSignal {
	ind, err := s.Rates.Collect()
	if err != nil {
		if !errors.Is(err, collector.ErrNoRates) {
			s.Log.Error().Err(err).Msg("collect indicators")
		}
		return &model.ConditionSignal{Condition: model.MarketOK, At: s.Now()}
	}
	return strategy.Classify(ind, s.Thresholds)
}

// CurrentRate returns the latest observed rate, falling back to the configured one.
func (s *Scheduler) CurrentRate() (float64, string) {
	r, src, ok := collector.FirstOf(s.Rates, collector.FixedSource{Rate: s.FallbackFxRate})
	if !ok {
		return 0, ""
	}
	return r, src
}

// RunOptimiseNow runs one optimisation tick for every known user.
func (s *Scheduler) RunOptimiseNow() TickReport {
	sig := s.Signal()
	fxRate, src := s.CurrentRate()
	report := TickReport{Signal: sig, FxRate: fxRate, RateSource: src}

	if s.Metrics != nil {
		s.Metrics.ScheduledTicks.WithLabelValues(string(sig.Condition)).Inc()
		s.Metrics.SetCondition(string(sig.Condition))
	}

	users := s.Accounts.Users()
	for _, userID := range users {
		res, err := s.Accounts.Tick(userID, sig.Condition, fxRate, model.TriggerScheduled)
		if err != nil {
			s.Log.Error().Err(err).Str("user", userID).Msg("scheduled tick")
			continue
		}
		if res.ConvertedThisRun > 0 {
			report.Conversions = append(report.Conversions, notifier.Conversion{UserID: userID, Amount: res.ConvertedThisRun})
		}
	}

	s.Log.Info().
		Str("condition", string(sig.Condition)).
		Float64("score", sig.TotalScore).
		Float64("fx_rate", fxRate).
		Str("rate_source", src).
		Int("users", len(users)).
		Int("conversions", len(report.Conversions)).
		Msg("optimisation tick finished")

	if len(report.Conversions) > 0 {
		s.trySend(notifier.FormatConversions(sig, fxRate, report.Conversions))
	}
	return report
}

// Summary builds the daily summary message.
func (s *Scheduler) Summary() string {
	var users []notifier.UserSummary
	for _, id := range s.Accounts.Users() {
		users = append(users, notifier.UserSummary{UserID: id, Snapshot: s.Accounts.Get(id).Snapshot})
	}
	return notifier.FormatSummary(s.Now(), users)
}

func (s *Scheduler) dailySummary() {
	s.Log.Info().Msg("running daily summary")
	s.trySend(s.Summary())
}

// HandleCommand processes a bot command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch strings.ToLower(fields[0]) {
	case "/users":
		users := s.Accounts.Users()
		if len(users) == 0 {
			return "No accounts yet."
		}
		return "Accounts:\n• " + strings.Join(users, "\n• ")
	case "/state":
		if arg == "" {
			return "Usage: /state &lt;user&gt;"
		}
		v, ok := s.Accounts.Lookup(arg)
		if !ok {
			return unknownUser(arg)
		}
		return notifier.FormatState(v.UserID, v.Settings, v.Snapshot)
	case "/convert":
		if arg == "" {
			return "Usage: /convert &lt;user&gt;"
		}
		if _, ok := s.Accounts.Lookup(arg); !ok {
			return unknownUser(arg)
		}
		fxRate, _ := s.CurrentRate()
		res, err := s.Accounts.Override(arg, fxRate, model.TriggerCommand)
		if err != nil {
			return fmt.Sprintf("❌ convert failed: %v", err)
		}
		return notifier.FormatResult(arg, "Convert now", res)
	case "/market":
		return notifier.FormatSignal(s.Signal())
	case "/summary":
		return s.Summary()
	default:
		return notifier.FormatHelp()
	}
}

func unknownUser(id string) string {
	return fmt.Sprintf("Unknown user %s. Try /users.", html.EscapeString(id))
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Log.Error().Err(err).Msg("send notification")
	}
}
