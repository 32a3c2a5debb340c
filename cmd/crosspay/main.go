package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"CrossPay/internal/account"
	"CrossPay/internal/api"
	"CrossPay/internal/collector"
	"CrossPay/internal/config"
	"CrossPay/internal/notifier"
	"CrossPay/internal/observability"
	"CrossPay/internal/recorder"
	"CrossPay/internal/scheduler"
)

func main() {
	log := observability.NewLogger("main")
	log.Info().Msg("CrossPay starting")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	health := observability.NewHealthChecker()

	rec, history := openRecorders(ctx, cfg)
	defer func() {
		if err := rec.Close(); err != nil {
			log.Error().Err(err).Msg("close recorders")
		}
	}()

	rates := collector.NewRateCollector(cfg.Market.HistorySize, observability.NewLogger("collector"))

	accounts, err := account.NewManager(cfg.State.File, cfg.DefaultSettings(),
		account.WithRecorder(rec),
		account.WithRateObserver(rates),
		account.WithMetrics(metrics),
		account.WithLogger(observability.NewLogger("account")),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("init account manager")
	}
	log.Info().Int("users", len(accounts.Users())).Str("state_file", cfg.State.File).Msg("accounts loaded")

	var (
		n  notifier.Notifier = notifier.Noop{}
		tn *notifier.TelegramNotifier
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, observability.NewLogger("telegram"))
		n = tn
	} else {
		log.Info().Msg("telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, accounts, rates, n, observability.NewLogger("scheduler"))
	sched.Metrics = metrics
	sched.Thresholds = cfg.Market.Thresholds
	sched.FallbackFxRate = cfg.Market.FallbackFxRate
	if err := sched.RegisterAll(cfg.Schedule.OptimiseCron, cfg.Schedule.SummaryCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, running optimisation now")
		go sched.RunOptimiseNow()
	}

	opts := []api.Option{
		api.WithMetrics(metrics),
		api.WithHealth(health),
		api.WithLogger(observability.NewLogger("api")),
	}
	if history != nil {
		opts = append(opts, api.WithHistory(history))
	}
	srv := api.NewServer(accounts, sched, opts...)

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http server listening")
		if err := srv.Listen(cfg.Server.HTTPAddr); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: metricsMux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.Server.MetricsAddr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	health.SetReady(true)
	log.Info().Msg("CrossPay is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed, shutting down")
	}

	health.SetReady(false)
	cancel()

	if err := srv.Shutdown(); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	if err := metricsServer.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("metrics shutdown")
	}
	log.Info().Msg("CrossPay stopped")
}

// openRecorders builds the recorder chain. Unavailable backends are skipped
// with a warning; the service runs without history rather than not at all.
func openRecorders(ctx context.Context, cfg *config.Config) (recorder.Recorder, recorder.HistoryReader) {
	log := observability.NewLogger("recorder")
	var (
		recs    recorder.Multi
		history recorder.HistoryReader
	)

	if cfg.Database.SQLitePath != "" {
		if err := ensureDir(cfg.Database.SQLitePath); err != nil {
			log.Warn().Err(err).Msg("create sqlite directory")
		}
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, continuing without it")
		} else {
			recs = append(recs, sr)
			history = sr
		}
	}

	if cfg.NATS.URL != "" {
		connectCtx, c := context.WithTimeout(ctx, 10*time.Second)
		nr, err := recorder.NewNATSRecorder(connectCtx, cfg.NATS.URL, log)
		c()
		if err != nil {
			log.Warn().Err(err).Str("url", cfg.NATS.URL).Msg("init nats recorder failed, continuing without it")
		} else {
			recs = append(recs, nr)
		}
	}

	if len(recs) == 0 {
		return recorder.NewNoopRecorder(), nil
	}
	return recs, history
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
