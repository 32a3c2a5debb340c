package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"CrossPay/internal/model"
	"CrossPay/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		HTTPAddr    string `yaml:"http_addr"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Routing struct {
		InstantPercent  float64 `yaml:"instant_percent"`
		MaxWaitSeconds  int64   `yaml:"max_wait_seconds"`
		RentWeight      float64 `yaml:"rent_weight"`
		SavingsWeight   float64 `yaml:"savings_weight"`
		InvestingWeight float64 `yaml:"investing_weight"`
	} `yaml:"routing"`
	Schedule struct {
		OptimiseCron string `yaml:"optimise_cron"`
		SummaryCron  string `yaml:"summary_cron"`
	} `yaml:"schedule"`
	Market struct {
		FallbackFxRate float64             `yaml:"fallback_fx_rate"`
		HistorySize    int                 `yaml:"history_size"`
		Thresholds     strategy.Thresholds `yaml:"thresholds"`
	} `yaml:"market"`
	State struct {
		File string `yaml:"file"`
	} `yaml:"state"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Routing.InstantPercent = -1 // unset marker, 0 is a valid value

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CROSSPAY_HTTP_ADDR"); v != "" {
		cfg.Server.HTTPAddr = v
	}
	if v := os.Getenv("CROSSPAY_METRICS_ADDR"); v != "" {
		cfg.Server.MetricsAddr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.State.File = v
	}
	if v := os.Getenv("CRON_OPTIMISE"); v != "" {
		cfg.Schedule.OptimiseCron = v
	}
	if v := os.Getenv("DEFAULT_INSTANT_PERCENT"); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DEFAULT_INSTANT_PERCENT: %w", err)
		}
		cfg.Routing.InstantPercent = pct
	}
	if v := os.Getenv("DEFAULT_MAX_WAIT_SECONDS"); v != "" {
		wait, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("DEFAULT_MAX_WAIT_SECONDS: %w", err)
		}
		cfg.Routing.MaxWaitSeconds = wait
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = ":8080"
	}
	if cfg.Server.MetricsAddr == "" {
		cfg.Server.MetricsAddr = ":9091"
	}
	if cfg.Routing.InstantPercent < 0 {
		cfg.Routing.InstantPercent = 0.4
	}
	if cfg.Routing.MaxWaitSeconds == 0 {
		cfg.Routing.MaxWaitSeconds = 24 * 3600
	}
	if cfg.Routing.RentWeight == 0 && cfg.Routing.SavingsWeight == 0 && cfg.Routing.InvestingWeight == 0 {
		cfg.Routing.RentWeight = model.DefaultRentWeight
		cfg.Routing.SavingsWeight = model.DefaultSavingsWeight
		cfg.Routing.InvestingWeight = model.DefaultInvestingWeight
	}
	if cfg.Schedule.OptimiseCron == "" {
		cfg.Schedule.OptimiseCron = "0 */15 * * * *"
	}
	if cfg.Schedule.SummaryCron == "" {
		cfg.Schedule.SummaryCron = "0 0 21 * * *"
	}
	if cfg.Market.FallbackFxRate == 0 {
		cfg.Market.FallbackFxRate = 1.0
	}
	if cfg.Market.HistorySize == 0 {
		cfg.Market.HistorySize = 500
	}
	def := strategy.DefaultThresholds()
	if cfg.Market.Thresholds.Good == 0 {
		cfg.Market.Thresholds.Good = def.Good
	}
	if cfg.Market.Thresholds.Bad == 0 {
		cfg.Market.Thresholds.Bad = def.Bad
	}
	if cfg.Market.Thresholds.MinSamples == 0 {
		cfg.Market.Thresholds.MinSamples = def.MinSamples
	}
	if cfg.State.File == "" {
		cfg.State.File = "data/accounts.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/crosspay.db"
	}
}

// DefaultSettings returns the settings new users start with.
func (c *Config) DefaultSettings() model.Settings {
	s := model.NewSettings(c.Routing.InstantPercent, c.Routing.MaxWaitSeconds)
	s.RentWeight = c.Routing.RentWeight
	s.SavingsWeight = c.Routing.SavingsWeight
	s.InvestingWeight = c.Routing.InvestingWeight
	return s
}

// TelegramEnabled reports whether notifications should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// Validate checks that all required fields are set and sane.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.Routing.InstantPercent < 0 || c.Routing.InstantPercent > 1 {
		return fmt.Errorf("routing.instant_percent must be within [0,1]")
	}
	if c.Routing.MaxWaitSeconds < 0 {
		return fmt.Errorf("routing.max_wait_seconds must not be negative")
	}
	if c.Routing.RentWeight < 0 || c.Routing.SavingsWeight < 0 || c.Routing.InvestingWeight < 0 {
		return fmt.Errorf("routing weights must not be negative")
	}
	if c.Routing.RentWeight+c.Routing.SavingsWeight+c.Routing.InvestingWeight <= 0 {
		return fmt.Errorf("routing weights must sum to a positive number")
	}
	if c.Market.FallbackFxRate <= 0 {
		return fmt.Errorf("market.fallback_fx_rate must be positive")
	}
	if c.Market.Thresholds.Good <= c.Market.Thresholds.Bad {
		return fmt.Errorf("market.thresholds.good must be above market.thresholds.bad")
	}
	return nil
}
