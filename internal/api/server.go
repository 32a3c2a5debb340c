// Package api exposes the routing operations over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"CrossPay/internal/account"
	"CrossPay/internal/model"
	"CrossPay/internal/observability"
	"CrossPay/internal/recorder"
	"CrossPay/internal/routing"
)

// DefaultUserID is used when a request carries no user_id.
const DefaultUserID = "demo-user"

// DefaultHistoryLimit caps /api/history when no limit is given.
const DefaultHistoryLimit = 50

const maxHistoryLimit = 500

// errBadRequest marks malformed or out-of-range request input.
var errBadRequest = errors.New("bad request")

// MarketView reports the current market classification.
type MarketView interface {
	Signal() *model.ConditionSignal
	CurrentRate() (float64, string)
}

// Server wires the HTTP routes to the account manager.
type Server struct {
	App *fiber.App

	accounts *account.Manager
	market   MarketView
	history  recorder.HistoryReader
	health   *observability.HealthChecker
	metrics  *observability.Metrics
	log      zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables /api/history.
func WithHistory(h recorder.HistoryReader) Option { return func(s *Server) { s.history = h } }

// WithMetrics records request counts and latency.
func WithMetrics(m *observability.Metrics) Option { return func(s *Server) { s.metrics = m } }

// WithHealth sets the checker served on /healthz and /readyz.
func WithHealth(h *observability.HealthChecker) Option { return func(s *Server) { s.health = h } }

// WithLogger sets the logger, zerolog.Nop by default.
func WithLogger(log zerolog.Logger) Option { return func(s *Server) { s.log = log } }

// NewServer builds the fiber app with all routes registered.
func NewServer(accounts *account.Manager, market MarketView, opts ...Option) *Server {
	s := &Server{
		accounts: accounts,
		market:   market,
		health:   observability.NewHealthChecker(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.App = fiber.New(fiber.Config{
		AppName:               "crosspay",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})
	s.App.Use(s.observe)

	s.App.Get("/healthz", s.healthz)
	s.App.Get("/readyz", s.readyz)

	g := s.App.Group("/api")
	g.Get("/state", s.getState)
	g.Post("/salary/deposit", s.deposit)
	g.Post("/optimise", s.optimise)
	g.Post("/override", s.override)
	g.Post("/user/settings", s.updateSettings)
	g.Get("/optimisation/status", s.status)
	g.Post("/withdraw", s.withdraw)
	g.Get("/history", s.getHistory)
	g.Get("/market", s.getMarket)
	return s
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.App.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := err.Error()
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		status = fe.Code
	case errors.Is(err, errBadRequest),
		errors.Is(err, routing.ErrInvalidAmount),
		errors.Is(err, routing.ErrInvalidWeights):
		status = fiber.StatusBadRequest
	case errors.Is(err, routing.ErrInsufficientFunds):
		status = fiber.StatusConflict
	case errors.Is(err, recorder.ErrNoHistory):
		status = fiber.StatusServiceUnavailable
	default:
		s.log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("handler error")
		msg = "internal server error"
	}
	return c.Status(status).JSON(ErrorResponse{
		Code:    strconv.Itoa(status),
		Title:   http.StatusText(status),
		Message: msg,
	})
}

// observe records request metrics and a debug access log line.
func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	elapsed := time.Since(start)
	route := c.Route().Path
	status := c.Response().StatusCode()

	if s.metrics != nil {
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
	}
	s.log.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("duration", elapsed).
		Msg("request")
	return nil
}

func (s *Server) healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "uptime_seconds": int64(s.health.Uptime().Seconds())})
}

func (s *Server) readyz(c *fiber.Ctx) error {
	if !s.health.IsReady() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready"})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
