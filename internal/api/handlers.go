package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"CrossPay/internal/account"
	"CrossPay/internal/model"
	"CrossPay/internal/recorder"
)

type depositRequest struct {
	Amount          float64  `json:"amount"`
	FxRateAtDeposit float64  `json:"fx_rate_at_deposit"`
	InstantPercent  *float64 `json:"instant_percent"`
	MaxWaitSeconds  *int64   `json:"max_wait_seconds"`
	RentWeight      *float64 `json:"rent_weight"`
	SavingsWeight   *float64 `json:"savings_weight"`
	InvestingWeight *float64 `json:"investing_weight"`
}

type optimiseRequest struct {
	MarketCondition string  `json:"market_condition"`
	CurrentFxRate   float64 `json:"current_fx_rate"`
}

type overrideRequest struct {
	CurrentFxRate *float64 `json:"current_fx_rate"`
}

type withdrawRequest struct {
	Amount float64 `json:"amount"`
}

type withdrawResponse struct {
	UserID           string         `json:"user_id"`
	InstantAvailable float64        `json:"instant_available"`
	State            model.Snapshot `json:"state"`
}

type historyResponse struct {
	UserID string                  `json:"user_id"`
	Events []recorder.RoutingEvent `json:"events"`
}

type marketResponse struct {
	Signal     *model.ConditionSignal `json:"signal"`
	FxRate     float64                `json:"fx_rate"`
	RateSource string                 `json:"rate_source"`
}

// defaultOverrideRate applies when an override names no rate.
const defaultOverrideRate = 1.0

// userID returns the requested user id. The value is copied: fiber reuses
// the request buffer and the id outlives the request as a map key.
func userID(c *fiber.Ctx) string {
	return utils.CopyString(c.Query("user_id", DefaultUserID))
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func positiveRate(name string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s must be positive", errBadRequest, name)
	}
	return nil
}

func (s *Server) getState(c *fiber.Ctx) error {
	return c.JSON(s.accounts.Get(userID(c)))
}

func (s *Server) deposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := positiveRate("fx_rate_at_deposit", req.FxRateAtDeposit); err != nil {
		return err
	}
	res, err := s.accounts.Deposit(userID(c), account.DepositRequest{
		Amount:          req.Amount,
		FxRateAtDeposit: req.FxRateAtDeposit,
		Overrides: model.SettingsUpdate{
			InstantPercent:  req.InstantPercent,
			MaxWaitSeconds:  req.MaxWaitSeconds,
			RentWeight:      req.RentWeight,
			SavingsWeight:   req.SavingsWeight,
			InvestingWeight: req.InvestingWeight,
		},
	}, model.TriggerAPI)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) optimise(c *fiber.Ctx) error {
	var req optimiseRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	condition, err := model.ParseMarketCondition(req.MarketCondition)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := positiveRate("current_fx_rate", req.CurrentFxRate); err != nil {
		return err
	}
	res, err := s.accounts.Tick(userID(c), condition, req.CurrentFxRate, model.TriggerAPI)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) override(c *fiber.Ctx) error {
	var req overrideRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	rate := defaultOverrideRate
	if req.CurrentFxRate != nil {
		rate = *req.CurrentFxRate
	}
	if err := positiveRate("current_fx_rate", rate); err != nil {
		return err
	}
	res, err := s.accounts.Override(userID(c), rate, model.TriggerAPI)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) updateSettings(c *fiber.Ctx) error {
	var req model.SettingsUpdate
	if err := parseBody(c, &req); err != nil {
		return err
	}
	settings, err := s.accounts.UpdateSettings(userID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(settings)
}

func (s *Server) status(c *fiber.Ctx) error {
	return c.JSON(s.accounts.Status(userID(c)))
}

func (s *Server) withdraw(c *fiber.Ctx) error {
	var req withdrawRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id := userID(c)
	snap, err := s.accounts.Withdraw(id, req.Amount, model.TriggerAPI)
	if err != nil {
		return err
	}
	return c.JSON(withdrawResponse{UserID: id, InstantAvailable: snap.InstantAvailable, State: snap})
}

func (s *Server) getHistory(c *fiber.Ctx) error {
	if s.history == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "history not available")
	}
	limit := c.QueryInt("limit", DefaultHistoryLimit)
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	id := userID(c)
	events, err := s.history.History(id, limit)
	if err != nil {
		return err
	}
	if events == nil {
		events = []recorder.RoutingEvent{}
	}
	return c.JSON(historyResponse{UserID: id, Events: events})
}

func (s *Server) getMarket(c *fiber.Ctx) error {
	rate, src := s.market.CurrentRate()
	return c.JSON(marketResponse{Signal: s.market.Signal(), FxRate: rate, RateSource: src})
}
