package server

import (
	"context"
	"sync"

	"github.com/Digital-Creators-Team/prize-wheel-module/claim"
	"github.com/Digital-Creators-Team/prize-wheel-module/config"
	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/Digital-Creators-Team/prize-wheel-module/events/kafka"
	"github.com/Digital-Creators-Team/prize-wheel-module/pkg/fund"
	"github.com/Digital-Creators-Team/prize-wheel-module/pkg/providers"
	"github.com/Digital-Creators-Team/prize-wheel-module/prize"
	"github.com/Digital-Creators-Team/prize-wheel-module/roulette"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// SpinResult carries everything a spin returns to the player client
type SpinResult struct {
	Outcome *roulette.SpinOutcome `json:"outcome"`
	Claim   *claim.Claim          `json:"claim"`
	Balance decimal.Decimal       `json:"balance"`
}

// RouletteEntry is one wheel slot as served to rendering clients
type RouletteEntry struct {
	Prize  *prize.Prize `json:"prize"`
	Weight float64      `json:"weight"`
}

// RouletteView is the club's current wheel configuration. Entry order
// is the draw order; clients must render in this order or the wheel
// will land on the wrong card.
type RouletteView struct {
	Entries       []RouletteEntry    `json:"entries"`
	TotalWeight   float64            `json:"total_weight"`
	Overallocated bool               `json:"overallocated"`
	SpinCost      int64              `json:"spin_cost"`
	Wheel         config.WheelConfig `json:"wheel"`
}

// SpinService is the spin orchestration boundary consumed by handlers
type SpinService interface {
	RequestSpin(ctx context.Context, clubID, playerID string) (*SpinResult, error)
	GetRoulette(ctx context.Context, clubID string) (*RouletteView, error)
	GetLatestSpin(ctx context.Context, clubID string) (*roulette.SpinOutcome, error)
	GetSpinHistory(ctx context.Context, query *providers.SpinHistoryQuery) (*providers.SpinHistoryResponse, error)
}

// rouletteService implements SpinService over the domain packages and
// the external providers
type rouletteService struct {
	cfg      *config.Config
	registry *prize.Registry
	claims   *claim.Store
	selector *roulette.Selector
	wallet   providers.WalletProvider
	spins    providers.SpinProvider
	logs     providers.LogProvider
	funds    *fund.Service
	producer *kafka.Producer
	logger   zerolog.Logger

	// drawMu serializes draws: the injected rand source is not safe for
	// concurrent use.
	drawMu sync.Mutex
}

// NewSpinService creates the default spin service
func NewSpinService(
	cfg *config.Config,
	registry *prize.Registry,
	claims *claim.Store,
	selector *roulette.Selector,
	wallet providers.WalletProvider,
	spins providers.SpinProvider,
	logs providers.LogProvider,
	funds *fund.Service,
	producer *kafka.Producer,
	logger zerolog.Logger,
) SpinService {
	return &rouletteService{
		cfg:      cfg,
		registry: registry,
		claims:   claims,
		selector: selector,
		wallet:   wallet,
		spins:    spins,
		logs:     logs,
		funds:    funds,
		producer: producer,
		logger:   logger.With().Str("component", "spin_service").Logger(),
	}
}

// RequestSpin runs one complete spin: resolve the club's distribution,
// debit the fixed cost, draw, and record the outcome and claim.
//
// The debit happens before the draw and the outcome only exists once
// the debit committed; a failed debit creates nothing. A draw failure
// after a successful debit refunds the cost.
func (s *rouletteService) RequestSpin(ctx context.Context, clubID, playerID string) (*SpinResult, error) {
	dist := roulette.Resolve(s.registry.List(prize.ListFilter{ClubID: clubID, ActiveOnly: true}))
	if dist.Len() == 0 || dist.TotalWeight() <= 0 {
		return nil, errors.New(errors.ErrEmptyDistribution, "no prizes available to spin")
	}
	if dist.Overallocated() {
		s.logger.Warn().
			Str("club_id", clubID).
			Float64("total_weight", dist.TotalWeight()).
			Msg("Drop chances exceed 100%, normalizing at draw time")
	}

	cost := decimal.NewFromInt(s.cfg.Roulette.SpinCost)

	balance, err := s.wallet.GetBalance(ctx, playerID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWalletError, "failed to read player balance")
	}
	if balance.LessThan(cost) {
		return nil, errors.New(errors.ErrInsufficientBalance, "not enough points to spin")
	}

	if err := s.wallet.Withdraw(ctx, playerID, cost); err != nil {
		return nil, errors.Wrap(err, errors.ErrWalletError, "failed to debit spin cost")
	}

	s.drawMu.Lock()
	won, err := s.selector.Draw(dist)
	s.drawMu.Unlock()
	if err != nil {
		// Debit already committed; give the points back.
		if refundErr := s.wallet.Deposit(ctx, playerID, cost); refundErr != nil {
			s.logger.Error().
				Err(refundErr).
				Str("player_id", playerID).
				Msg("Failed to refund spin cost after draw failure")
		}
		return nil, err
	}

	outcome := roulette.NewSpinOutcome(playerID, clubID, won.ID, won.Name, s.cfg.Roulette.SpinCost)
	wonClaim := s.claims.Record(outcome.ID, playerID, clubID, won)

	s.funds.Accrue(clubID, outcome.ID, cost)

	// Points prizes pay straight back to the ledger; the claim still
	// tracks venue confirmation.
	if won.Type == prize.TypePoints && won.Value > 0 {
		payout := decimal.NewFromInt(won.Value)
		if err := s.wallet.Deposit(ctx, playerID, payout); err != nil {
			s.logger.Error().
				Err(err).
				Str("spin_id", outcome.ID).
				Str("player_id", playerID).
				Msg("Failed to credit points payout")
		} else {
			if _, err := s.funds.Payout(clubID, payout); err != nil {
				s.logger.Warn().Err(err).Str("club_id", clubID).Msg("Fund payout not recorded")
			}
		}
	}

	if err := s.spins.SaveLatestSpin(ctx, outcome); err != nil {
		s.logger.Error().
			Err(err).
			Str("spin_id", outcome.ID).
			Msg("Failed to publish latest spin for polling")
	}

	s.publishSpinEvent(outcome)

	if err := s.logs.LogSpin(ctx, &providers.SpinLog{
		SpinID:    outcome.ID,
		PlayerID:  playerID,
		ClubID:    clubID,
		PrizeID:   won.ID,
		PrizeName: won.Name,
		Cost:      outcome.Cost,
		Timestamp: outcome.CreatedAt,
	}); err != nil {
		s.logger.Error().Err(err).Str("spin_id", outcome.ID).Msg("Failed to record spin audit log")
	}

	newBalance, err := s.wallet.GetBalance(ctx, playerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("player_id", playerID).Msg("Failed to refresh balance after spin")
		newBalance = balance.Sub(cost)
	}

	s.logger.Info().
		Str("spin_id", outcome.ID).
		Str("club_id", clubID).
		Str("player_id", playerID).
		Str("prize_id", won.ID).
		Msg("Spin completed")

	return &SpinResult{
		Outcome: outcome,
		Claim:   wonClaim,
		Balance: newBalance,
	}, nil
}

func (s *rouletteService) publishSpinEvent(outcome *roulette.SpinOutcome) {
	if s.producer == nil {
		return
	}

	topic := "roulette.spins"
	if s.cfg.Kafka.Topics != nil {
		if t, ok := s.cfg.Kafka.Topics["spins"]; ok {
			topic = t
		}
	}

	event := kafka.SpinEvent{
		SpinID:    outcome.ID,
		PlayerID:  outcome.PlayerID,
		ClubID:    outcome.ClubID,
		PrizeID:   outcome.PrizeID,
		PrizeName: outcome.PrizeName,
		Cost:      outcome.Cost,
		Timestamp: outcome.CreatedAt,
	}
	if err := s.producer.SendMessage(topic, outcome.ClubID, event); err != nil {
		s.logger.Error().Err(err).Str("spin_id", outcome.ID).Msg("Failed to publish spin event")
	}
}

// GetRoulette returns the club's wheel as rendering clients consume it.
// The distribution is resolved fresh on every call; admin edits show up
// on the next read with no cache to invalidate.
func (s *rouletteService) GetRoulette(ctx context.Context, clubID string) (*RouletteView, error) {
	dist := roulette.Resolve(s.registry.List(prize.ListFilter{ClubID: clubID, ActiveOnly: true}))

	entries := lo.Map(dist.Entries(), func(e roulette.Entry, _ int) RouletteEntry {
		return RouletteEntry{Prize: e.Prize, Weight: e.Weight}
	})

	return &RouletteView{
		Entries:       entries,
		TotalWeight:   dist.TotalWeight(),
		Overallocated: dist.Overallocated(),
		SpinCost:      s.cfg.Roulette.SpinCost,
		Wheel:         s.cfg.Wheel,
	}, nil
}

// GetLatestSpin returns the club's newest spin outcome for display
// polling, or nil when none exists
func (s *rouletteService) GetLatestSpin(ctx context.Context, clubID string) (*roulette.SpinOutcome, error) {
	outcome, err := s.spins.GetLatestSpin(ctx, clubID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSpinStateError, "failed to load latest spin")
	}
	return outcome, nil
}

// GetSpinHistory proxies spin history from the audit service
func (s *rouletteService) GetSpinHistory(ctx context.Context, query *providers.SpinHistoryQuery) (*providers.SpinHistoryResponse, error) {
	if query.Limit <= 0 {
		query.Limit = 20
	}
	return s.logs.GetSpinHistory(ctx, query)
}
