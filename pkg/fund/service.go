package fund

import (
	"context"
	"sync"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DefaultBroadcastInterval is the default interval for flushing
// buffered updates to listeners
const DefaultBroadcastInterval = 2 * time.Second

// Service tracks per-club prize funds: a share of every spin cost
// accrues to the club's fund, and points-typed payouts draw it down.
// Balance changes are buffered and flushed to listeners on an interval
// so a busy wheel does not flood venue dashboards.
type Service struct {
	mu          sync.RWMutex
	clubs       map[string]ClubConfig
	balances    map[string]decimal.Decimal
	buffer      map[string]Update
	broad       *Broadcaster
	logger      zerolog.Logger
	interval    time.Duration
	defaultRate decimal.Decimal
	ticker      *time.Ticker
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewService creates a new fund service and starts its flush loop.
func NewService(cfg ServiceConfig) *Service {
	interval := cfg.BroadcastInterval
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	s := &Service{
		clubs:       make(map[string]ClubConfig),
		balances:    make(map[string]decimal.Decimal),
		buffer:      make(map[string]Update),
		broad:       NewBroadcaster(128),
		logger:      cfg.Logger,
		interval:    interval,
		defaultRate: cfg.DefaultRate,
		stopChan:    make(chan struct{}),
	}
	s.start()
	return s
}

// RegisterClub registers a club fund with its starting balance and
// accrual rate.
func (s *Service) RegisterClub(cfg ClubConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clubs[cfg.ClubID] = cfg
	if _, exists := s.balances[cfg.ClubID]; !exists {
		s.balances[cfg.ClubID] = cfg.Init
	}
}

// ensureClubLocked returns the club's fund config, creating it with the
// default rate when the club was never explicitly registered. Callers
// hold the write lock.
func (s *Service) ensureClubLocked(clubID string) (ClubConfig, bool) {
	cfg, ok := s.clubs[clubID]
	if ok {
		return cfg, true
	}
	if !s.defaultRate.IsPositive() {
		return ClubConfig{}, false
	}

	cfg = ClubConfig{ClubID: clubID, Rate: s.defaultRate}
	s.clubs[clubID] = cfg
	s.balances[clubID] = decimal.Zero
	s.logger.Info().
		Str("club_id", clubID).
		Str("rate", s.defaultRate.String()).
		Msg("Club fund registered with default rate")
	return cfg, true
}

// Accrue credits the club's fund with its share of a spin cost and
// returns the accrued amount. Clubs without an explicit registration
// get a default-rate fund on first accrual; with no default rate
// configured they accrue nothing.
func (s *Service) Accrue(clubID, spinID string, spinCost decimal.Decimal) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.ensureClubLocked(clubID)
	if !ok {
		return decimal.Zero
	}

	amount := spinCost.Mul(cfg.Rate)
	if amount.IsZero() {
		return decimal.Zero
	}

	s.balances[clubID] = s.balances[clubID].Add(amount)
	s.buffer[clubID] = Update{
		ClubID:    clubID,
		Balance:   s.balances[clubID],
		Timestamp: time.Now(),
		SpinID:    spinID,
	}

	return amount
}

// Payout draws a points payout from the club's fund. The fund may go
// negative: the wheel must honor a drawn prize even when accruals lag,
// and a negative balance is the operator's signal to top up.
func (s *Service) Payout(clubID string, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ensureClubLocked(clubID); !ok {
		return decimal.Zero, errors.New(errors.ErrClubNotFound, "club fund not registered")
	}

	s.balances[clubID] = s.balances[clubID].Sub(amount)
	s.buffer[clubID] = Update{
		ClubID:    clubID,
		Balance:   s.balances[clubID],
		Timestamp: time.Now(),
	}

	if s.balances[clubID].IsNegative() {
		s.logger.Warn().
			Str("club_id", clubID).
			Str("balance", s.balances[clubID].String()).
			Msg("Club fund went negative")
	}

	return s.balances[clubID], nil
}

// Balance returns the club's current fund balance.
func (s *Service) Balance(clubID string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bal, ok := s.balances[clubID]
	return bal, ok
}

// Snapshot returns the current balance of every registered club.
func (s *Service) Snapshot() []Update {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	return lo.Map(lo.Keys(s.balances), func(clubID string, _ int) Update {
		return Update{
			ClubID:    clubID,
			Balance:   s.balances[clubID],
			Timestamp: now,
		}
	})
}

// Listen subscribes to flushed fund updates.
func (s *Service) Listen(ctx context.Context) (<-chan Update, context.CancelFunc) {
	return s.broad.Listen(ctx)
}

func (s *Service) start() {
	s.ticker = time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-s.stopChan:
				return
			case <-s.ticker.C:
				s.flush()
			}
		}
	}()
}

// flush pushes buffered updates to listeners, newest per club only.
func (s *Service) flush() {
	s.mu.Lock()
	pending := lo.Values(s.buffer)
	s.buffer = make(map[string]Update)
	s.mu.Unlock()

	for _, upd := range pending {
		s.broad.Send(upd)
	}
}

// Stop halts the flush loop. Safe to call more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopChan)
	})
}
