package server

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/claim"
	"github.com/Digital-Creators-Team/prize-wheel-module/config"
	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/Digital-Creators-Team/prize-wheel-module/pkg/fund"
	"github.com/Digital-Creators-Team/prize-wheel-module/pkg/providers"
	"github.com/Digital-Creators-Team/prize-wheel-module/prize"
	"github.com/Digital-Creators-Team/prize-wheel-module/roulette"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type fakeWallet struct {
	mu          sync.Mutex
	balance     decimal.Decimal
	balanceErr  error
	withdrawErr error
	withdrawals []decimal.Decimal
	deposits    []decimal.Decimal
}

func (w *fakeWallet) GetBalance(ctx context.Context, playerID string) (decimal.Decimal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balanceErr != nil {
		return decimal.Zero, w.balanceErr
	}
	return w.balance, nil
}

func (w *fakeWallet) Withdraw(ctx context.Context, playerID string, amount decimal.Decimal) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.withdrawErr != nil {
		return w.withdrawErr
	}
	w.balance = w.balance.Sub(amount)
	w.withdrawals = append(w.withdrawals, amount)
	return nil
}

func (w *fakeWallet) Deposit(ctx context.Context, playerID string, amount decimal.Decimal) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance = w.balance.Add(amount)
	w.deposits = append(w.deposits, amount)
	return nil
}

type fakeSpins struct {
	mu      sync.Mutex
	saved   map[string]*roulette.SpinOutcome
	saveErr error
	getErr  error
}

func newFakeSpins() *fakeSpins {
	return &fakeSpins{saved: make(map[string]*roulette.SpinOutcome)}
}

func (s *fakeSpins) SaveLatestSpin(ctx context.Context, outcome *roulette.SpinOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[outcome.ClubID] = outcome
	return nil
}

func (s *fakeSpins) GetLatestSpin(ctx context.Context, clubID string) (*roulette.SpinOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.saved[clubID], nil
}

type fakeLogs struct {
	mu      sync.Mutex
	spins   []*providers.SpinLog
	claims  []*providers.ClaimLog
	history *providers.SpinHistoryResponse
}

func (l *fakeLogs) LogSpin(ctx context.Context, log *providers.SpinLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.spins = append(l.spins, log)
	return nil
}

func (l *fakeLogs) LogClaim(ctx context.Context, log *providers.ClaimLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.claims = append(l.claims, log)
	return nil
}

func (l *fakeLogs) GetSpinHistory(ctx context.Context, query *providers.SpinHistoryQuery) (*providers.SpinHistoryResponse, error) {
	if l.history != nil {
		return l.history, nil
	}
	return &providers.SpinHistoryResponse{}, nil
}

type spinFixture struct {
	svc      SpinService
	registry *prize.Registry
	claims   *claim.Store
	wallet   *fakeWallet
	spins    *fakeSpins
	logs     *fakeLogs
	funds    *fund.Service
}

func newSpinFixture(t *testing.T, balance int64) *spinFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Roulette.SpinCost = 20

	wallet := &fakeWallet{balance: decimal.NewFromInt(balance)}
	spins := newFakeSpins()
	logs := &fakeLogs{}
	funds := fund.NewService(fund.ServiceConfig{
		BroadcastInterval: time.Hour,
		DefaultRate:       decimal.NewFromFloat(0.1),
		Logger:            zerolog.Nop(),
	})
	t.Cleanup(funds.Stop)

	registry := prize.NewRegistry()
	claims := claim.NewStore()

	svc := NewSpinService(
		cfg,
		registry,
		claims,
		roulette.NewSelector(rand.New(rand.NewSource(1))),
		wallet,
		spins,
		logs,
		funds,
		nil,
		zerolog.Nop(),
	)

	return &spinFixture{
		svc:      svc,
		registry: registry,
		claims:   claims,
		wallet:   wallet,
		spins:    spins,
		logs:     logs,
		funds:    funds,
	}
}

func (f *spinFixture) addPrize(t *testing.T, clubID string, typ prize.Type, value int64, chance float64, slot int) *prize.Prize {
	t.Helper()
	created, err := f.registry.Create(prize.Definition{
		ClubID:        clubID,
		Name:          fmt.Sprintf("prize-%d", slot),
		Type:          typ,
		Value:         value,
		DropChance:    chance,
		SlotIndex:     slot,
		TotalQuantity: 10,
		ImageURL:      "https://cdn.example.com/art.png",
	})
	if err != nil {
		t.Fatalf("Create prize: %v", err)
	}
	return created
}

func TestRequestSpinDebitsAndRecords(t *testing.T) {
	f := newSpinFixture(t, 100)
	f.addPrize(t, "club-1", prize.TypePhysical, 0, 50, 0)

	result, err := f.svc.RequestSpin(context.Background(), "club-1", "player-1")
	if err != nil {
		t.Fatalf("RequestSpin: %v", err)
	}

	if len(f.wallet.withdrawals) != 1 || !f.wallet.withdrawals[0].Equal(decimal.NewFromInt(20)) {
		t.Errorf("withdrawals = %v, want one debit of 20", f.wallet.withdrawals)
	}
	if result.Outcome == nil || result.Outcome.ClubID != "club-1" || result.Outcome.PlayerID != "player-1" {
		t.Fatalf("unexpected outcome: %+v", result.Outcome)
	}
	if result.Outcome.Cost != 20 {
		t.Errorf("outcome cost = %d, want 20", result.Outcome.Cost)
	}
	if !result.Balance.Equal(decimal.NewFromInt(80)) {
		t.Errorf("balance = %s, want 80", result.Balance)
	}

	if result.Claim == nil || result.Claim.Status != claim.StatusPending {
		t.Fatalf("expected pending claim, got %+v", result.Claim)
	}
	if result.Claim.SpinID != result.Outcome.ID {
		t.Errorf("claim spin id = %q, want %q", result.Claim.SpinID, result.Outcome.ID)
	}

	saved := f.spins.saved["club-1"]
	if saved == nil || saved.ID != result.Outcome.ID {
		t.Errorf("latest spin not saved for polling: %+v", saved)
	}
	if len(f.logs.spins) != 1 || f.logs.spins[0].SpinID != result.Outcome.ID {
		t.Errorf("spin audit log not recorded: %+v", f.logs.spins)
	}
}

func TestRequestSpinInsufficientBalance(t *testing.T) {
	f := newSpinFixture(t, 10)
	f.addPrize(t, "club-1", prize.TypePhysical, 0, 50, 0)

	_, err := f.svc.RequestSpin(context.Background(), "club-1", "player-1")
	if !errors.HasCode(err, errors.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want insufficient balance", err)
	}

	if len(f.wallet.withdrawals) != 0 {
		t.Errorf("balance was debited despite rejection: %v", f.wallet.withdrawals)
	}
	if got := f.claims.List(claim.ListFilter{}); len(got) != 0 {
		t.Errorf("claim created despite rejection: %+v", got)
	}
	if len(f.spins.saved) != 0 {
		t.Errorf("latest spin saved despite rejection")
	}
}

func TestRequestSpinEmptyDistribution(t *testing.T) {
	f := newSpinFixture(t, 100)

	_, err := f.svc.RequestSpin(context.Background(), "club-1", "player-1")
	if !errors.HasCode(err, errors.ErrEmptyDistribution) {
		t.Fatalf("err = %v, want empty distribution", err)
	}
	if len(f.wallet.withdrawals) != 0 {
		t.Errorf("balance was debited with no prizes configured")
	}
}

func TestRequestSpinDeactivatedPrizesExcluded(t *testing.T) {
	f := newSpinFixture(t, 100)
	p := f.addPrize(t, "club-1", prize.TypePhysical, 0, 50, 0)
	if _, err := f.registry.SetActive(p.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	_, err := f.svc.RequestSpin(context.Background(), "club-1", "player-1")
	if !errors.HasCode(err, errors.ErrEmptyDistribution) {
		t.Fatalf("err = %v, want empty distribution after deactivation", err)
	}
}

func TestRequestSpinWalletDebitFailure(t *testing.T) {
	f := newSpinFixture(t, 100)
	f.addPrize(t, "club-1", prize.TypePhysical, 0, 50, 0)
	f.wallet.withdrawErr = fmt.Errorf("ledger unavailable")

	_, err := f.svc.RequestSpin(context.Background(), "club-1", "player-1")
	if !errors.HasCode(err, errors.ErrWalletError) {
		t.Fatalf("err = %v, want wallet error", err)
	}
	if got := f.claims.List(claim.ListFilter{}); len(got) != 0 {
		t.Errorf("claim created despite debit failure: %+v", got)
	}
	if len(f.spins.saved) != 0 {
		t.Errorf("latest spin saved despite debit failure")
	}
}

func TestRequestSpinPointsPrizeAutoPayout(t *testing.T) {
	f := newSpinFixture(t, 100)
	f.addPrize(t, "club-1", prize.TypePoints, 50, 50, 0)

	result, err := f.svc.RequestSpin(context.Background(), "club-1", "player-1")
	if err != nil {
		t.Fatalf("RequestSpin: %v", err)
	}

	if len(f.wallet.deposits) != 1 || !f.wallet.deposits[0].Equal(decimal.NewFromInt(50)) {
		t.Fatalf("deposits = %v, want one payout of 50", f.wallet.deposits)
	}
	// 100 - 20 cost + 50 payout
	if !result.Balance.Equal(decimal.NewFromInt(130)) {
		t.Errorf("balance = %s, want 130", result.Balance)
	}
	// Auto-payout does not skip the fulfillment trail
	if result.Claim == nil || result.Claim.Status != claim.StatusPending {
		t.Errorf("points prize should still open a pending claim, got %+v", result.Claim)
	}

	// The club fund is created on first use and records both sides:
	// 20 * 0.1 accrual minus the 50 point payout.
	bal, ok := f.funds.Balance("club-1")
	if !ok {
		t.Fatal("club fund not created by the spin")
	}
	if !bal.Equal(decimal.NewFromInt(-48)) {
		t.Errorf("fund balance = %s, want -48", bal)
	}
}

func TestRequestSpinAccruesClubFund(t *testing.T) {
	f := newSpinFixture(t, 100)
	f.addPrize(t, "club-1", prize.TypePhysical, 0, 50, 0)
	f.funds.RegisterClub(fund.ClubConfig{
		ClubID: "club-1",
		Init:   decimal.NewFromInt(1000),
		Rate:   decimal.NewFromFloat(0.5),
	})

	if _, err := f.svc.RequestSpin(context.Background(), "club-1", "player-1"); err != nil {
		t.Fatalf("RequestSpin: %v", err)
	}

	bal, ok := f.funds.Balance("club-1")
	if !ok {
		t.Fatal("club fund missing after spin")
	}
	if !bal.Equal(decimal.NewFromInt(1010)) {
		t.Errorf("fund balance = %s, want 1010", bal)
	}
}

func TestRequestSpinSurvivesLatestSpinStorageFailure(t *testing.T) {
	f := newSpinFixture(t, 100)
	f.addPrize(t, "club-1", prize.TypePhysical, 0, 50, 0)
	f.spins.saveErr = fmt.Errorf("redis down")

	result, err := f.svc.RequestSpin(context.Background(), "club-1", "player-1")
	if err != nil {
		t.Fatalf("RequestSpin should not fail on poll storage error: %v", err)
	}
	if result.Outcome == nil {
		t.Fatal("expected an outcome despite storage failure")
	}
}

func TestGetLatestSpin(t *testing.T) {
	f := newSpinFixture(t, 100)

	outcome, err := f.svc.GetLatestSpin(context.Background(), "club-1")
	if err != nil {
		t.Fatalf("GetLatestSpin: %v", err)
	}
	if outcome != nil {
		t.Fatalf("expected nil outcome before any spin, got %+v", outcome)
	}

	f.addPrize(t, "club-1", prize.TypePhysical, 0, 50, 0)
	result, err := f.svc.RequestSpin(context.Background(), "club-1", "player-1")
	if err != nil {
		t.Fatalf("RequestSpin: %v", err)
	}

	outcome, err = f.svc.GetLatestSpin(context.Background(), "club-1")
	if err != nil {
		t.Fatalf("GetLatestSpin: %v", err)
	}
	if outcome == nil || outcome.ID != result.Outcome.ID {
		t.Errorf("latest spin = %+v, want id %q", outcome, result.Outcome.ID)
	}
}

func TestGetLatestSpinStorageError(t *testing.T) {
	f := newSpinFixture(t, 100)
	f.spins.getErr = fmt.Errorf("redis down")

	_, err := f.svc.GetLatestSpin(context.Background(), "club-1")
	if !errors.HasCode(err, errors.ErrSpinStateError) {
		t.Fatalf("err = %v, want spin state error", err)
	}
}

func TestGetRouletteView(t *testing.T) {
	f := newSpinFixture(t, 100)
	first := f.addPrize(t, "club-1", prize.TypePhysical, 0, 50, 0)
	second := f.addPrize(t, "club-1", prize.TypePoints, 10, 30, 1)
	f.addPrize(t, "club-2", prize.TypeOther, 0, 90, 0)

	view, err := f.svc.GetRoulette(context.Background(), "club-1")
	if err != nil {
		t.Fatalf("GetRoulette: %v", err)
	}

	if len(view.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 (other club's prize must not leak)", len(view.Entries))
	}
	if view.Entries[0].Prize.ID != first.ID || view.Entries[1].Prize.ID != second.ID {
		t.Errorf("entry order does not follow creation order")
	}
	if view.TotalWeight < 0.79 || view.TotalWeight > 0.81 {
		t.Errorf("total weight = %v, want 0.8", view.TotalWeight)
	}
	if view.Overallocated {
		t.Error("view reported overallocation at 80%")
	}
	if view.SpinCost != 20 {
		t.Errorf("spin cost = %d, want 20", view.SpinCost)
	}
}

func TestGetSpinHistoryDefaultsLimit(t *testing.T) {
	f := newSpinFixture(t, 100)
	f.logs.history = &providers.SpinHistoryResponse{Total: 1, Items: []providers.SpinHistoryItem{{SpinID: "s1"}}}

	query := &providers.SpinHistoryQuery{PlayerID: "player-1"}
	resp, err := f.svc.GetSpinHistory(context.Background(), query)
	if err != nil {
		t.Fatalf("GetSpinHistory: %v", err)
	}
	if query.Limit != 20 {
		t.Errorf("limit = %d, want default 20", query.Limit)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
}
