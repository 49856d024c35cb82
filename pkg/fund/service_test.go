package fund

import (
	"context"
	"testing"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s := NewService(ServiceConfig{
		BroadcastInterval: 10 * time.Millisecond,
		Logger:            zerolog.Nop(),
	})
	t.Cleanup(s.Stop)
	return s
}

func TestAccrueAndPayout(t *testing.T) {
	s := newTestService(t)
	s.RegisterClub(ClubConfig{
		ClubID: "club-1",
		Init:   decimal.NewFromInt(1000),
		Rate:   decimal.NewFromFloat(0.5),
	})

	accrued := s.Accrue("club-1", "spin-1", decimal.NewFromInt(20))
	if !accrued.Equal(decimal.NewFromInt(10)) {
		t.Errorf("accrued %s, want 10", accrued)
	}

	bal, ok := s.Balance("club-1")
	if !ok || !bal.Equal(decimal.NewFromInt(1010)) {
		t.Errorf("balance %s, want 1010", bal)
	}

	after, err := s.Payout("club-1", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("payout failed: %v", err)
	}
	if !after.Equal(decimal.NewFromInt(510)) {
		t.Errorf("balance after payout %s, want 510", after)
	}
}

func TestPayoutMayGoNegative(t *testing.T) {
	s := newTestService(t)
	s.RegisterClub(ClubConfig{
		ClubID: "club-1",
		Init:   decimal.NewFromInt(100),
		Rate:   decimal.NewFromFloat(0.5),
	})

	after, err := s.Payout("club-1", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("payout failed: %v", err)
	}
	if !after.Equal(decimal.NewFromInt(-400)) {
		t.Errorf("balance %s, want -400", after)
	}
}

func TestUnregisteredClubWithoutDefaultRate(t *testing.T) {
	s := newTestService(t)

	if accrued := s.Accrue("missing", "spin-1", decimal.NewFromInt(20)); !accrued.IsZero() {
		t.Errorf("unregistered club accrued %s", accrued)
	}
	if _, err := s.Payout("missing", decimal.NewFromInt(1)); !errors.HasCode(err, errors.ErrClubNotFound) {
		t.Errorf("expected ErrClubNotFound, got %v", err)
	}
}

func TestLazyRegistrationWithDefaultRate(t *testing.T) {
	s := NewService(ServiceConfig{
		BroadcastInterval: time.Hour,
		DefaultRate:       decimal.NewFromFloat(0.1),
		Logger:            zerolog.Nop(),
	})
	t.Cleanup(s.Stop)

	// First accrual creates the fund at zero balance with the default rate.
	accrued := s.Accrue("club-new", "spin-1", decimal.NewFromInt(20))
	if !accrued.Equal(decimal.NewFromInt(2)) {
		t.Errorf("accrued %s, want 2", accrued)
	}

	bal, ok := s.Balance("club-new")
	if !ok || !bal.Equal(decimal.NewFromInt(2)) {
		t.Errorf("balance %s, want 2", bal)
	}

	// Payouts also land without an explicit registration.
	after, err := s.Payout("club-other", decimal.NewFromInt(5))
	if err != nil {
		t.Fatalf("payout on lazily registered club failed: %v", err)
	}
	if !after.Equal(decimal.NewFromInt(-5)) {
		t.Errorf("balance %s, want -5", after)
	}

	// An explicit registration is not overwritten by the default.
	s.RegisterClub(ClubConfig{
		ClubID: "club-explicit",
		Init:   decimal.NewFromInt(100),
		Rate:   decimal.NewFromFloat(0.5),
	})
	if got := s.Accrue("club-explicit", "spin-2", decimal.NewFromInt(20)); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("explicit club accrued %s, want 10", got)
	}
}

func TestFlushDeliversLatestUpdate(t *testing.T) {
	s := newTestService(t)
	s.RegisterClub(ClubConfig{
		ClubID: "club-1",
		Init:   decimal.Zero,
		Rate:   decimal.NewFromInt(1),
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ch, stop := s.Listen(ctx)
	defer stop()

	s.Accrue("club-1", "spin-1", decimal.NewFromInt(20))
	s.Accrue("club-1", "spin-2", decimal.NewFromInt(20))

	select {
	case upd := <-ch:
		if upd.ClubID != "club-1" {
			t.Errorf("update for club %s", upd.ClubID)
		}
		// Buffering coalesces per club: only the newest balance ships.
		if !upd.Balance.Equal(decimal.NewFromInt(40)) {
			t.Errorf("flushed balance %s, want 40", upd.Balance)
		}
	case <-ctx.Done():
		t.Fatal("no update flushed before timeout")
	}
}
