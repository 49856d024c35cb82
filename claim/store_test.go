package claim

import (
	"testing"

	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/Digital-Creators-Team/prize-wheel-module/prize"
)

func timePrize() *prize.Prize {
	return &prize.Prize{
		ID:    "prize-time",
		Name:  "One VIP Hour",
		Type:  prize.TypeClubTime,
		Value: 60,
	}
}

func pointsPrize() *prize.Prize {
	return &prize.Prize{
		ID:    "prize-points",
		Name:  "500 Points",
		Type:  prize.TypePoints,
		Value: 500,
	}
}

func TestClaimHappyPath(t *testing.T) {
	store := NewStore()
	c := store.Record("spin-1", "player-1", "club-1", timePrize())

	if c.Status != StatusPending {
		t.Fatalf("new claim status = %q, want pending", c.Status)
	}

	confirmed, err := store.Confirm(c.ID, "club-1", "verified at the bar")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.Status != StatusConfirmed {
		t.Errorf("status = %q, want confirmed", confirmed.Status)
	}
	if confirmed.ConfirmedAt == nil || confirmed.ConfirmedBy != "club-1" {
		t.Error("confirmation must record timestamp and actor")
	}
	if confirmed.Notes != "verified at the bar" {
		t.Errorf("notes not stored: %q", confirmed.Notes)
	}

	issued, err := store.ActivateTime(c.ID, "club-1")
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if issued.Status != StatusIssued {
		t.Errorf("status = %q, want issued", issued.Status)
	}
	if issued.IssuedAt == nil || issued.IssuedBy != "club-1" {
		t.Error("issuance must record timestamp and actor")
	}
}

func TestActivateBeforeConfirmRejected(t *testing.T) {
	store := NewStore()
	c := store.Record("spin-1", "player-1", "club-1", timePrize())

	_, err := store.ActivateTime(c.ID, "club-1")
	if err == nil {
		t.Fatal("activation from pending should be rejected")
	}
	if !errors.HasCode(err, errors.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	got, _ := store.Get(c.ID)
	if got.Status != StatusPending {
		t.Errorf("rejected transition must not change status, got %q", got.Status)
	}
}

func TestActivateWrongPrizeType(t *testing.T) {
	store := NewStore()
	c := store.Record("spin-1", "player-1", "club-1", pointsPrize())

	if _, err := store.Confirm(c.ID, "club-1", ""); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	_, err := store.ActivateTime(c.ID, "club-1")
	if err == nil {
		t.Fatal("activation of a non-time prize should be rejected")
	}
	if !errors.HasCode(err, errors.ErrWrongPrizeType) {
		t.Errorf("expected ErrWrongPrizeType, got %v", err)
	}
}

func TestReConfirmIsInvalidTransition(t *testing.T) {
	store := NewStore()
	c := store.Record("spin-1", "player-1", "club-1", timePrize())

	if _, err := store.Confirm(c.ID, "club-1", ""); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	_, err := store.Confirm(c.ID, "club-1", "")
	if err == nil {
		t.Fatal("re-confirming a confirmed claim should be rejected")
	}
	if !errors.HasCode(err, errors.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestNoRegressionFromIssued(t *testing.T) {
	store := NewStore()
	c := store.Record("spin-1", "player-1", "club-1", timePrize())
	store.Confirm(c.ID, "club-1", "")
	store.ActivateTime(c.ID, "club-1")

	if _, err := store.Confirm(c.ID, "club-1", ""); err == nil {
		t.Error("confirm on an issued claim should be rejected")
	}
	if _, err := store.ActivateTime(c.ID, "club-1"); err == nil {
		t.Error("re-activation of an issued claim should be rejected")
	}
}

func TestUnknownClaim(t *testing.T) {
	store := NewStore()

	if _, err := store.Confirm("missing", "club-1", ""); !errors.HasCode(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.ActivateTime("missing", "club-1"); !errors.HasCode(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	store := NewStore()
	a := store.Record("spin-1", "player-1", "club-1", timePrize())
	store.Record("spin-2", "player-2", "club-1", pointsPrize())
	store.Record("spin-3", "player-1", "club-2", pointsPrize())

	store.Confirm(a.ID, "club-1", "")

	if got := len(store.List(ListFilter{ClubID: "club-1"})); got != 2 {
		t.Errorf("club filter returned %d claims, want 2", got)
	}
	if got := len(store.List(ListFilter{PlayerID: "player-1"})); got != 2 {
		t.Errorf("player filter returned %d claims, want 2", got)
	}
	if got := len(store.List(ListFilter{Status: StatusPending})); got != 2 {
		t.Errorf("status filter returned %d claims, want 2", got)
	}
	if got := len(store.List(ListFilter{ClubID: "club-1", Status: StatusConfirmed})); got != 1 {
		t.Errorf("combined filter returned %d claims, want 1", got)
	}
}
