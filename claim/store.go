package claim

import (
	"fmt"
	"sync"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/Digital-Creators-Team/prize-wheel-module/prize"
	"github.com/samber/lo"
)

// ListFilter narrows the result of Store.List
type ListFilter struct {
	ClubID   string
	PlayerID string
	Status   Status
}

// Store holds claims and enforces the fulfillment state machine.
// Re-confirming an already-confirmed claim is a distinct
// InvalidTransition error rather than a silent no-op, so a venue retry
// that raced another operator surfaces instead of masking the conflict.
type Store struct {
	mu     sync.RWMutex
	claims []*Claim
	byID   map[string]*Claim
}

// NewStore creates an empty claim store
func NewStore() *Store {
	return &Store{
		byID: make(map[string]*Claim),
	}
}

// Record stores a fresh pending claim for a won prize
func (s *Store) Record(spinID, playerID, clubID string, won *prize.Prize) *Claim {
	c := New(spinID, playerID, clubID, won)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims = append(s.claims, c)
	s.byID[c.ID] = c

	return copyClaim(c)
}

// Confirm acknowledges a pending claim on behalf of the acting club.
// Valid only from pending.
func (s *Store) Confirm(claimID, actorID, notes string) (*Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[claimID]
	if !ok {
		return nil, errors.New(errors.ErrNotFound, "claim not found")
	}
	if c.Status != StatusPending {
		return nil, errors.NewWithDebug(errors.ErrInvalidTransition,
			"claim cannot be confirmed",
			fmt.Sprintf("status %q, confirm requires %q", c.Status, StatusPending))
	}

	now := time.Now().UTC()
	c.Status = StatusConfirmed
	c.ConfirmedAt = &now
	c.ConfirmedBy = actorID
	if notes != "" {
		c.Notes = notes
	}

	return copyClaim(c), nil
}

// ActivateTime issues a confirmed club_time claim. Valid only from
// confirmed and only for club_time prizes; other types are fulfilled at
// confirmation and never reach issued.
func (s *Store) ActivateTime(claimID, actorID string) (*Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[claimID]
	if !ok {
		return nil, errors.New(errors.ErrNotFound, "claim not found")
	}
	if c.PrizeType != prize.TypeClubTime {
		return nil, errors.NewWithDebug(errors.ErrWrongPrizeType,
			"only club time prizes can be activated",
			fmt.Sprintf("prize type %q", c.PrizeType))
	}
	if c.Status != StatusConfirmed {
		return nil, errors.NewWithDebug(errors.ErrInvalidTransition,
			"claim cannot be activated",
			fmt.Sprintf("status %q, activation requires %q", c.Status, StatusConfirmed))
	}

	now := time.Now().UTC()
	c.Status = StatusIssued
	c.IssuedAt = &now
	c.IssuedBy = actorID

	return copyClaim(c), nil
}

// Get returns a single claim by id
func (s *Store) Get(claimID string) (*Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[claimID]
	if !ok {
		return nil, errors.New(errors.ErrNotFound, "claim not found")
	}
	return copyClaim(c), nil
}

// List returns claims matching the filter in creation order
func (s *Store) List(filter ListFilter) []*Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := lo.Filter(s.claims, func(c *Claim, _ int) bool {
		if filter.ClubID != "" && c.ClubID != filter.ClubID {
			return false
		}
		if filter.PlayerID != "" && c.PlayerID != filter.PlayerID {
			return false
		}
		if filter.Status != "" && c.Status != filter.Status {
			return false
		}
		return true
	})

	return lo.Map(matched, func(c *Claim, _ int) *Claim {
		return copyClaim(c)
	})
}

func copyClaim(c *Claim) *Claim {
	dup := *c
	if c.ConfirmedAt != nil {
		ts := *c.ConfirmedAt
		dup.ConfirmedAt = &ts
	}
	if c.IssuedAt != nil {
		ts := *c.IssuedAt
		dup.IssuedAt = &ts
	}
	return &dup
}
