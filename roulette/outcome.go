package roulette

import (
	"time"

	"github.com/google/uuid"
)

// SpinOutcome records one committed spin. Created exactly once per spin
// and immutable afterwards; it feeds the claim record and the venue
// display polling feed.
type SpinOutcome struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	ClubID    string    `json:"club_id"`
	PrizeID   string    `json:"prize_id"`
	PrizeName string    `json:"prize_name"`
	Cost      int64     `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSpinOutcome builds an outcome for a completed draw
func NewSpinOutcome(playerID, clubID, prizeID, prizeName string, cost int64) *SpinOutcome {
	return &SpinOutcome{
		ID:        uuid.New().String(),
		PlayerID:  playerID,
		ClubID:    clubID,
		PrizeID:   prizeID,
		PrizeName: prizeName,
		Cost:      cost,
		CreatedAt: time.Now().UTC(),
	}
}
