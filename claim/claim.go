package claim

import (
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/prize"
	"github.com/google/uuid"
)

// Status tracks a claim through venue fulfillment.
// Transitions are strictly forward and one step at a time:
// pending -> confirmed -> issued.
type Status string

const (
	// StatusPending means the prize was won but the venue has not
	// acknowledged it yet
	StatusPending Status = "pending"
	// StatusConfirmed means the venue acknowledged the win; terminal
	// for every prize type except club_time
	StatusConfirmed Status = "confirmed"
	// StatusIssued means a club_time prize was activated; terminal
	StatusIssued Status = "issued"
)

// Claim records a player's won prize and its fulfillment progress
type Claim struct {
	ID          string     `json:"id"`
	SpinID      string     `json:"spin_id"`
	PlayerID    string     `json:"player_id"`
	ClubID      string     `json:"club_id"`
	PrizeID     string     `json:"prize_id"`
	PrizeName   string     `json:"prize_name"`
	PrizeType   prize.Type `json:"prize_type"`
	PrizeValue  int64      `json:"prize_value"`
	Status      Status     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	ConfirmedBy string     `json:"confirmed_by,omitempty"`
	IssuedBy    string     `json:"issued_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	IssuedAt    *time.Time `json:"issued_at,omitempty"`
}

// New builds a pending claim for a won prize
func New(spinID, playerID, clubID string, won *prize.Prize) *Claim {
	return &Claim{
		ID:         uuid.New().String(),
		SpinID:     spinID,
		PlayerID:   playerID,
		ClubID:     clubID,
		PrizeID:    won.ID,
		PrizeName:  won.Name,
		PrizeType:  won.Type,
		PrizeValue: won.Value,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}
