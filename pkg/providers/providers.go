package providers

import (
	"context"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/roulette"
	"github.com/shopspring/decimal"
)

// WalletProvider interface for the external points ledger.
// The ledger linearizes debits: two concurrent spins from one player
// cannot both succeed against a single 20-point balance.
type WalletProvider interface {
	GetBalance(ctx context.Context, playerID string) (decimal.Decimal, error)
	Withdraw(ctx context.Context, playerID string, amount decimal.Decimal) error
	Deposit(ctx context.Context, playerID string, amount decimal.Decimal) error
}

// SpinProvider interface for latest-spin storage backing the venue
// display polling feed
type SpinProvider interface {
	SaveLatestSpin(ctx context.Context, outcome *roulette.SpinOutcome) error
	GetLatestSpin(ctx context.Context, clubID string) (*roulette.SpinOutcome, error)
}

// SpinLog represents a spin audit entry to be recorded
type SpinLog struct {
	SpinID    string    `json:"spinId"`
	PlayerID  string    `json:"playerId"`
	ClubID    string    `json:"clubId"`
	PrizeID   string    `json:"prizeId"`
	PrizeName string    `json:"prizeName"`
	Cost      int64     `json:"cost"`
	Timestamp time.Time `json:"timestamp"`
}

// ClaimLog represents a claim transition audit entry
type ClaimLog struct {
	ClaimID   string    `json:"claimId"`
	PlayerID  string    `json:"playerId"`
	ClubID    string    `json:"clubId"`
	PrizeID   string    `json:"prizeId"`
	Action    string    `json:"action"` // "confirm" or "activate_time"
	ActorID   string    `json:"actorId"`
	Timestamp time.Time `json:"timestamp"`
}

// SpinHistoryQuery represents query parameters for spin history
type SpinHistoryQuery struct {
	PlayerID string `json:"playerId"`
	ClubID   string `json:"clubId"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}

// SpinHistoryItem is a single spin history entry
type SpinHistoryItem struct {
	SpinID    string    `json:"spinId"`
	PrizeID   string    `json:"prizeId"`
	PrizeName string    `json:"prizeName"`
	Cost      int64     `json:"cost"`
	Time      time.Time `json:"time"`
}

// SpinHistoryResponse represents the response for spin history
type SpinHistoryResponse struct {
	Total int               `json:"total"`
	Items []SpinHistoryItem `json:"items"`
}

// LogProvider interface for recording spin and claim audit events
type LogProvider interface {
	LogSpin(ctx context.Context, log *SpinLog) error
	LogClaim(ctx context.Context, log *ClaimLog) error
	GetSpinHistory(ctx context.Context, query *SpinHistoryQuery) (*SpinHistoryResponse, error)
}
