package fund

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ClubConfig describes a club's prize fund.
type ClubConfig struct {
	ClubID string
	// Init is the fund's starting balance in points
	Init decimal.Decimal
	// Rate is the share of each spin cost accrued to the fund
	// (e.g. 0.5 for 50% of every 20-point spin)
	Rate decimal.Decimal
}

// Update represents a fund balance change pushed to listeners.
type Update struct {
	ClubID    string
	Balance   decimal.Decimal
	Timestamp time.Time
	SpinID    string // set when the change came from a spin accrual
}

// ServiceConfig configures the fund service.
type ServiceConfig struct {
	// BroadcastInterval controls how often buffered updates are flushed
	// to listeners.
	BroadcastInterval time.Duration

	// DefaultRate is applied to clubs that were never explicitly
	// registered: their fund is created lazily on first use with a zero
	// starting balance and this accrual rate. A zero or negative rate
	// disables lazy registration.
	DefaultRate decimal.Decimal

	// Logger is optional; the zero value logs nowhere.
	Logger zerolog.Logger
}
