package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/db/redis"
	"github.com/Digital-Creators-Team/prize-wheel-module/roulette"
	"github.com/rs/zerolog"
)

// SpinProvider implements providers.SpinProvider on Redis. It keeps the
// most recent spin outcome per club so venue displays can poll for it;
// polling is an idempotent read and the display de-duplicates by spin
// id.
type SpinProvider struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSpinProvider creates a new spin provider
func NewSpinProvider(redisClient *redis.Client, ttl time.Duration, logger zerolog.Logger) *SpinProvider {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &SpinProvider{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger.With().Str("component", "spin_provider").Logger(),
	}
}

func latestSpinKey(clubID string) string {
	return fmt.Sprintf("club:%s:latest_spin", clubID)
}

// SaveLatestSpin stores the outcome as the club's newest spin
func (p *SpinProvider) SaveLatestSpin(ctx context.Context, outcome *roulette.SpinOutcome) error {
	key := latestSpinKey(outcome.ClubID)
	if err := p.redis.SetJSON(ctx, key, outcome, p.ttl); err != nil {
		p.logger.Error().
			Err(err).
			Str("club_id", outcome.ClubID).
			Str("spin_id", outcome.ID).
			Msg("Failed to save latest spin")
		return err
	}
	return nil
}

// GetLatestSpin returns the club's most recent spin outcome, or nil if
// no spin has happened within the retention window
func (p *SpinProvider) GetLatestSpin(ctx context.Context, clubID string) (*roulette.SpinOutcome, error) {
	var outcome roulette.SpinOutcome
	err := p.redis.GetJSON(ctx, latestSpinKey(clubID), &outcome)
	if err == redis.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest spin for club %s: %w", clubID, err)
	}
	return &outcome, nil
}
