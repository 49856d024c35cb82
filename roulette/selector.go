package roulette

import (
	"math/rand"

	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/Digital-Creators-Team/prize-wheel-module/prize"
)

// Selector performs weighted random draws against a distribution.
// The random source is injected so a fixed seed reproduces the exact
// same draw sequence.
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a selector drawing from the given source
func NewSelector(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// Draw picks exactly one prize by roulette-wheel selection.
//
// r is drawn uniformly from [0, total) where total is the actual weight
// sum, then the ordered sequence is walked accumulating weight until the
// cumulative weight exceeds r. Normalizing by the actual sum keeps the
// draw proper whether the configured chances total below or above 100%.
func (s *Selector) Draw(dist *Distribution) (*prize.Prize, error) {
	entries := dist.Entries()
	if len(entries) == 0 {
		return nil, errors.New(errors.ErrEmptyDistribution, "no active prizes to draw from")
	}

	total := dist.TotalWeight()
	if total <= 0 {
		return nil, errors.New(errors.ErrEmptyDistribution, "no prize carries a positive weight")
	}

	r := s.rng.Float64() * total

	cumulative := 0.0
	for _, e := range entries {
		cumulative += e.Weight
		if r < cumulative {
			return e.Prize, nil
		}
	}

	// Floating-point accumulation can leave r a hair past the final
	// cumulative value; the last positive-weight entry owns that sliver.
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Weight > 0 {
			return entries[i].Prize, nil
		}
	}

	return nil, errors.New(errors.ErrEmptyDistribution, "no prize carries a positive weight")
}
