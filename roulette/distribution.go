package roulette

import (
	"github.com/Digital-Creators-Team/prize-wheel-module/prize"
	"github.com/samber/lo"
)

// Entry pairs a prize with its draw weight
type Entry struct {
	Prize  *prize.Prize
	Weight float64
}

// Distribution is the ordered weighted prize sequence a draw runs
// against. Order matches the registry's creation order and is the same
// order the wheel renders, so the drawn index and the rendered index
// always agree.
type Distribution struct {
	entries []Entry
}

// Resolve derives a distribution from the given prizes, keeping only
// active entries in their input order. Weight is dropChance/100. The
// result is never cached: callers resolve fresh from the current
// active set on every read.
func Resolve(prizes []*prize.Prize) *Distribution {
	active := lo.Filter(prizes, func(p *prize.Prize, _ int) bool {
		return p.Active
	})

	entries := lo.Map(active, func(p *prize.Prize, _ int) Entry {
		return Entry{Prize: p, Weight: p.DropChance / 100}
	})

	return &Distribution{entries: entries}
}

// Entries returns the ordered weighted sequence
func (d *Distribution) Entries() []Entry {
	return d.entries
}

// Len returns the number of entries
func (d *Distribution) Len() int {
	return len(d.entries)
}

// TotalWeight returns the raw weight sum. It is informational: a total
// below or above 1.0 is tolerated and the draw normalizes by the actual
// sum, so this exists only for operator warnings.
func (d *Distribution) TotalWeight() float64 {
	return lo.SumBy(d.entries, func(e Entry) float64 {
		return e.Weight
	})
}

// Overallocated reports whether configured drop chances exceed 100% in
// total. The draw still picks exactly one prize, but an operator likely
// misconfigured something.
func (d *Distribution) Overallocated() bool {
	return d.TotalWeight() > 1.0
}

// PrizeIndex returns the ordinal position of a prize id within the
// distribution, or -1 if absent. The wheel reconciler uses this to map
// a drawn prize back onto a rendered slot.
func (d *Distribution) PrizeIndex(prizeID string) int {
	return lo.IndexOf(lo.Map(d.entries, func(e Entry, _ int) string {
		return e.Prize.ID
	}), prizeID)
}
