package prize

import (
	"fmt"
	"sync"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ListFilter narrows the result of Registry.List
type ListFilter struct {
	ClubID     string
	ActiveOnly bool
}

// Registry holds the authoritative set of prize definitions for all clubs.
// List order is creation order; the roulette resolver and the wheel
// renderer both rely on that ordering being stable.
type Registry struct {
	mu     sync.RWMutex
	prizes []*Prize
	byID   map[string]*Prize
}

// NewRegistry creates an empty prize registry
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]*Prize),
	}
}

// Create validates the definition and appends a new active prize.
// The slot index must not collide with another active prize of the
// same club.
func (r *Registry) Create(def Definition) (*Prize, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.prizes {
		if p.Active && p.ClubID == def.ClubID && p.SlotIndex == def.SlotIndex {
			return nil, errors.NewWithDebug(errors.ErrValidation,
				"slot index already used by an active prize",
				fmt.Sprintf("slot_index %d held by prize %s", def.SlotIndex, p.ID))
		}
	}

	now := time.Now().UTC()
	p := &Prize{
		ID:            uuid.New().String(),
		ClubID:        def.ClubID,
		Name:          def.Name,
		Type:          def.Type,
		Value:         def.Value,
		DropChance:    def.DropChance,
		SlotIndex:     def.SlotIndex,
		TotalQuantity: def.TotalQuantity,
		ImageURL:      def.ImageURL,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	r.prizes = append(r.prizes, p)
	r.byID[p.ID] = p

	return copyPrize(p), nil
}

// Import inserts a prize that already carries an id, preserving it so
// records migrated from another backend keep resolving. Fields are
// validated like a creation; an inactive import may share a slot with
// an active prize, the same way a deactivated prize does.
func (r *Registry) Import(p *Prize) (*Prize, error) {
	def := Definition{
		ClubID:        p.ClubID,
		Name:          p.Name,
		Type:          p.Type,
		Value:         p.Value,
		DropChance:    p.DropChance,
		SlotIndex:     p.SlotIndex,
		TotalQuantity: p.TotalQuantity,
		ImageURL:      p.ImageURL,
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; exists {
		return nil, errors.NewWithDebug(errors.ErrValidation,
			"prize id already exists",
			fmt.Sprintf("id %s", p.ID))
	}
	if p.Active {
		for _, other := range r.prizes {
			if other.Active && other.ClubID == p.ClubID && other.SlotIndex == p.SlotIndex {
				return nil, errors.NewWithDebug(errors.ErrValidation,
					"slot index already used by an active prize",
					fmt.Sprintf("slot_index %d held by prize %s", p.SlotIndex, other.ID))
			}
		}
	}

	now := time.Now().UTC()
	stored := copyPrize(p)
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.prizes = append(r.prizes, stored)
	r.byID[stored.ID] = stored

	return copyPrize(stored), nil
}

// Update applies a partial mutation to an existing prize
func (r *Registry) Update(id string, upd Update) (*Prize, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrNotFound, "prize not found")
	}

	if upd.Active != nil && *upd.Active && !p.Active {
		// Reactivation may have lost the slot to another prize in the
		// meantime; re-check uniqueness before flipping the flag.
		for _, other := range r.prizes {
			if other.ID != p.ID && other.Active && other.ClubID == p.ClubID && other.SlotIndex == p.SlotIndex {
				return nil, errors.NewWithDebug(errors.ErrValidation,
					"slot index already used by an active prize",
					fmt.Sprintf("slot_index %d held by prize %s", p.SlotIndex, other.ID))
			}
		}
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Value != nil {
		p.Value = *upd.Value
	}
	if upd.DropChance != nil {
		p.DropChance = *upd.DropChance
	}
	if upd.TotalQuantity != nil {
		p.TotalQuantity = *upd.TotalQuantity
	}
	if upd.ImageURL != nil {
		p.ImageURL = *upd.ImageURL
	}
	if upd.Active != nil {
		p.Active = *upd.Active
	}
	p.UpdatedAt = time.Now().UTC()

	return copyPrize(p), nil
}

// SetActive toggles roulette eligibility without deleting the prize
func (r *Registry) SetActive(id string, active bool) (*Prize, error) {
	return r.Update(id, Update{Active: &active})
}

// Get returns a single prize by id
func (r *Registry) Get(id string) (*Prize, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrNotFound, "prize not found")
	}
	return copyPrize(p), nil
}

// List returns prizes matching the filter in creation order
func (r *Registry) List(filter ListFilter) []*Prize {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := lo.Filter(r.prizes, func(p *Prize, _ int) bool {
		if filter.ClubID != "" && p.ClubID != filter.ClubID {
			return false
		}
		if filter.ActiveOnly && !p.Active {
			return false
		}
		return true
	})

	return lo.Map(matched, func(p *Prize, _ int) *Prize {
		return copyPrize(p)
	})
}

// copyPrize returns a detached copy so callers cannot mutate registry state
func copyPrize(p *Prize) *Prize {
	c := *p
	return &c
}
