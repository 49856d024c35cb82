package prize

import (
	"fmt"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
)

// Type categorizes how a prize is fulfilled after a win
type Type string

const (
	// TypePoints credits the payout value back to the player's balance
	TypePoints Type = "points"
	// TypePhysical is a tangible prize handed over by the venue
	TypePhysical Type = "physical"
	// TypeClubTime grants venue time and requires an explicit activation step
	TypeClubTime Type = "club_time"
	// TypeOther covers venue-defined prizes with no platform semantics
	TypeOther Type = "other"
)

// SlotIndexMax is the highest wheel slot position a prize may occupy
const SlotIndexMax = 24

// Valid reports whether t is a known prize type
func (t Type) Valid() bool {
	switch t {
	case TypePoints, TypePhysical, TypeClubTime, TypeOther:
		return true
	}
	return false
}

// Prize is a single wheel entry configured by an administrator.
// SlotIndex is fixed at creation; among active prizes slot indices are
// pairwise distinct.
type Prize struct {
	ID            string    `json:"id"`
	ClubID        string    `json:"club_id"`
	Name          string    `json:"name"`
	Type          Type      `json:"type"`
	Value         int64     `json:"value"`
	DropChance    float64   `json:"drop_chance"`
	SlotIndex     int       `json:"slot_index"`
	TotalQuantity int       `json:"total_quantity"`
	ImageURL      string    `json:"image_url"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Definition carries the fields required to create a prize
type Definition struct {
	ClubID        string  `json:"club_id"`
	Name          string  `json:"name"`
	Type          Type    `json:"type"`
	Value         int64   `json:"value"`
	DropChance    float64 `json:"drop_chance"`
	SlotIndex     int     `json:"slot_index"`
	TotalQuantity int     `json:"total_quantity"`
	ImageURL      string  `json:"image_url"`
}

// Update carries the fields an administrator may change after creation.
// Nil pointers leave the field untouched. SlotIndex is deliberately
// absent: it cannot change once assigned.
type Update struct {
	Name          *string  `json:"name,omitempty"`
	Value         *int64   `json:"value,omitempty"`
	DropChance    *float64 `json:"drop_chance,omitempty"`
	TotalQuantity *int     `json:"total_quantity,omitempty"`
	ImageURL      *string  `json:"image_url,omitempty"`
	Active        *bool    `json:"active,omitempty"`
}

// Validate checks a creation definition against the field domains
func (d *Definition) Validate() error {
	if d.Name == "" {
		return errors.New(errors.ErrValidation, "prize name must not be empty")
	}
	if !d.Type.Valid() {
		return errors.NewWithDebug(errors.ErrValidation, "unknown prize type",
			fmt.Sprintf("type %q", d.Type))
	}
	if d.DropChance <= 0 || d.DropChance > 100 {
		return errors.NewWithDebug(errors.ErrValidation, "drop chance must be in (0,100]",
			fmt.Sprintf("drop_chance %v", d.DropChance))
	}
	if d.SlotIndex < 0 || d.SlotIndex > SlotIndexMax {
		return errors.NewWithDebug(errors.ErrValidation,
			fmt.Sprintf("slot index must be in [0,%d]", SlotIndexMax),
			fmt.Sprintf("slot_index %d", d.SlotIndex))
	}
	if d.TotalQuantity <= 0 {
		return errors.New(errors.ErrValidation, "total quantity must be positive")
	}
	if d.ImageURL == "" {
		return errors.New(errors.ErrValidation, "prize artwork is required")
	}
	return nil
}

// Validate checks an update against the field domains. Artwork may be
// cleared on update; the creation-only requirement is not re-enforced.
func (u *Update) Validate() error {
	if u.Name != nil && *u.Name == "" {
		return errors.New(errors.ErrValidation, "prize name must not be empty")
	}
	if u.DropChance != nil && (*u.DropChance <= 0 || *u.DropChance > 100) {
		return errors.NewWithDebug(errors.ErrValidation, "drop chance must be in (0,100]",
			fmt.Sprintf("drop_chance %v", *u.DropChance))
	}
	if u.TotalQuantity != nil && *u.TotalQuantity <= 0 {
		return errors.New(errors.ErrValidation, "total quantity must be positive")
	}
	return nil
}
