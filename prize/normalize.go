package prize

import (
	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/mitchellh/mapstructure"
)

// rawPrize mirrors the loose shapes different backend endpoints produce
// for the same prize entity. Field names vary by endpoint, so every
// alias is captured and resolved in one place.
type rawPrize struct {
	ID            string  `mapstructure:"id"`
	MongoID       string  `mapstructure:"_id"`
	PrizeID       string  `mapstructure:"prizeId"`
	ClubID        string  `mapstructure:"clubId"`
	Name          string  `mapstructure:"name"`
	Type          string  `mapstructure:"type"`
	Value         int64   `mapstructure:"value"`
	DropChance    float64 `mapstructure:"dropChance"`
	SlotIndex     int     `mapstructure:"slotIndex"`
	TotalQuantity int     `mapstructure:"totalQuantity"`
	Image         string  `mapstructure:"image"`
	ImageURL      string  `mapstructure:"imageUrl"`
	Active        *bool   `mapstructure:"active"`

	// Some endpoints nest the full prize under a "prize" key
	Nested map[string]interface{} `mapstructure:"prize"`
}

// NormalizePayload maps a duck-typed backend payload onto a Prize.
// This is the single normalization boundary: everything past it works
// with one canonical shape and never branches on payload layout.
func NormalizePayload(payload map[string]interface{}) (*Prize, error) {
	var raw rawPrize
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "failed to build payload decoder")
	}
	if err := decoder.Decode(payload); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "malformed prize payload")
	}

	if raw.Nested != nil {
		return NormalizePayload(raw.Nested)
	}

	id := raw.ID
	if id == "" {
		id = raw.MongoID
	}
	if id == "" {
		id = raw.PrizeID
	}
	if id == "" {
		return nil, errors.New(errors.ErrValidation, "prize payload has no id")
	}

	image := raw.ImageURL
	if image == "" {
		image = raw.Image
	}

	active := true
	if raw.Active != nil {
		active = *raw.Active
	}

	return &Prize{
		ID:            id,
		ClubID:        raw.ClubID,
		Name:          raw.Name,
		Type:          Type(raw.Type),
		Value:         raw.Value,
		DropChance:    raw.DropChance,
		SlotIndex:     raw.SlotIndex,
		TotalQuantity: raw.TotalQuantity,
		ImageURL:      image,
		Active:        active,
	}, nil
}

// NormalizePayloadList maps a slice of duck-typed payloads, skipping
// entries that cannot produce a usable prize. A partial backend response
// should not blank the whole wheel.
func NormalizePayloadList(payloads []map[string]interface{}) []*Prize {
	prizes := make([]*Prize, 0, len(payloads))
	for _, payload := range payloads {
		p, err := NormalizePayload(payload)
		if err != nil {
			continue
		}
		prizes = append(prizes, p)
	}
	return prizes
}
