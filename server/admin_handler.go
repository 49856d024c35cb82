package server

import (
	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/Digital-Creators-Team/prize-wheel-module/prize"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves administrator prize CRUD routes
type AdminHandler struct {
	app *App
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(app *App) *AdminHandler {
	return &AdminHandler{app: app}
}

// CreatePrize godoc
// @Summary Create a prize
// @Description Adds a new active prize; slot index must be free among the club's active prizes
// @Tags admin
// @Accept json
// @Produce json
// @Param request body prize.Definition true "Prize definition"
// @Security BearerAuth
// @Success 201 {object} SuccessResponse[prize.Prize]
// @Failure 400 {object} ErrorResponse "Validation error"
// @Router /admin/prizes [post]
func (h *AdminHandler) CreatePrize(c *gin.Context) {
	var def prize.Definition
	if err := c.ShouldBindJSON(&def); err != nil {
		BadRequest(c, errors.Wrap(err, errors.ErrValidation, "malformed prize definition"))
		return
	}

	created, err := h.app.registry.Create(def)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	h.app.logger.Info().
		Str("prize_id", created.ID).
		Str("club_id", created.ClubID).
		Int("slot_index", created.SlotIndex).
		Msg("Prize created")

	Created(c, created)
}

// UpdatePrize godoc
// @Summary Update a prize
// @Description Applies a partial update; slot index cannot change after creation
// @Tags admin
// @Accept json
// @Produce json
// @Param prize_id path string true "Prize ID"
// @Param request body prize.Update true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} SuccessResponse[prize.Prize]
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 404 {object} ErrorResponse
// @Router /admin/prizes/{prize_id} [patch]
func (h *AdminHandler) UpdatePrize(c *gin.Context) {
	var upd prize.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		BadRequest(c, errors.Wrap(err, errors.ErrValidation, "malformed prize update"))
		return
	}

	updated, err := h.app.registry.Update(c.Param("prize_id"), upd)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	OK(c, updated)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetPrizeActive godoc
// @Summary Activate or deactivate a prize
// @Description Soft toggle for roulette eligibility; the prize record survives for historical claims
// @Tags admin
// @Accept json
// @Produce json
// @Param prize_id path string true "Prize ID"
// @Param request body setActiveRequest true "Active flag"
// @Security BearerAuth
// @Success 200 {object} SuccessResponse[prize.Prize]
// @Failure 404 {object} ErrorResponse
// @Router /admin/prizes/{prize_id}/active [post]
func (h *AdminHandler) SetPrizeActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		BadRequest(c, errors.New(errors.ErrValidation, "active flag is required"))
		return
	}

	updated, err := h.app.registry.SetActive(c.Param("prize_id"), *req.Active)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	OK(c, updated)
}

type importResult struct {
	Imported []*prize.Prize `json:"imported"`
	Skipped  int            `json:"skipped"`
}

// ImportPrizes godoc
// @Summary Bulk import prizes from a backend export
// @Description Accepts loosely shaped payloads (aliased id/image keys, nested prize objects), normalizes them, and imports each entry with its original id. Broken or colliding entries are skipped, not fatal.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body []map[string]interface{} true "Exported prize payloads"
// @Security BearerAuth
// @Success 201 {object} SuccessResponse[importResult]
// @Failure 400 {object} ErrorResponse "Malformed payload"
// @Router /admin/prizes/import [post]
func (h *AdminHandler) ImportPrizes(c *gin.Context) {
	var payloads []map[string]interface{}
	if err := c.ShouldBindJSON(&payloads); err != nil {
		BadRequest(c, errors.Wrap(err, errors.ErrValidation, "malformed import payload"))
		return
	}

	normalized := prize.NormalizePayloadList(payloads)
	skipped := len(payloads) - len(normalized)

	imported := make([]*prize.Prize, 0, len(normalized))
	for _, p := range normalized {
		stored, err := h.app.registry.Import(p)
		if err != nil {
			h.app.logger.Warn().
				Err(err).
				Str("prize_id", p.ID).
				Msg("Skipping prize on import")
			skipped++
			continue
		}
		imported = append(imported, stored)
	}

	h.app.logger.Info().
		Int("imported", len(imported)).
		Int("skipped", skipped).
		Msg("Prize import finished")

	Created(c, importResult{Imported: imported, Skipped: skipped})
}

// ListPrizes godoc
// @Summary List prizes
// @Tags admin
// @Produce json
// @Param club_id query string false "Filter by club"
// @Param active_only query bool false "Only active prizes"
// @Security BearerAuth
// @Success 200 {object} SuccessResponse[[]prize.Prize]
// @Router /admin/prizes [get]
func (h *AdminHandler) ListPrizes(c *gin.Context) {
	filter := prize.ListFilter{
		ClubID:     c.Query("club_id"),
		ActiveOnly: c.Query("active_only") == "true",
	}

	OK(c, h.app.registry.List(filter))
}

// GetPrize godoc
// @Summary Get a single prize
// @Tags admin
// @Produce json
// @Param prize_id path string true "Prize ID"
// @Security BearerAuth
// @Success 200 {object} SuccessResponse[prize.Prize]
// @Failure 404 {object} ErrorResponse
// @Router /admin/prizes/{prize_id} [get]
func (h *AdminHandler) GetPrize(c *gin.Context) {
	found, err := h.app.registry.Get(c.Param("prize_id"))
	if err != nil {
		HandleAppError(c, err)
		return
	}

	OK(c, found)
}
