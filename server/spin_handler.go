package server

import (
	"net/http"

	"github.com/Digital-Creators-Team/prize-wheel-module/auth"
	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/Digital-Creators-Team/prize-wheel-module/pkg/providers"
	"github.com/gin-gonic/gin"
)

// SpinHandler serves player and venue-display roulette routes
type SpinHandler struct {
	app *App
}

// NewSpinHandler creates a new spin handler
func NewSpinHandler(app *App) *SpinHandler {
	return &SpinHandler{app: app}
}

// Spin godoc
// @Summary Spin the club's prize wheel
// @Description Debits the fixed spin cost and draws one prize from the club's weighted distribution
// @Tags roulette
// @Accept json
// @Produce json
// @Param club_id path string true "Club ID"
// @Security BearerAuth
// @Success 200 {object} SuccessResponse[SpinResult]
// @Failure 400 {object} ErrorResponse "Insufficient balance"
// @Failure 409 {object} ErrorResponse "No prizes available"
// @Router /clubs/{club_id}/spin [post]
func (h *SpinHandler) Spin(c *gin.Context) {
	clubID := c.Param("club_id")
	if clubID == "" {
		BadRequest(c, errors.New(errors.ErrValidation, "club_id is required"))
		return
	}

	playerID, ok := auth.GetUserID(c)
	if !ok {
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "missing player identity"))
		return
	}

	result, err := h.app.spinService.RequestSpin(c.Request.Context(), clubID, playerID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	OK(c, result)
}

// GetRoulette godoc
// @Summary Get the club's wheel configuration
// @Description Returns the active prizes in draw order with weights and wheel geometry
// @Tags roulette
// @Produce json
// @Param club_id path string true "Club ID"
// @Security BearerAuth
// @Success 200 {object} SuccessResponse[RouletteView]
// @Router /clubs/{club_id}/roulette [get]
func (h *SpinHandler) GetRoulette(c *gin.Context) {
	clubID := c.Param("club_id")
	if clubID == "" {
		BadRequest(c, errors.New(errors.ErrValidation, "club_id is required"))
		return
	}

	view, err := h.app.spinService.GetRoulette(c.Request.Context(), clubID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	OK(c, view)
}

// GetLatestSpin godoc
// @Summary Poll the club's most recent spin
// @Description Idempotent read used by venue displays; clients de-duplicate by spin id
// @Tags roulette
// @Produce json
// @Param club_id path string true "Club ID"
// @Security BearerAuth
// @Success 200 {object} SuccessResponse[roulette.SpinOutcome]
// @Success 204 "No spin recorded yet"
// @Router /clubs/{club_id}/spin/latest [get]
func (h *SpinHandler) GetLatestSpin(c *gin.Context) {
	clubID := c.Param("club_id")
	if clubID == "" {
		BadRequest(c, errors.New(errors.ErrValidation, "club_id is required"))
		return
	}

	outcome, err := h.app.spinService.GetLatestSpin(c.Request.Context(), clubID)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	if outcome == nil {
		NoContent(c)
		return
	}

	OK(c, outcome)
}

// GetSpinHistory godoc
// @Summary Get the caller's spin history
// @Tags roulette
// @Produce json
// @Param club_id query string false "Filter by club"
// @Param page query int false "Page offset"
// @Param limit query int false "Page size"
// @Security BearerAuth
// @Success 200 {object} SuccessResponse[providers.SpinHistoryResponse]
// @Router /spins/history [get]
func (h *SpinHandler) GetSpinHistory(c *gin.Context) {
	playerID, ok := auth.GetUserID(c)
	if !ok {
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "missing player identity"))
		return
	}

	var query struct {
		ClubID string `form:"club_id"`
		Page   int    `form:"page"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, errors.Wrap(err, errors.ErrValidation, "invalid history query"))
		return
	}

	history, err := h.app.spinService.GetSpinHistory(c.Request.Context(), &providers.SpinHistoryQuery{
		PlayerID: playerID,
		ClubID:   query.ClubID,
		Page:     query.Page,
		Limit:    query.Limit,
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err)
		return
	}

	OK(c, history)
}
