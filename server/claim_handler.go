package server

import (
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/auth"
	"github.com/Digital-Creators-Team/prize-wheel-module/claim"
	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/Digital-Creators-Team/prize-wheel-module/pkg/providers"
	"github.com/gin-gonic/gin"
)

// ClaimHandler serves claim fulfillment routes for club operators
type ClaimHandler struct {
	app *App
}

// NewClaimHandler creates a new claim handler
func NewClaimHandler(app *App) *ClaimHandler {
	return &ClaimHandler{app: app}
}

type confirmRequest struct {
	Notes string `json:"notes"`
}

// requireClaimAccess loads a claim and verifies the actor may act on it.
// Club operators are restricted to their own venue and players to their
// own claims, matching the List scoping; admins pass freely.
func (h *ClaimHandler) requireClaimAccess(c *gin.Context, claimID string) (*claim.Claim, bool) {
	cl, err := h.app.claims.Get(claimID)
	if err != nil {
		HandleAppError(c, err)
		return nil, false
	}

	role, _ := auth.GetRole(c)
	actorID, _ := auth.GetUserID(c)

	switch role {
	case auth.RoleAdmin:
	case auth.RoleClub:
		if cl.ClubID != actorID {
			HandleAppError(c, errors.New(errors.ErrForbidden, "claim belongs to another club"))
			return nil, false
		}
	case auth.RolePlayer:
		if cl.PlayerID != actorID {
			HandleAppError(c, errors.New(errors.ErrForbidden, "claim belongs to another player"))
			return nil, false
		}
	default:
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "unknown actor role"))
		return nil, false
	}

	return cl, true
}

// Confirm godoc
// @Summary Confirm a pending claim
// @Description Acknowledges a player's win on behalf of the venue; valid only from pending
// @Tags claims
// @Accept json
// @Produce json
// @Param claim_id path string true "Claim ID"
// @Param request body confirmRequest false "Optional notes"
// @Security BearerAuth
// @Success 200 {object} SuccessResponse[claim.Claim]
// @Failure 403 {object} ErrorResponse "Another venue's claim"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Invalid transition"
// @Router /claims/{claim_id}/confirm [post]
func (h *ClaimHandler) Confirm(c *gin.Context) {
	claimID := c.Param("claim_id")
	actorID, _ := auth.GetUserID(c)

	if _, ok := h.requireClaimAccess(c, claimID); !ok {
		return
	}

	var req confirmRequest
	// Body is optional; binding failures only matter when a body exists.
	_ = c.ShouldBindJSON(&req)

	confirmed, err := h.app.claims.Confirm(claimID, actorID, req.Notes)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	h.logClaimAction(c, confirmed, "confirm", actorID)

	OK(c, confirmed)
}

// ActivateTime godoc
// @Summary Activate a confirmed club-time claim
// @Description Issues a club_time prize; valid only from confirmed and only for club_time prizes
// @Tags claims
// @Produce json
// @Param claim_id path string true "Claim ID"
// @Security BearerAuth
// @Success 200 {object} SuccessResponse[claim.Claim]
// @Failure 400 {object} ErrorResponse "Wrong prize type"
// @Failure 403 {object} ErrorResponse "Another venue's claim"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Invalid transition"
// @Router /claims/{claim_id}/activate-time [post]
func (h *ClaimHandler) ActivateTime(c *gin.Context) {
	claimID := c.Param("claim_id")
	actorID, _ := auth.GetUserID(c)

	if _, ok := h.requireClaimAccess(c, claimID); !ok {
		return
	}

	issued, err := h.app.claims.ActivateTime(claimID, actorID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	h.logClaimAction(c, issued, "activate_time", actorID)

	OK(c, issued)
}

// List godoc
// @Summary List claims
// @Description Club operators see their venue's claims; players see their own
// @Tags claims
// @Produce json
// @Param club_id query string false "Filter by club"
// @Param status query string false "Filter by status (pending|confirmed|issued)"
// @Security BearerAuth
// @Success 200 {object} SuccessResponse[[]claim.Claim]
// @Router /claims [get]
func (h *ClaimHandler) List(c *gin.Context) {
	role, _ := auth.GetRole(c)
	actorID, _ := auth.GetUserID(c)

	filter := claim.ListFilter{
		ClubID: c.Query("club_id"),
		Status: claim.Status(c.Query("status")),
	}

	switch role {
	case auth.RolePlayer:
		filter.PlayerID = actorID
	case auth.RoleClub:
		// Club operators only see their own venue regardless of the
		// requested filter.
		filter.ClubID = actorID
	case auth.RoleAdmin:
		// Admins may filter freely.
	default:
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "unknown actor role"))
		return
	}

	OK(c, h.app.claims.List(filter))
}

// Get godoc
// @Summary Get a single claim
// @Description Scoped like List: players see their own claims, clubs their venue's
// @Tags claims
// @Produce json
// @Param claim_id path string true "Claim ID"
// @Security BearerAuth
// @Success 200 {object} SuccessResponse[claim.Claim]
// @Failure 403 {object} ErrorResponse "Someone else's claim"
// @Failure 404 {object} ErrorResponse
// @Router /claims/{claim_id} [get]
func (h *ClaimHandler) Get(c *gin.Context) {
	found, ok := h.requireClaimAccess(c, c.Param("claim_id"))
	if !ok {
		return
	}

	OK(c, found)
}

func (h *ClaimHandler) logClaimAction(c *gin.Context, cl *claim.Claim, action, actorID string) {
	if h.app.logProvider == nil {
		return
	}
	if err := h.app.logProvider.LogClaim(c.Request.Context(), &providers.ClaimLog{
		ClaimID:   cl.ID,
		PlayerID:  cl.PlayerID,
		ClubID:    cl.ClubID,
		PrizeID:   cl.PrizeID,
		Action:    action,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		h.app.logger.Error().Err(err).Str("claim_id", cl.ID).Msg("Failed to record claim audit log")
	}
}
