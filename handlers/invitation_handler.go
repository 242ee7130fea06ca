package handlers

import (
	"net/http"
	"strings"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/logger"
	tripservice "github.com/NomadCrew/crewtrip-backend/models/trip/service"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
)

// InvitationHandler handles username invitations and shareable join links.
type InvitationHandler struct {
	invitations tripservice.InvitationServiceInterface
}

func NewInvitationHandler(invitations tripservice.InvitationServiceInterface) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// InviteUsernamesHandler godoc
// @Summary Invite users by username
// @Description Invites each username independently and reports a per-username outcome. Usernames may be an array or a comma separated string.
// @Tags trips-invitations
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param request body types.InviteRequest true "Usernames"
// @Success 200 {object} types.BatchInvitationResult "Per-username outcomes and summary"
// @Failure 400 {object} types.ErrorResponse "Bad request - No usernames"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Not a member"
// @Router /trips/{id}/invitations [post]
// @Security BearerAuth
func (h *InvitationHandler) InviteUsernamesHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	var req types.InviteRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	result, err := h.invitations.InviteUsernames(c.Request.Context(), tripID, userID, req.Usernames)
	if err != nil {
		_ = c.Error(err)
		return
	}
	logger.GetLogger().Infow("Batch invitation processed",
		"tripID", tripID, "sent", len(result.Sent), "failed", result.FailedCount())
	c.JSON(http.StatusOK, result)
}

// CreateLinkHandler godoc
// @Summary Create an invitation link
// @Tags trips-invitations
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param request body types.CreateInvitationLinkRequest false "Optional expiry"
// @Success 201 {object} types.InvitationLink "Link"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Admins only"
// @Router /trips/{id}/invitation-links [post]
// @Security BearerAuth
func (h *InvitationHandler) CreateLinkHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	var req types.CreateInvitationLinkRequest
	if c.Request.ContentLength != 0 && !bindJSONOrError(c, &req) {
		return
	}
	link, err := h.invitations.CreateLink(c.Request.Context(), tripID, userID, req.ExpiresInHours)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// ListLinksHandler godoc
// @Summary List invitation links
// @Tags trips-invitations
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {array} types.InvitationLink "Links"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Admins only"
// @Router /trips/{id}/invitation-links [get]
// @Security BearerAuth
func (h *InvitationHandler) ListLinksHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	links, err := h.invitations.ListLinks(c.Request.Context(), tripID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if links == nil {
		links = []*types.InvitationLink{}
	}
	c.JSON(http.StatusOK, links)
}

// RevokeLinkHandler godoc
// @Summary Revoke an invitation link
// @Tags trips-invitations
// @Param id path int true "Trip ID"
// @Param linkId path int true "Link ID"
// @Success 204 "Revoked"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Admins only"
// @Failure 404 {object} types.ErrorResponse "Not found"
// @Router /trips/{id}/invitation-links/{linkId} [delete]
// @Security BearerAuth
func (h *InvitationHandler) RevokeLinkHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	linkID, ok := paramID(c, "linkId")
	if !ok {
		return
	}
	if err := h.invitations.RevokeLink(c.Request.Context(), tripID, userID, linkID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// JoinByTokenHandler godoc
// @Summary Join a trip through an invitation link
// @Description Adds the caller as a pending member. Unknown or expired tokens are reported as not found.
// @Tags trips-invitations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} types.TripMember "Membership"
// @Failure 404 {object} types.ErrorResponse "Not found - Unknown or expired link"
// @Router /invitations/{token}/join [post]
// @Security BearerAuth
func (h *InvitationHandler) JoinByTokenHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		_ = c.Error(apperrors.ValidationFailed("invalid_token", "invitation token is required"))
		return
	}
	member, err := h.invitations.JoinByToken(c.Request.Context(), token, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, member)
}
