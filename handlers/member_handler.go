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

const evidenceField = "evidence"

// MemberHandler handles RSVP, down payment and admin changes on trip members.
type MemberHandler struct {
	members        tripservice.MemberServiceInterface
	maxUploadBytes int64
}

// NewMemberHandler creates a MemberHandler. maxUploadBytes caps multipart
// request bodies; zero disables the cap.
func NewMemberHandler(members tripservice.MemberServiceInterface, maxUploadBytes int64) *MemberHandler {
	return &MemberHandler{members: members, maxUploadBytes: maxUploadBytes}
}

func memberScope(c *gin.Context) (tripID, actorID, targetID int64, ok bool) {
	if tripID, actorID, ok = tripScope(c); !ok {
		return 0, 0, 0, false
	}
	if targetID, ok = paramID(c, "userId"); !ok {
		return 0, 0, 0, false
	}
	return tripID, actorID, targetID, true
}

// ListMembersHandler godoc
// @Summary List trip members
// @Description Active members with RSVP and payment state. Admins also receive evidence links.
// @Tags members
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {array} types.MemberView "Members"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Not a member"
// @Router /trips/{id}/members [get]
// @Security BearerAuth
func (h *MemberHandler) ListMembersHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	members, err := h.members.ListMembers(c.Request.Context(), tripID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if members == nil {
		members = []*types.MemberView{}
	}
	c.JSON(http.StatusOK, members)
}

// UpdateRSVPHandler godoc
// @Summary Respond to a trip invitation
// @Description Confirm or decline. Trips requiring a down payment move a confirming member to awaiting_payment.
// @Tags members
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param userId path int true "Member user ID"
// @Param request body types.RSVPRequest true "RSVP"
// @Success 200 {object} types.TripMember "Updated member"
// @Failure 400 {object} types.ErrorResponse "Bad request - Invalid status"
// @Failure 403 {object} types.ErrorResponse "Forbidden"
// @Failure 409 {object} types.ErrorResponse "Conflict - Transition not allowed"
// @Router /trips/{id}/members/{userId}/rsvp [put]
// @Security BearerAuth
func (h *MemberHandler) UpdateRSVPHandler(c *gin.Context) {
	tripID, actorID, targetID, ok := memberScope(c)
	if !ok {
		return
	}
	var req types.RSVPRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	member, err := h.members.UpdateRSVP(c.Request.Context(), tripID, actorID, targetID, req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// SubmitPaymentHandler godoc
// @Summary Submit a down payment
// @Description Accepts JSON, or multipart/form-data with an optional evidence file (PDF or image).
// @Tags members
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Trip ID"
// @Param userId path int true "Member user ID (must be the caller)"
// @Param method formData string true "venmo, paypal or cash"
// @Param note formData string false "Note for the organizer"
// @Param evidence formData file false "Receipt"
// @Success 200 {object} types.TripMember "Updated member"
// @Failure 400 {object} types.ErrorResponse "Bad request - Invalid payload or file"
// @Failure 403 {object} types.ErrorResponse "Forbidden"
// @Failure 409 {object} types.ErrorResponse "Conflict - Not awaiting payment"
// @Router /trips/{id}/members/{userId}/payment [post]
// @Security BearerAuth
func (h *MemberHandler) SubmitPaymentHandler(c *gin.Context) {
	tripID, actorID, targetID, ok := memberScope(c)
	if !ok {
		return
	}

	var sub types.PaymentSubmission
	var evidence *tripservice.Evidence

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if h.maxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
		}
		if err := c.ShouldBind(&sub); err != nil {
			_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
			return
		}
		fh, err := c.FormFile(evidenceField)
		if err != nil && err != http.ErrMissingFile {
			_ = c.Error(apperrors.ValidationFailed("invalid_evidence", err.Error()))
			return
		}
		if fh != nil {
			f, err := fh.Open()
			if err != nil {
				_ = c.Error(apperrors.ValidationFailed("invalid_evidence", err.Error()))
				return
			}
			defer f.Close()
			evidence = &tripservice.Evidence{Body: f}
		}
	} else if !bindJSONOrError(c, &sub) {
		return
	}

	member, err := h.members.SubmitPayment(c.Request.Context(), tripID, actorID, targetID, sub, evidence)
	if err != nil {
		logger.GetLogger().Infow("Down payment rejected", "tripID", tripID, "userID", actorID, "error", err)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// ReviewPaymentHandler godoc
// @Summary Approve or reject a down payment
// @Tags members
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param userId path int true "Member user ID"
// @Param request body types.PaymentReview true "Decision"
// @Success 200 {object} types.TripMember "Updated member"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Organizer only"
// @Failure 409 {object} types.ErrorResponse "Conflict - Nothing to review"
// @Router /trips/{id}/members/{userId}/payment [put]
// @Security BearerAuth
func (h *MemberHandler) ReviewPaymentHandler(c *gin.Context) {
	tripID, actorID, targetID, ok := memberScope(c)
	if !ok {
		return
	}
	var req types.PaymentReview
	if !bindJSONOrError(c, &req) {
		return
	}
	member, err := h.members.ReviewPayment(c.Request.Context(), tripID, actorID, targetID, *req.Approve)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// SetAdminHandler godoc
// @Summary Grant or revoke admin rights
// @Tags members
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param userId path int true "Member user ID"
// @Param request body types.AdminUpdateRequest true "Admin flag"
// @Success 200 {object} types.TripMember "Updated member"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Admins only, or last admin"
// @Router /trips/{id}/members/{userId}/admin [put]
// @Security BearerAuth
func (h *MemberHandler) SetAdminHandler(c *gin.Context) {
	tripID, actorID, targetID, ok := memberScope(c)
	if !ok {
		return
	}
	var req types.AdminUpdateRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	member, err := h.members.SetAdmin(c.Request.Context(), tripID, actorID, targetID, *req.IsAdmin)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// RemoveMemberHandler godoc
// @Summary Remove a member or leave a trip
// @Description Admins may remove others; any member may remove themselves. The organizer cannot be removed.
// @Tags members
// @Param id path int true "Trip ID"
// @Param userId path int true "Member user ID"
// @Success 204 "Removed"
// @Failure 403 {object} types.ErrorResponse "Forbidden"
// @Failure 404 {object} types.ErrorResponse "Not found"
// @Router /trips/{id}/members/{userId} [delete]
// @Security BearerAuth
func (h *MemberHandler) RemoveMemberHandler(c *gin.Context) {
	tripID, actorID, targetID, ok := memberScope(c)
	if !ok {
		return
	}
	if err := h.members.RemoveMember(c.Request.Context(), tripID, actorID, targetID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
