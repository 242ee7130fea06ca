package handlers

import (
	"net/http"
	"strconv"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	chatservice "github.com/NomadCrew/crewtrip-backend/models/chat/service"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
)

// ChatHandler handles trip group chat.
type ChatHandler struct {
	chat chatservice.ChatServiceInterface
}

func NewChatHandler(chat chatservice.ChatServiceInterface) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ListMessages godoc
// @Summary List chat messages
// @Description Newest first. Pass nextBefore from the previous page as before to page back.
// @Tags chat
// @Produce json
// @Param id path int true "Trip ID"
// @Param before query int false "Return messages older than this ID"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} types.MessagePage "Messages"
// @Failure 400 {object} types.ErrorResponse "Bad request - Invalid paging"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/chat/messages [get]
// @Security BearerAuth
func (h *ChatHandler) ListMessages(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}

	var before *int64
	if raw := c.Query("before"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			_ = c.Error(apperrors.ValidationFailed("invalid_before", "before must be a message ID"))
			return
		}
		before = &id
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			_ = c.Error(apperrors.ValidationFailed("invalid_limit", "limit must be a positive number"))
			return
		}
		limit = n
	}

	page, err := h.chat.ListMessages(c.Request.Context(), tripID, userID, before, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// SendMessage godoc
// @Summary Send a chat message
// @Tags chat
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param request body types.SendMessageRequest true "Message"
// @Success 201 {object} types.ChatMessage "Stored message"
// @Failure 400 {object} types.ErrorResponse "Bad request - Empty or too long"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/chat/messages [post]
// @Security BearerAuth
func (h *ChatHandler) SendMessage(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	var req types.SendMessageRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	msg, err := h.chat.SendMessage(c.Request.Context(), tripID, userID, req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// DeleteMessage godoc
// @Summary Delete a chat message
// @Tags chat
// @Param id path int true "Trip ID"
// @Param messageId path int true "Message ID"
// @Success 204 "Deleted"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Author or admin only"
// @Failure 404 {object} types.ErrorResponse "Not found"
// @Router /trips/{id}/chat/messages/{messageId} [delete]
// @Security BearerAuth
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	messageID, ok := paramID(c, "messageId")
	if !ok {
		return
	}
	if err := h.chat.DeleteMessage(c.Request.Context(), tripID, userID, messageID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
