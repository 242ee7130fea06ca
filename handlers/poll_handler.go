package handlers

import (
	"net/http"

	chatservice "github.com/NomadCrew/crewtrip-backend/models/chat/service"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
)

// PollHandler handles HTTP requests for trip polls.
type PollHandler struct {
	polls chatservice.PollServiceInterface
}

func NewPollHandler(polls chatservice.PollServiceInterface) *PollHandler {
	return &PollHandler{polls: polls}
}

// CreatePollHandler godoc
// @Summary Create a poll
// @Tags polls
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param request body types.CreatePollRequest true "Question and 2 to 10 options"
// @Success 201 {object} types.Poll "Created poll"
// @Failure 400 {object} types.ErrorResponse "Bad request"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/polls [post]
// @Security BearerAuth
func (h *PollHandler) CreatePollHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	var req types.CreatePollRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	poll, err := h.polls.CreatePoll(c.Request.Context(), tripID, userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, poll)
}

// ListPollsHandler godoc
// @Summary List polls with tallies
// @Tags polls
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {array} types.Poll "Polls"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/polls [get]
// @Security BearerAuth
func (h *PollHandler) ListPollsHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	polls, err := h.polls.ListPolls(c.Request.Context(), tripID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if polls == nil {
		polls = []*types.Poll{}
	}
	c.JSON(http.StatusOK, polls)
}

// CastVoteHandler godoc
// @Summary Vote on a poll
// @Description One vote per member; voting again changes the choice while the poll is open.
// @Tags polls
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param pollId path int true "Poll ID"
// @Param request body types.VoteRequest true "Option"
// @Success 200 {object} types.Poll "Poll with updated tallies"
// @Failure 404 {object} types.ErrorResponse "Not found - Poll or option"
// @Failure 409 {object} types.ErrorResponse "Conflict - Poll closed"
// @Router /trips/{id}/polls/{pollId}/votes [post]
// @Security BearerAuth
func (h *PollHandler) CastVoteHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	pollID, ok := paramID(c, "pollId")
	if !ok {
		return
	}
	var req types.VoteRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	poll, err := h.polls.Vote(c.Request.Context(), tripID, userID, pollID, req.OptionID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// ClosePollHandler godoc
// @Summary Close a poll
// @Tags polls
// @Produce json
// @Param id path int true "Trip ID"
// @Param pollId path int true "Poll ID"
// @Success 200 {object} types.Poll "Closed poll"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Creator or admin only"
// @Failure 409 {object} types.ErrorResponse "Conflict - Already closed"
// @Router /trips/{id}/polls/{pollId}/close [post]
// @Security BearerAuth
func (h *PollHandler) ClosePollHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	pollID, ok := paramID(c, "pollId")
	if !ok {
		return
	}
	poll, err := h.polls.ClosePoll(c.Request.Context(), tripID, userID, pollID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, poll)
}
