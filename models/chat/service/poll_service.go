package service

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/events"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/pkg/sanitize"
	"github.com/NomadCrew/crewtrip-backend/types"
)

const (
	minPollOptions = 2
	maxPollOptions = 10
)

type PollService struct {
	polls  store.PollStore
	gate   types.MemberGate
	events types.EventPublisher
}

var _ PollServiceInterface = (*PollService)(nil)

func NewPollService(polls store.PollStore, gate types.MemberGate, eventPublisher types.EventPublisher) *PollService {
	return &PollService{polls: polls, gate: gate, events: eventPublisher}
}

// CreatePoll stores a question with at least two distinct options.
func (s *PollService) CreatePoll(ctx context.Context, tripID, userID int64, req *types.CreatePollRequest) (*types.Poll, error) {
	if _, err := s.gate.RequireConfirmedMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	question := sanitize.Text(req.Question)
	if question == "" {
		return nil, apperrors.ValidationFailed("invalid poll", "question is required")
	}

	seen := make(map[string]bool, len(req.Options))
	options := make([]types.PollOption, 0, len(req.Options))
	for _, text := range sanitize.Texts(req.Options) {
		key := strings.ToLower(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		options = append(options, types.PollOption{Text: text, Position: len(options)})
	}
	if len(options) < minPollOptions || len(options) > maxPollOptions {
		return nil, apperrors.ValidationFailed("invalid poll", "a poll needs between 2 and 10 distinct options")
	}

	poll := &types.Poll{
		TripID:    tripID,
		Question:  question,
		Status:    types.PollStatusOpen,
		CreatedBy: userID,
		Options:   options,
	}
	if err := s.polls.CreatePoll(ctx, poll); err != nil {
		return nil, store.ToAppError(err, "Poll", tripID)
	}

	events.Emit(ctx, s.events, types.EventTypePollCreated, tripID, userID, poll)
	return poll, nil
}

func (s *PollService) ListPolls(ctx context.Context, tripID, userID int64) ([]*types.Poll, error) {
	if _, err := s.gate.RequireConfirmedMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	polls, err := s.polls.ListPolls(ctx, tripID, userID)
	if err != nil {
		return nil, store.ToAppError(err, "Poll", tripID)
	}
	return polls, nil
}

// Vote records or changes the caller's choice while the poll is open.
func (s *PollService) Vote(ctx context.Context, tripID, userID, pollID, optionID int64) (*types.Poll, error) {
	if _, err := s.gate.RequireConfirmedMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	poll, err := s.tripPoll(ctx, tripID, pollID, userID)
	if err != nil {
		return nil, err
	}
	if poll.Status != types.PollStatusOpen {
		return nil, apperrors.NewConflictError("Poll is closed", "votes are no longer accepted")
	}
	if err := s.polls.Vote(ctx, pollID, optionID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("PollOption", optionID)
		}
		return nil, store.ToAppError(err, "Poll", pollID)
	}

	updated, err := s.tripPoll(ctx, tripID, pollID, userID)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.events, types.EventTypePollVoted, tripID, userID, map[string]int64{"pollId": pollID, "optionId": optionID})
	return updated, nil
}

// ClosePoll freezes the tallies. Only the creator or an admin can close.
func (s *PollService) ClosePoll(ctx context.Context, tripID, userID, pollID int64) (*types.Poll, error) {
	mc, err := s.gate.RequireMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	poll, err := s.tripPoll(ctx, tripID, pollID, userID)
	if err != nil {
		return nil, err
	}
	if poll.CreatedBy != userID && !mc.IsAdmin() {
		return nil, apperrors.Forbidden("Only the creator or a trip admin can close this poll", "")
	}
	if poll.Status == types.PollStatusClosed {
		return nil, apperrors.NewConflictError("Poll is closed", "poll was already closed")
	}
	if err := s.polls.ClosePoll(ctx, pollID); err != nil {
		return nil, store.ToAppError(err, "Poll", pollID)
	}

	poll.Status = types.PollStatusClosed
	events.Emit(ctx, s.events, types.EventTypePollClosed, tripID, userID, poll)
	return poll, nil
}

func (s *PollService) tripPoll(ctx context.Context, tripID, pollID, viewerID int64) (*types.Poll, error) {
	poll, err := s.polls.GetPoll(ctx, pollID, viewerID)
	if err != nil {
		return nil, store.ToAppError(err, "Poll", pollID)
	}
	if poll.TripID != tripID {
		return nil, apperrors.NotFound("Poll", pollID)
	}
	return poll, nil
}
