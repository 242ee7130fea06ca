package service

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
)

// ChatServiceInterface covers trip chat.
type ChatServiceInterface interface {
	SendMessage(ctx context.Context, tripID, userID int64, content string) (*types.ChatMessage, error)
	ListMessages(ctx context.Context, tripID, userID int64, before *int64, limit int) (*types.MessagePage, error)
	DeleteMessage(ctx context.Context, tripID, userID, messageID int64) error
}

// PollServiceInterface covers polls posted to the trip chat.
type PollServiceInterface interface {
	CreatePoll(ctx context.Context, tripID, userID int64, req *types.CreatePollRequest) (*types.Poll, error)
	ListPolls(ctx context.Context, tripID, userID int64) ([]*types.Poll, error)
	Vote(ctx context.Context, tripID, userID, pollID, optionID int64) (*types.Poll, error)
	ClosePoll(ctx context.Context, tripID, userID, pollID int64) (*types.Poll, error)
}
