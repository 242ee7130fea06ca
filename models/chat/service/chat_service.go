package service

import (
	"context"
	"unicode/utf8"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/events"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/pkg/sanitize"
	"github.com/NomadCrew/crewtrip-backend/types"
)

const (
	DefaultPageSize  = 50
	MaxPageSize      = 100
	maxMessageLength = 4000
)

// ChatService stores trip chat and fans new messages out as events.
type ChatService struct {
	chats  store.ChatStore
	gate   types.MemberGate
	events types.EventPublisher
}

var _ ChatServiceInterface = (*ChatService)(nil)

func NewChatService(chats store.ChatStore, gate types.MemberGate, eventPublisher types.EventPublisher) *ChatService {
	return &ChatService{chats: chats, gate: gate, events: eventPublisher}
}

func (s *ChatService) SendMessage(ctx context.Context, tripID, userID int64, content string) (*types.ChatMessage, error) {
	if _, err := s.gate.RequireConfirmedMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	clean := sanitize.Text(content)
	if clean == "" {
		return nil, apperrors.ValidationFailed("empty message", "message content is required")
	}
	if utf8.RuneCountInString(clean) > maxMessageLength {
		return nil, apperrors.ValidationFailed("message too long", "messages are limited to 4000 characters")
	}

	msg := &types.ChatMessage{TripID: tripID, UserID: userID, Content: clean}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		return nil, store.ToAppError(err, "ChatMessage", tripID)
	}

	logger.GetLogger().Debugw("Chat message stored", "tripId", tripID, "messageId", msg.ID, "userId", userID)
	events.Emit(ctx, s.events, types.EventTypeChatMessageSent, tripID, userID, msg)
	return msg, nil
}

// ListMessages returns a newest-first page. NextBefore is set while older
// messages may remain.
func (s *ChatService) ListMessages(ctx context.Context, tripID, userID int64, before *int64, limit int) (*types.MessagePage, error) {
	if _, err := s.gate.RequireConfirmedMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	msgs, err := s.chats.ListMessages(ctx, tripID, before, limit)
	if err != nil {
		return nil, store.ToAppError(err, "ChatMessage", tripID)
	}
	page := &types.MessagePage{Messages: msgs}
	if page.Messages == nil {
		page.Messages = []*types.ChatMessage{}
	}
	if len(msgs) == limit {
		oldest := msgs[len(msgs)-1].ID
		page.NextBefore = &oldest
	}
	return page, nil
}

// DeleteMessage lets authors retract their own messages and admins moderate.
func (s *ChatService) DeleteMessage(ctx context.Context, tripID, userID, messageID int64) error {
	mc, err := s.gate.RequireMember(ctx, tripID, userID)
	if err != nil {
		return err
	}
	msg, err := s.chats.GetMessage(ctx, tripID, messageID)
	if err != nil {
		return store.ToAppError(err, "ChatMessage", messageID)
	}
	if msg.UserID != userID && !mc.IsAdmin() {
		return apperrors.Forbidden("Only the author or a trip admin can delete this message", "")
	}
	if err := s.chats.DeleteMessage(ctx, tripID, messageID); err != nil {
		return store.ToAppError(err, "ChatMessage", messageID)
	}
	return nil
}
