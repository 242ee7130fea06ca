package postgres

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/types"
)

var _ store.ChatStore = (*ChatStore)(nil)

// ChatStore implements the store.ChatStore interface using PostgreSQL
type ChatStore struct {
	base
}

func NewChatStore(pool Pool) *ChatStore {
	return &ChatStore{base{pool: pool}}
}

func (s *ChatStore) CreateMessage(ctx context.Context, msg *types.ChatMessage) error {
	err := s.db(ctx).QueryRow(ctx, `
		INSERT INTO chat_messages (trip_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		msg.TripID, msg.UserID, msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
	return mapError("create chat message", err)
}

func (s *ChatStore) GetMessage(ctx context.Context, tripID, messageID int64) (*types.ChatMessage, error) {
	m := &types.ChatMessage{}
	err := s.db(ctx).QueryRow(ctx, `
		SELECT c.id, c.trip_id, c.user_id, u.username, c.content, c.created_at
		FROM chat_messages c
		JOIN users u ON u.id = c.user_id
		WHERE c.trip_id = $1 AND c.id = $2`, tripID, messageID,
	).Scan(&m.ID, &m.TripID, &m.UserID, &m.Username, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, mapError("get chat message", err)
	}
	return m, nil
}

func (s *ChatStore) ListMessages(ctx context.Context, tripID int64, before *int64, limit int) ([]*types.ChatMessage, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT c.id, c.trip_id, c.user_id, u.username, c.content, c.created_at
		FROM chat_messages c
		JOIN users u ON u.id = c.user_id
		WHERE c.trip_id = $1 AND ($2::bigint IS NULL OR c.id < $2)
		ORDER BY c.id DESC
		LIMIT $3`, tripID, before, limit)
	if err != nil {
		return nil, mapError("list chat messages", err)
	}
	defer rows.Close()

	out := []*types.ChatMessage{}
	for rows.Next() {
		m := &types.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.TripID, &m.UserID, &m.Username, &m.Content, &m.CreatedAt); err != nil {
			return nil, mapError("scan chat message", err)
		}
		out = append(out, m)
	}
	return out, mapError("iterate chat messages", rows.Err())
}

func (s *ChatStore) DeleteMessage(ctx context.Context, tripID, messageID int64) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM chat_messages WHERE trip_id = $1 AND id = $2`, tripID, messageID)
	if err != nil {
		return mapError("delete chat message", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
