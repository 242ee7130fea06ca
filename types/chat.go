package types

import "time"

type ChatMessage struct {
	ID        int64     `json:"id"`
	TripID    int64     `json:"tripId"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

// MessagePage is a newest-first page; pass NextBefore to fetch older messages.
type MessagePage struct {
	Messages   []*ChatMessage `json:"messages"`
	NextBefore *int64         `json:"nextBefore,omitempty"`
}
