package types

import "time"

type PollStatus string

const (
	PollStatusOpen   PollStatus = "open"
	PollStatusClosed PollStatus = "closed"
)

type Poll struct {
	ID        int64        `json:"id"`
	TripID    int64        `json:"tripId"`
	Question  string       `json:"question"`
	Status    PollStatus   `json:"status"`
	CreatedBy int64        `json:"createdBy"`
	Options   []PollOption `json:"options"`
	MyVote    *int64       `json:"myVote,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	ClosedAt  *time.Time   `json:"closedAt,omitempty"`
}

type PollOption struct {
	ID       int64  `json:"id"`
	PollID   int64  `json:"pollId"`
	Text     string `json:"text"`
	Position int    `json:"position"`
	Votes    int    `json:"votes"`
}

type CreatePollRequest struct {
	Question string   `json:"question" binding:"required,max=300"`
	Options  []string `json:"options" binding:"required,min=2,max=10,dive,required,max=120"`
}

type VoteRequest struct {
	OptionID int64 `json:"optionId" binding:"required"`
}
