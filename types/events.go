package types

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NomadCrew/crewtrip-backend/errors"
)

type EventType string

const (
	CategoryTrip       = "TRIP"
	CategoryMember     = "MEMBER"
	CategoryExpense    = "EXPENSE"
	CategorySettlement = "SETTLEMENT"
	CategoryChat       = "CHAT"
	CategoryPoll       = "POLL"
	CategoryActivity   = "ACTIVITY"
	CategoryFlight     = "FLIGHT"
)

const (
	EventTypeTripUpdated  EventType = CategoryTrip + "_UPDATED"
	EventTypeTripArchived EventType = CategoryTrip + "_ARCHIVED"

	EventTypeMemberInvited          EventType = CategoryMember + "_INVITED"
	EventTypeMemberJoined           EventType = CategoryMember + "_JOINED"
	EventTypeMemberRSVPUpdated      EventType = CategoryMember + "_RSVP_UPDATED"
	EventTypeMemberPaymentSubmitted EventType = CategoryMember + "_PAYMENT_SUBMITTED"
	EventTypeMemberPaymentReviewed  EventType = CategoryMember + "_PAYMENT_REVIEWED"
	EventTypeMemberAdminUpdated     EventType = CategoryMember + "_ADMIN_UPDATED"
	EventTypeMemberRemoved          EventType = CategoryMember + "_REMOVED"

	EventTypeExpenseCreated EventType = CategoryExpense + "_CREATED"
	EventTypeExpenseDeleted EventType = CategoryExpense + "_DELETED"

	EventTypeSettlementCreated   EventType = CategorySettlement + "_CREATED"
	EventTypeSettlementConfirmed EventType = CategorySettlement + "_CONFIRMED"
	EventTypeSettlementCancelled EventType = CategorySettlement + "_CANCELLED"

	EventTypeChatMessageSent EventType = CategoryChat + "_MESSAGE_SENT"

	EventTypePollCreated EventType = CategoryPoll + "_CREATED"
	EventTypePollVoted   EventType = CategoryPoll + "_VOTED"
	EventTypePollClosed  EventType = CategoryPoll + "_CLOSED"

	EventTypeActivityCreated     EventType = CategoryActivity + "_CREATED"
	EventTypeActivityDeleted     EventType = CategoryActivity + "_DELETED"
	EventTypeActivityRSVPUpdated EventType = CategoryActivity + "_RSVP_UPDATED"

	EventTypeFlightUpdated EventType = CategoryFlight + "_UPDATED"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TripID    int64     `json:"tripId"`
	UserID    int64     `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`
}

type EventMetadata struct {
	CorrelationID string `json:"correlationId,omitempty"`
	Source        string `json:"source"`
}

type Event struct {
	BaseEvent
	Metadata EventMetadata   `json:"metadata"`
	Payload  json.RawMessage `json:"payload"`
}

func (e Event) Validate() error {
	if e.ID == "" {
		return errors.ValidationFailed("invalid event", "event ID is required")
	}
	if e.Type == "" {
		return errors.ValidationFailed("invalid event", "event type is required")
	}
	if e.TripID <= 0 {
		return errors.ValidationFailed("invalid event", "trip ID is required")
	}
	if e.Timestamp.IsZero() {
		return errors.ValidationFailed("invalid event", "timestamp is required")
	}
	return nil
}

// EventPublisher fans trip events out to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, tripID int64, event Event) error
	Subscribe(ctx context.Context, tripID int64, userID int64, filters ...EventType) (<-chan Event, error)
	Unsubscribe(ctx context.Context, tripID int64, userID int64) error
}
