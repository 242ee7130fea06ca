package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/google/uuid"
)

const defaultSource = "crewtrip-api"

// NewEvent builds a trip event with a JSON payload.
func NewEvent(eventType types.EventType, tripID, userID int64, payload any) (types.Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return types.Event{}, err
	}
	return types.Event{
		BaseEvent: types.BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			TripID:    tripID,
			UserID:    userID,
			Timestamp: time.Now().UTC(),
			Version:   1,
		},
		Metadata: types.EventMetadata{Source: defaultSource},
		Payload:  data,
	}, nil
}

// Emit publishes an event after the caller's write has committed. Delivery is
// best effort: failures are logged and never surface to the request.
func Emit(ctx context.Context, pub types.EventPublisher, eventType types.EventType, tripID, userID int64, payload any) {
	if pub == nil {
		return
	}
	log := logger.GetLogger()

	event, err := NewEvent(eventType, tripID, userID, payload)
	if err != nil {
		log.Warnw("Failed to build event", "type", eventType, "tripID", tripID, "error", err)
		return
	}
	event.Metadata.CorrelationID = logger.RequestIDFromContext(ctx)
	if err := pub.Publish(ctx, tripID, event); err != nil {
		log.Warnw("Failed to publish event", "type", eventType, "tripID", tripID, "error", err)
	}
}
