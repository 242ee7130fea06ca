package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func testEvent(tripID int64) types.Event {
	return types.Event{
		BaseEvent: types.BaseEvent{
			ID:        "evt-1",
			Type:      types.EventTypeExpenseCreated,
			TripID:    tripID,
			UserID:    7,
			Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Version:   1,
		},
		Metadata: types.EventMetadata{Source: "test"},
		Payload:  json.RawMessage(`{"expenseId":1}`),
	}
}

func TestRedisPublisher_Publish(t *testing.T) {
	resetMetricsForTesting()

	t.Run("publishes to the trip channel", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		pub := NewRedisPublisher(rdb)

		event := testEvent(42)
		data, err := json.Marshal(event)
		require.NoError(t, err)
		mock.ExpectPublish("trip:42", string(data)).SetVal(1)

		require.NoError(t, pub.Publish(context.Background(), 42, event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mismatched trip is rejected", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		pub := NewRedisPublisher(rdb)

		err := pub.Publish(context.Background(), 43, testEvent(42))
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure surfaces", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		pub := NewRedisPublisher(rdb)

		event := testEvent(42)
		data, _ := json.Marshal(event)
		mock.ExpectPublish("trip:42", string(data)).SetErr(errors.New("down"))

		err := pub.Publish(context.Background(), 42, event)
		assert.ErrorContains(t, err, "redis publish")
	})
}

func TestRedisPublisher_PublishBatch(t *testing.T) {
	resetMetricsForTesting()
	rdb, mock := redismock.NewClientMock()
	pub := NewRedisPublisher(rdb)

	first := testEvent(5)
	second := testEvent(5)
	second.ID = "evt-2"
	second.Type = types.EventTypeSettlementCreated

	d1, _ := json.Marshal(first)
	d2, _ := json.Marshal(second)
	mock.ExpectPublish("trip:5", string(d1)).SetVal(1)
	mock.ExpectPublish("trip:5", string(d2)).SetVal(1)

	require.NoError(t, pub.PublishBatch(context.Background(), 5, []types.Event{first, second}))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, pub.PublishBatch(context.Background(), 5, nil))
}

func TestRedisPublisher_UnsubscribeUnknown(t *testing.T) {
	resetMetricsForTesting()
	rdb, _ := redismock.NewClientMock()
	pub := NewRedisPublisher(rdb)

	assert.Error(t, pub.Unsubscribe(context.Background(), 1, 2))
	assert.NoError(t, pub.Shutdown(context.Background()))
}

func TestMatchesFilters(t *testing.T) {
	assert.True(t, matchesFilters(types.EventTypePollVoted, nil))
	assert.True(t, matchesFilters(types.EventTypePollVoted, []types.EventType{types.EventTypePollCreated, types.EventTypePollVoted}))
	assert.False(t, matchesFilters(types.EventTypeChatMessageSent, []types.EventType{types.EventTypePollVoted}))
}

func TestEmit(t *testing.T) {
	pub := NewMockPublisher()
	ctx := logger.WithRequestID(context.Background(), "req-1")

	Emit(ctx, pub, types.EventTypeMemberJoined, 9, 3, map[string]int64{"userId": 3})

	got := pub.Events(9)
	require.Len(t, got, 1)
	assert.Equal(t, types.EventTypeMemberJoined, got[0].Type)
	assert.Equal(t, int64(9), got[0].TripID)
	assert.Equal(t, "req-1", got[0].Metadata.CorrelationID)
	assert.JSONEq(t, `{"userId":3}`, string(got[0].Payload))
	assert.NoError(t, got[0].Validate())
}

func TestEmit_PublishFailureIsSwallowed(t *testing.T) {
	pub := NewMockPublisher()
	pub.Close()

	assert.NotPanics(t, func() {
		Emit(context.Background(), pub, types.EventTypeMemberJoined, 9, 3, nil)
		Emit(context.Background(), nil, types.EventTypeMemberJoined, 9, 3, nil)
	})
	assert.Empty(t, pub.Events(9))
}
