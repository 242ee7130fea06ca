package service

import (
	"context"
	"testing"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/events"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/internal/store/mocks"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const pollID int64 = 30

func openPoll(createdBy int64) *types.Poll {
	return &types.Poll{
		ID: pollID, TripID: tripID, Question: "Dinner?", Status: types.PollStatusOpen, CreatedBy: createdBy,
		Options: []types.PollOption{{ID: 1, PollID: pollID, Text: "Tapas"}, {ID: 2, PollID: pollID, Text: "Sushi"}},
	}
}

func TestPollService_CreatePoll(t *testing.T) {
	tests := []struct {
		name        string
		userID      int64
		req         types.CreatePollRequest
		wantOptions []string
		wantErr     apperrors.ErrorType
	}{
		{
			name:        "options sanitised and deduplicated",
			userID:      memberID,
			req:         types.CreatePollRequest{Question: "Where to <b>eat</b>?", Options: []string{"Tapas", " tapas ", "<i>Sushi</i>", ""}},
			wantOptions: []string{"Tapas", "Sushi"},
		},
		{name: "one distinct option", userID: memberID, req: types.CreatePollRequest{Question: "Q", Options: []string{"A", "a"}}, wantErr: apperrors.ValidationError},
		{name: "blank question", userID: memberID, req: types.CreatePollRequest{Question: " ", Options: []string{"A", "B"}}, wantErr: apperrors.ValidationError},
		{name: "pending member", userID: pendingID, req: types.CreatePollRequest{Question: "Q", Options: []string{"A", "B"}}, wantErr: apperrors.ForbiddenError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			polls := &mocks.PollStore{}
			pub := events.NewMockPublisher()
			polls.On("CreatePoll", mock.Anything, mock.Anything).Return(nil)
			svc := NewPollService(polls, newStubGate(), pub)

			poll, err := svc.CreatePoll(context.Background(), tripID, tt.userID, &tt.req)
			if tt.wantErr != "" {
				assert.True(t, apperrors.IsType(err, tt.wantErr), "got %v", err)
				polls.AssertNotCalled(t, "CreatePoll", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Where to eat?", poll.Question)
			assert.Equal(t, types.PollStatusOpen, poll.Status)
			texts := make([]string, 0, len(poll.Options))
			for i, o := range poll.Options {
				texts = append(texts, o.Text)
				assert.Equal(t, i, o.Position)
			}
			assert.Equal(t, tt.wantOptions, texts)
			assert.Equal(t, []types.EventType{types.EventTypePollCreated}, pub.Types(tripID))
		})
	}
}

func TestPollService_Vote(t *testing.T) {
	ctx := context.Background()

	t.Run("records vote and returns tallies", func(t *testing.T) {
		polls := &mocks.PollStore{}
		voted := openPoll(organizer)
		voted.Options[1].Votes = 1
		choice := int64(2)
		voted.MyVote = &choice
		polls.On("GetPoll", mock.Anything, pollID, memberID).Return(openPoll(organizer), nil).Once()
		polls.On("Vote", mock.Anything, pollID, int64(2), memberID).Return(nil)
		polls.On("GetPoll", mock.Anything, pollID, memberID).Return(voted, nil).Once()
		pub := events.NewMockPublisher()
		svc := NewPollService(polls, newStubGate(), pub)

		poll, err := svc.Vote(ctx, tripID, memberID, pollID, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, poll.Options[1].Votes)
		assert.Equal(t, int64(2), *poll.MyVote)
		assert.Equal(t, []types.EventType{types.EventTypePollVoted}, pub.Types(tripID))
	})

	t.Run("closed poll", func(t *testing.T) {
		polls := &mocks.PollStore{}
		closed := openPoll(organizer)
		closed.Status = types.PollStatusClosed
		polls.On("GetPoll", mock.Anything, pollID, memberID).Return(closed, nil)
		svc := NewPollService(polls, newStubGate(), nil)

		_, err := svc.Vote(ctx, tripID, memberID, pollID, 1)
		assert.True(t, apperrors.IsType(err, apperrors.ConflictError))
		polls.AssertNotCalled(t, "Vote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("option from another poll", func(t *testing.T) {
		polls := &mocks.PollStore{}
		polls.On("GetPoll", mock.Anything, pollID, memberID).Return(openPoll(organizer), nil)
		polls.On("Vote", mock.Anything, pollID, int64(99), memberID).Return(store.ErrNotFound)
		svc := NewPollService(polls, newStubGate(), nil)

		_, err := svc.Vote(ctx, tripID, memberID, pollID, 99)
		assert.True(t, apperrors.IsType(err, apperrors.NotFoundError))
	})

	t.Run("poll from another trip", func(t *testing.T) {
		polls := &mocks.PollStore{}
		other := openPoll(organizer)
		other.TripID = 11
		polls.On("GetPoll", mock.Anything, pollID, memberID).Return(other, nil)
		svc := NewPollService(polls, newStubGate(), nil)

		_, err := svc.Vote(ctx, tripID, memberID, pollID, 1)
		assert.True(t, apperrors.IsType(err, apperrors.NotFoundError))
	})
}

func TestPollService_ClosePoll(t *testing.T) {
	tests := []struct {
		name    string
		actor   int64
		creator int64
		status  types.PollStatus
		wantErr apperrors.ErrorType
	}{
		{name: "creator", actor: memberID, creator: memberID, status: types.PollStatusOpen},
		{name: "admin", actor: organizer, creator: memberID, status: types.PollStatusOpen},
		{name: "other member", actor: memberID, creator: organizer, status: types.PollStatusOpen, wantErr: apperrors.ForbiddenError},
		{name: "already closed", actor: memberID, creator: memberID, status: types.PollStatusClosed, wantErr: apperrors.ConflictError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			polls := &mocks.PollStore{}
			poll := openPoll(tt.creator)
			poll.Status = tt.status
			polls.On("GetPoll", mock.Anything, pollID, tt.actor).Return(poll, nil)
			polls.On("ClosePoll", mock.Anything, pollID).Return(nil)
			svc := NewPollService(polls, newStubGate(), events.NewMockPublisher())

			closed, err := svc.ClosePoll(context.Background(), tripID, tt.actor, pollID)
			if tt.wantErr != "" {
				assert.True(t, apperrors.IsType(err, tt.wantErr), "got %v", err)
				polls.AssertNotCalled(t, "ClosePoll", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, types.PollStatusClosed, closed.Status)
		})
	}
}
