package service

import (
	"context"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/types"
)

func init() {
	logger.IsTest = true
}

const (
	tripID    int64 = 10
	organizer int64 = 1
	memberID  int64 = 2
	pendingID int64 = 3
)

type stubGate struct {
	trip    *types.Trip
	members map[int64]*types.TripMember
}

func newStubGate() *stubGate {
	return &stubGate{
		trip: &types.Trip{ID: tripID, OrganizerID: organizer},
		members: map[int64]*types.TripMember{
			organizer: {TripID: tripID, UserID: organizer, RSVPStatus: types.RSVPStatusConfirmed, IsAdmin: true},
			memberID:  {TripID: tripID, UserID: memberID, RSVPStatus: types.RSVPStatusConfirmed},
			pendingID: {TripID: tripID, UserID: pendingID, RSVPStatus: types.RSVPStatusPending},
		},
	}
}

func (g *stubGate) RequireMember(_ context.Context, tripID, userID int64) (*types.MemberContext, error) {
	m, ok := g.members[userID]
	if !ok {
		return nil, apperrors.NotTripMember(tripID, userID)
	}
	return &types.MemberContext{Trip: g.trip, Member: m}, nil
}

func (g *stubGate) RequireConfirmedMember(ctx context.Context, tripID, userID int64) (*types.MemberContext, error) {
	mc, err := g.RequireMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !types.IsConfirmedMember(mc.Trip, mc.Member) {
		return nil, apperrors.NotConfirmedMember(tripID, userID)
	}
	return mc, nil
}
