package service

import (
	"context"
	"errors"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/types"
)

// MembershipGate is the single place trip content access is decided. Every
// content feature asks it before reading or writing.
type MembershipGate struct {
	trips   store.TripStore
	members store.MemberStore
}

var _ types.MemberGate = (*MembershipGate)(nil)

func NewMembershipGate(trips store.TripStore, members store.MemberStore) *MembershipGate {
	return &MembershipGate{trips: trips, members: members}
}

func (g *MembershipGate) RequireMember(ctx context.Context, tripID, userID int64) (*types.MemberContext, error) {
	trip, err := g.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, store.ToAppError(err, "Trip", tripID)
	}

	member, err := g.members.GetMember(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotTripMember(tripID, userID)
		}
		return nil, store.ToAppError(err, "Member", userID)
	}
	if !member.IsActive() {
		return nil, apperrors.NotTripMember(tripID, userID)
	}
	return &types.MemberContext{Trip: trip, Member: member}, nil
}

func (g *MembershipGate) RequireConfirmedMember(ctx context.Context, tripID, userID int64) (*types.MemberContext, error) {
	mc, err := g.RequireMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !types.IsConfirmedMember(mc.Trip, mc.Member) {
		return nil, apperrors.NotConfirmedMember(tripID, userID)
	}
	return mc, nil
}
