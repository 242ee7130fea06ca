package service

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
)

// TripServiceInterface is consumed by the trip handlers.
type TripServiceInterface interface {
	CreateTrip(ctx context.Context, userID int64, req *types.CreateTripRequest) (*types.Trip, error)
	GetTrip(ctx context.Context, tripID, userID int64) (*types.TripWithMembership, error)
	ListTrips(ctx context.Context, userID int64) ([]*types.TripWithMembership, error)
	UpdateTrip(ctx context.Context, tripID, userID int64, update *types.TripUpdate) (*types.Trip, error)
	ArchiveTrip(ctx context.Context, tripID, userID int64) error
}

// MemberServiceInterface drives the membership state machine.
type MemberServiceInterface interface {
	ListMembers(ctx context.Context, tripID, userID int64) ([]*types.MemberView, error)
	UpdateRSVP(ctx context.Context, tripID, actorID, targetID int64, status types.RSVPStatus) (*types.TripMember, error)
	SubmitPayment(ctx context.Context, tripID, actorID, targetID int64, sub types.PaymentSubmission, evidence *Evidence) (*types.TripMember, error)
	ReviewPayment(ctx context.Context, tripID, actorID, targetID int64, approve bool) (*types.TripMember, error)
	SetAdmin(ctx context.Context, tripID, actorID, targetID int64, isAdmin bool) (*types.TripMember, error)
	RemoveMember(ctx context.Context, tripID, actorID, targetID int64) error
}

// InvitationServiceInterface covers batch invites and shareable links.
type InvitationServiceInterface interface {
	InviteUsernames(ctx context.Context, tripID, actorID int64, usernames []string) (*types.BatchInvitationResult, error)
	CreateLink(ctx context.Context, tripID, actorID int64, expiresInHours int) (*types.InvitationLink, error)
	ListLinks(ctx context.Context, tripID, actorID int64) ([]*types.InvitationLink, error)
	RevokeLink(ctx context.Context, tripID, actorID, linkID int64) error
	JoinByToken(ctx context.Context, token string, userID int64) (*types.TripMember, error)
}

// BudgetServiceInterface estimates per-person trip costs.
type BudgetServiceInterface interface {
	Estimate(ctx context.Context, tripID, userID int64, days int) (*types.BudgetEstimate, error)
}
