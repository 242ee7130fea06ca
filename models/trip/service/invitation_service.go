package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/events"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/models/trip/validation"
	"github.com/NomadCrew/crewtrip-backend/services"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/google/uuid"
)

const maxBatchInvites = 50

// InvitationService invites users by username and manages join links.
type InvitationService struct {
	tx          store.Transactor
	trips       store.TripStore
	members     store.MemberStore
	users       store.UserStore
	links       store.InvitationStore
	gate        types.MemberGate
	jobs        services.JobSubmitter
	mailer      services.InvitationMailer
	events      types.EventPublisher
	frontendURL string
}

var _ InvitationServiceInterface = (*InvitationService)(nil)

func NewInvitationService(
	tx store.Transactor,
	trips store.TripStore,
	members store.MemberStore,
	users store.UserStore,
	links store.InvitationStore,
	gate types.MemberGate,
	jobs services.JobSubmitter,
	mailer services.InvitationMailer,
	eventPublisher types.EventPublisher,
	frontendURL string,
) *InvitationService {
	return &InvitationService{
		tx:          tx,
		trips:       trips,
		members:     members,
		users:       users,
		links:       links,
		gate:        gate,
		jobs:        jobs,
		mailer:      mailer,
		events:      eventPublisher,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// NormalizeUsernames trims, strips a leading "@" and drops case-insensitive
// duplicates while keeping the first spelling and the input order.
func NormalizeUsernames(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimPrefix(strings.TrimSpace(name), "@")
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// SummarizeBatch renders the one-line toast for a batch result.
func SummarizeBatch(r *types.BatchInvitationResult) string {
	sent, failed := len(r.Sent), r.FailedCount()
	switch {
	case failed == 0:
		return fmt.Sprintf("All %d invitations sent.", sent)
	case sent == 0:
		return fmt.Sprintf("No invitations sent: %d failed.", failed)
	default:
		return fmt.Sprintf("Partial success: %d sent, %d failed.", sent, failed)
	}
}

type batchRecorder struct {
	*types.BatchInvitationResult
}

func (r *batchRecorder) add(outcome types.InvitationOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
	switch outcome.Status {
	case types.InvitationOutcomeSent:
		r.Sent = append(r.Sent, outcome.Username)
	case types.InvitationOutcomeAlreadyMember:
		r.AlreadyInvited = append(r.AlreadyInvited, outcome.Username)
	case types.InvitationOutcomeNotFound:
		r.NotFound = append(r.NotFound, outcome.Username)
	case types.InvitationOutcomePermissionDenied:
		r.PermissionDenied = append(r.PermissionDenied, outcome.Username)
	default:
		r.Failed = append(r.Failed, outcome.Username)
	}
}

func newBatchRecorder() *batchRecorder {
	return &batchRecorder{BatchInvitationResult: &types.BatchInvitationResult{
		Outcomes:         []types.InvitationOutcome{},
		Sent:             []string{},
		AlreadyInvited:   []string{},
		NotFound:         []string{},
		PermissionDenied: []string{},
		Failed:           []string{},
	}}
}

// InviteUsernames handles each username on its own so one bad entry never
// fails the batch. Only trip admins may invite; for anyone else every entry
// is reported as permission_denied.
func (s *InvitationService) InviteUsernames(ctx context.Context, tripID, actorID int64, usernames []string) (*types.BatchInvitationResult, error) {
	mc, err := s.gate.RequireMember(ctx, tripID, actorID)
	if err != nil {
		return nil, err
	}

	names := NormalizeUsernames(usernames)
	if len(names) == 0 {
		return nil, apperrors.ValidationFailed("no usernames provided", "enter at least one username")
	}
	if len(names) > maxBatchInvites {
		return nil, apperrors.ValidationFailed("too many usernames", fmt.Sprintf("invite at most %d people at once", maxBatchInvites))
	}

	result := newBatchRecorder()
	if !mc.IsAdmin() {
		for _, name := range names {
			result.add(types.InvitationOutcome{
				Username: name,
				Status:   types.InvitationOutcomePermissionDenied,
				Error:    "Only trip admins can invite members",
			})
		}
		result.Message = SummarizeBatch(result.BatchInvitationResult)
		return result.BatchInvitationResult, nil
	}

	found, err := s.users.FindByUsernames(ctx, names)
	if err != nil {
		return nil, store.ToAppError(err, "User", strings.Join(names, ","))
	}
	inviter, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		logger.GetLogger().Warnw("Could not load inviter for email", "userID", actorID, "error", err)
	}

	for _, name := range names {
		user := found[strings.ToLower(name)]
		outcome := s.inviteOne(ctx, mc.Trip, actorID, name, user)
		result.add(outcome)
		if outcome.Status == types.InvitationOutcomeSent {
			s.queueEmail(mc.Trip, inviter, user)
			events.Emit(ctx, s.events, types.EventTypeMemberInvited, tripID, actorID, map[string]interface{}{
				"userId":   user.ID,
				"username": user.Username,
			})
		}
	}

	result.Message = SummarizeBatch(result.BatchInvitationResult)
	logger.GetLogger().Infow("Batch invitation processed",
		"tripID", tripID,
		"sent", len(result.Sent),
		"failed", result.FailedCount())
	return result.BatchInvitationResult, nil
}

func (s *InvitationService) inviteOne(ctx context.Context, trip *types.Trip, actorID int64, name string, user *types.User) types.InvitationOutcome {
	outcome := types.InvitationOutcome{Username: name}
	if user == nil || user.IsLegacyRemoved {
		outcome.Status = types.InvitationOutcomeNotFound
		outcome.Error = "No user with that username"
		return outcome
	}
	id := user.ID
	outcome.UserID = &id

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.members.GetMember(ctx, trip.ID, user.ID)
		if err == nil && existing.IsActive() {
			return store.ErrConflict
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		invitedBy := actorID
		return s.members.AddMember(ctx, &types.TripMember{
			TripID:        trip.ID,
			UserID:        user.ID,
			Status:        types.InvitationStatusPending,
			RSVPStatus:    types.RSVPStatusPending,
			PaymentStatus: validation.InitialPaymentStatus(trip),
			InvitedBy:     &invitedBy,
		})
	})

	switch {
	case err == nil:
		outcome.Status = types.InvitationOutcomeSent
	case errors.Is(err, store.ErrConflict):
		outcome.Status = types.InvitationOutcomeAlreadyMember
		outcome.Error = "Already a member of this trip"
	default:
		logger.GetLogger().Errorw("Invitation failed", "tripID", trip.ID, "userID", user.ID, "error", err)
		outcome.Status = types.InvitationOutcomeFailed
		outcome.Error = "Could not send invitation"
	}
	return outcome
}

func (s *InvitationService) queueEmail(trip *types.Trip, inviter, invitee *types.User) {
	if s.jobs == nil || s.mailer == nil || invitee.Email == "" {
		return
	}
	email := types.InvitationEmail{
		To:          invitee.Email,
		InviteeName: invitee.Name(),
		InviterName: inviter.Name(),
		TripName:    trip.Name,
		Destination: trip.Destination,
		TripURL:     fmt.Sprintf("%s/trips/%d", s.frontendURL, trip.ID),
	}
	if !s.jobs.Submit(services.Job{
		Name: "invitation-email",
		Execute: func(ctx context.Context) error {
			return s.mailer.SendInvitationEmail(ctx, email)
		},
	}) {
		logger.GetLogger().Warnw("Invitation email dropped", "tripID", trip.ID, "userID", invitee.ID)
	}
}

func (s *InvitationService) requireAdmin(ctx context.Context, tripID, actorID int64, action string) (*types.MemberContext, error) {
	mc, err := s.gate.RequireMember(ctx, tripID, actorID)
	if err != nil {
		return nil, err
	}
	if !mc.IsAdmin() {
		return nil, apperrors.AdminOnly(action)
	}
	return mc, nil
}

// CreateLink issues a shareable join token. expiresInHours <= 0 means the
// link never expires.
func (s *InvitationService) CreateLink(ctx context.Context, tripID, actorID int64, expiresInHours int) (*types.InvitationLink, error) {
	if _, err := s.requireAdmin(ctx, tripID, actorID, "create invitation links"); err != nil {
		return nil, err
	}
	link := &types.InvitationLink{
		TripID:    tripID,
		Token:     uuid.NewString(),
		CreatedBy: actorID,
	}
	if expiresInHours > 0 {
		expires := time.Now().UTC().Add(time.Duration(expiresInHours) * time.Hour)
		link.ExpiresAt = &expires
	}
	if err := s.links.CreateLink(ctx, link); err != nil {
		return nil, store.ToAppError(err, "InvitationLink", tripID)
	}
	return link, nil
}

func (s *InvitationService) ListLinks(ctx context.Context, tripID, actorID int64) ([]*types.InvitationLink, error) {
	if _, err := s.requireAdmin(ctx, tripID, actorID, "view invitation links"); err != nil {
		return nil, err
	}
	links, err := s.links.ListLinks(ctx, tripID)
	if err != nil {
		return nil, store.ToAppError(err, "InvitationLink", tripID)
	}
	return links, nil
}

func (s *InvitationService) RevokeLink(ctx context.Context, tripID, actorID, linkID int64) error {
	if _, err := s.requireAdmin(ctx, tripID, actorID, "revoke invitation links"); err != nil {
		return err
	}
	return store.ToAppError(s.links.RevokeLink(ctx, tripID, linkID), "InvitationLink", linkID)
}

// JoinByToken adds the caller as a pending member. Joining twice returns the
// existing membership.
func (s *InvitationService) JoinByToken(ctx context.Context, token string, userID int64) (*types.TripMember, error) {
	link, err := s.links.GetLinkByToken(ctx, token)
	if err != nil {
		return nil, store.ToAppError(err, "Invitation", token)
	}
	if link.IsExpired(time.Now().UTC()) {
		return nil, apperrors.NotFound("Invitation", token)
	}

	var member *types.TripMember
	joined := false
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		trip, err := s.trips.GetTrip(ctx, link.TripID)
		if err != nil {
			return err
		}
		if trip.IsArchived() {
			return store.ErrNotFound
		}
		existing, err := s.members.GetMember(ctx, link.TripID, userID)
		if err == nil && existing.IsActive() {
			member = existing
			return nil
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		invitedBy := link.CreatedBy
		member = &types.TripMember{
			TripID:        link.TripID,
			UserID:        userID,
			Status:        types.InvitationStatusPending,
			RSVPStatus:    types.RSVPStatusPending,
			PaymentStatus: validation.InitialPaymentStatus(trip),
			InvitedBy:     &invitedBy,
		}
		joined = true
		return s.members.AddMember(ctx, member)
	})
	if err != nil {
		return nil, store.ToAppError(err, "Trip", link.TripID)
	}

	if joined {
		events.Emit(ctx, s.events, types.EventTypeMemberJoined, link.TripID, userID, map[string]interface{}{
			"userId": userID,
		})
	}
	return member, nil
}
