package service

import (
	"context"
	"io"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/events"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/models/trip/validation"
	"github.com/NomadCrew/crewtrip-backend/pkg/sanitize"
	"github.com/NomadCrew/crewtrip-backend/services"
	"github.com/NomadCrew/crewtrip-backend/types"
)

// Evidence is an optional receipt attached to a down-payment submission.
type Evidence struct {
	Body io.Reader
}

// MemberService owns the RSVP, down payment and admin transitions. Each
// transition locks the trip row so concurrent admin changes cannot both pass
// the admin floor check.
type MemberService struct {
	tx       store.Transactor
	trips    store.TripStore
	members  store.MemberStore
	gate     types.MemberGate
	evidence services.EvidenceStorage
	events   types.EventPublisher
}

var _ MemberServiceInterface = (*MemberService)(nil)

func NewMemberService(
	tx store.Transactor,
	trips store.TripStore,
	members store.MemberStore,
	gate types.MemberGate,
	evidence services.EvidenceStorage,
	eventPublisher types.EventPublisher,
) *MemberService {
	return &MemberService{
		tx:       tx,
		trips:    trips,
		members:  members,
		gate:     gate,
		evidence: evidence,
		events:   eventPublisher,
	}
}

// ListMembers returns active members. Admins also get short-lived links to
// payment evidence.
func (s *MemberService) ListMembers(ctx context.Context, tripID, userID int64) ([]*types.MemberView, error) {
	mc, err := s.gate.RequireMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	members, err := s.members.ListMembers(ctx, tripID, false)
	if err != nil {
		return nil, store.ToAppError(err, "Member", tripID)
	}

	showEvidence := mc.IsAdmin() && s.evidence != nil
	views := make([]*types.MemberView, 0, len(members))
	for _, m := range members {
		view := &types.MemberView{TripMember: *m}
		if showEvidence && m.PaymentEvidenceKey != "" {
			url, err := s.evidence.PresignURL(ctx, m.PaymentEvidenceKey)
			if err != nil {
				logger.GetLogger().Warnw("Failed to presign evidence", "tripID", tripID, "userID", m.UserID, "error", err)
			} else {
				view.EvidenceURL = url
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// lockTarget locks the trip and loads the active target member.
func (s *MemberService) lockTarget(ctx context.Context, tripID, targetID int64) (*types.Trip, *types.TripMember, error) {
	trip, err := s.trips.LockTrip(ctx, tripID)
	if err != nil {
		return nil, nil, store.ToAppError(err, "Trip", tripID)
	}
	member, err := s.members.GetMember(ctx, tripID, targetID)
	if err != nil {
		return nil, nil, store.ToAppError(err, "Member", targetID)
	}
	if !member.IsActive() {
		return nil, nil, apperrors.NotFound("Member", targetID)
	}
	return trip, member, nil
}

func (s *MemberService) checkAdminFloor(ctx context.Context, trip *types.Trip, target *types.TripMember) error {
	if !types.IsTripAdmin(trip, target) {
		return nil
	}
	count, err := s.members.CountAdmins(ctx, trip.ID)
	if err != nil {
		return err
	}
	return validation.CheckAdminFloor(trip, target, count)
}

// UpdateRSVP answers the caller's own invitation.
func (s *MemberService) UpdateRSVP(ctx context.Context, tripID, actorID, targetID int64, status types.RSVPStatus) (*types.TripMember, error) {
	if actorID != targetID {
		return nil, apperrors.Forbidden("You can only RSVP for yourself", "")
	}

	var updated types.TripMember
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		trip, member, err := s.lockTarget(ctx, tripID, targetID)
		if err != nil {
			return err
		}
		if status == types.RSVPStatusDeclined {
			if err := s.checkAdminFloor(ctx, trip, member); err != nil {
				return err
			}
		}
		updated, err = validation.ApplyRSVP(trip, *member, status)
		if err != nil {
			return err
		}
		return s.members.UpdateMember(ctx, &updated)
	})
	if err != nil {
		return nil, store.ToAppError(err, "Member", targetID)
	}

	events.Emit(ctx, s.events, types.EventTypeMemberRSVPUpdated, tripID, actorID, map[string]interface{}{
		"userId":        targetID,
		"rsvpStatus":    updated.RSVPStatus,
		"paymentStatus": updated.PaymentStatus,
	})
	return &updated, nil
}

// SubmitPayment records the caller's down payment. Evidence is uploaded
// before the transaction and removed again if the transition fails.
func (s *MemberService) SubmitPayment(ctx context.Context, tripID, actorID, targetID int64, sub types.PaymentSubmission, evidence *Evidence) (*types.TripMember, error) {
	if actorID != targetID {
		return nil, apperrors.Forbidden("You can only submit your own payment", "")
	}
	if _, err := s.gate.RequireMember(ctx, tripID, actorID); err != nil {
		return nil, err
	}

	var evidenceKey string
	if evidence != nil && evidence.Body != nil {
		if s.evidence == nil {
			return nil, apperrors.ValidationFailed("evidence uploads are not enabled", "submit the payment without a file")
		}
		key, err := s.evidence.Upload(ctx, tripID, actorID, evidence.Body)
		if err != nil {
			return nil, err
		}
		evidenceKey = key
	}
	sub.Note = sanitize.Text(sub.Note)

	var updated types.TripMember
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		trip, member, err := s.lockTarget(ctx, tripID, targetID)
		if err != nil {
			return err
		}
		updated, err = validation.ApplyPaymentSubmission(trip, *member, sub)
		if err != nil {
			return err
		}
		if evidenceKey != "" {
			updated.PaymentEvidenceKey = evidenceKey
		}
		return s.members.UpdateMember(ctx, &updated)
	})
	if err != nil {
		if evidenceKey != "" {
			if delErr := s.evidence.Delete(ctx, evidenceKey); delErr != nil {
				logger.GetLogger().Warnw("Failed to clean up evidence", "key", evidenceKey, "error", delErr)
			}
		}
		return nil, store.ToAppError(err, "Member", targetID)
	}

	events.Emit(ctx, s.events, types.EventTypeMemberPaymentSubmitted, tripID, actorID, map[string]interface{}{
		"userId": targetID,
		"method": updated.PaymentMethod,
	})
	return &updated, nil
}

// ReviewPayment is the organizer's approve or reject decision.
func (s *MemberService) ReviewPayment(ctx context.Context, tripID, actorID, targetID int64, approve bool) (*types.TripMember, error) {
	var updated types.TripMember
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		trip, member, err := s.lockTarget(ctx, tripID, targetID)
		if err != nil {
			return err
		}
		if !trip.IsOrganizer(actorID) {
			return apperrors.OrganizerOnly("review down payments")
		}
		updated, err = validation.ApplyPaymentReview(*member, approve)
		if err != nil {
			return err
		}
		return s.members.UpdateMember(ctx, &updated)
	})
	if err != nil {
		return nil, store.ToAppError(err, "Member", targetID)
	}

	events.Emit(ctx, s.events, types.EventTypeMemberPaymentReviewed, tripID, actorID, map[string]interface{}{
		"userId":        targetID,
		"paymentStatus": updated.PaymentStatus,
	})
	return &updated, nil
}

// SetAdmin grants or revokes admin rights. The organizer is always an admin.
func (s *MemberService) SetAdmin(ctx context.Context, tripID, actorID, targetID int64, isAdmin bool) (*types.TripMember, error) {
	var updated types.TripMember
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		trip, target, err := s.lockTarget(ctx, tripID, targetID)
		if err != nil {
			return err
		}
		actor, err := s.members.GetMember(ctx, tripID, actorID)
		if err != nil || !types.IsTripAdmin(trip, actor) {
			return apperrors.AdminOnly("manage admins")
		}
		if trip.IsOrganizer(targetID) && !isAdmin {
			return apperrors.Forbidden("The trip organizer is always an admin", "")
		}
		if !isAdmin {
			if err := s.checkAdminFloor(ctx, trip, target); err != nil {
				return err
			}
		}
		target.IsAdmin = isAdmin
		updated = *target
		return s.members.UpdateMember(ctx, &updated)
	})
	if err != nil {
		return nil, store.ToAppError(err, "Member", targetID)
	}

	events.Emit(ctx, s.events, types.EventTypeMemberAdminUpdated, tripID, actorID, map[string]interface{}{
		"userId":  targetID,
		"isAdmin": isAdmin,
	})
	return &updated, nil
}

// RemoveMember removes targetID from the trip. Members may remove themselves;
// removing anyone else takes admin rights. The row is kept so historical
// balances still resolve.
func (s *MemberService) RemoveMember(ctx context.Context, tripID, actorID, targetID int64) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		trip, target, err := s.lockTarget(ctx, tripID, targetID)
		if err != nil {
			return err
		}
		if actorID != targetID {
			actor, err := s.members.GetMember(ctx, tripID, actorID)
			if err != nil || !types.IsTripAdmin(trip, actor) {
				return apperrors.AdminOnly("remove members")
			}
			if trip.IsOrganizer(targetID) {
				return apperrors.Forbidden("The trip organizer cannot be removed", "")
			}
		} else if trip.IsOrganizer(targetID) {
			// Down-payment review and trip edits are organizer-only.
			return apperrors.Forbidden("The trip organizer cannot leave the trip", "")
		}
		if err := s.checkAdminFloor(ctx, trip, target); err != nil {
			return err
		}
		return s.members.RemoveMember(ctx, tripID, targetID)
	})
	if err != nil {
		return store.ToAppError(err, "Member", targetID)
	}

	events.Emit(ctx, s.events, types.EventTypeMemberRemoved, tripID, actorID, map[string]interface{}{
		"userId": targetID,
	})
	return nil
}
