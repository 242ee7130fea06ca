package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/events"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/pkg/sanitize"
	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
)

const prepaidCategory = "activity"

// ActivityService manages the itinerary. RSVPs run under a lock on the
// activity row so the capacity check and the prepaid expense stay consistent.
type ActivityService struct {
	tx         store.Transactor
	activities store.ActivityStore
	expenses   store.ExpenseStore
	gate       types.MemberGate
	events     types.EventPublisher
	now        func() time.Time
}

var _ ActivityServiceInterface = (*ActivityService)(nil)

func NewActivityService(
	tx store.Transactor,
	activities store.ActivityStore,
	expenses store.ExpenseStore,
	gate types.MemberGate,
	eventPublisher types.EventPublisher,
) *ActivityService {
	return &ActivityService{
		tx:         tx,
		activities: activities,
		expenses:   expenses,
		gate:       gate,
		events:     eventPublisher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *ActivityService) CreateActivity(ctx context.Context, tripID, userID int64, req *types.CreateActivityRequest) (*types.Activity, error) {
	if _, err := s.gate.RequireConfirmedMember(ctx, tripID, userID); err != nil {
		return nil, err
	}

	activity := &types.Activity{
		TripID:      tripID,
		Name:        sanitize.Text(req.Name),
		Description: sanitize.Text(req.Description),
		Location:    sanitize.Text(req.Location),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxCapacity: req.MaxCapacity,
		IsPrepaid:   req.IsPrepaid,
		CreatedBy:   userID,
	}
	if activity.Name == "" {
		return nil, apperrors.ValidationFailed("invalid activity", "name is required")
	}
	if activity.EndTime != nil && activity.EndTime.Before(activity.StartTime) {
		return nil, apperrors.ValidationFailed("invalid activity", "end time must not be before start time")
	}
	if activity.MaxCapacity != nil && *activity.MaxCapacity < 1 {
		return nil, apperrors.ValidationFailed("invalid activity", "max capacity must be at least 1")
	}
	if req.IsPrepaid {
		cost, err := valueobjects.ParseAmount(req.CostPerPerson)
		if err != nil {
			return nil, apperrors.ValidationFailed("invalid activity", "prepaid activities need a cost per person")
		}
		activity.CostPerPerson = &cost
	}

	if err := s.activities.CreateActivity(ctx, activity); err != nil {
		return nil, store.ToAppError(err, "Activity", tripID)
	}

	logger.GetLogger().Infow("Activity created", "tripId", tripID, "activityId", activity.ID, "prepaid", activity.IsPrepaid)
	events.Emit(ctx, s.events, types.EventTypeActivityCreated, tripID, userID, activity)
	return activity, nil
}

func (s *ActivityService) ListActivities(ctx context.Context, tripID, userID int64) ([]*types.Activity, error) {
	if _, err := s.gate.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	list, err := s.activities.ListActivities(ctx, tripID)
	if err != nil {
		return nil, store.ToAppError(err, "Activity", tripID)
	}
	return list, nil
}

// DeleteActivity removes the activity. A linked prepaid expense survives as a
// plain expense; the money was spent either way.
func (s *ActivityService) DeleteActivity(ctx context.Context, tripID, userID, activityID int64) error {
	mc, err := s.gate.RequireMember(ctx, tripID, userID)
	if err != nil {
		return err
	}
	activity, err := s.activities.GetActivity(ctx, activityID)
	if err != nil {
		return store.ToAppError(err, "Activity", activityID)
	}
	if activity.TripID != tripID {
		return apperrors.NotFound("Activity", activityID)
	}
	if activity.CreatedBy != userID && !mc.IsAdmin() {
		return apperrors.Forbidden("Only the creator or a trip admin can delete this activity", "")
	}
	if err := s.activities.DeleteActivity(ctx, activityID); err != nil {
		return store.ToAppError(err, "Activity", activityID)
	}

	events.Emit(ctx, s.events, types.EventTypeActivityDeleted, tripID, userID, map[string]int64{"activityId": activityID})
	return nil
}

// SetRSVP records the caller's answer. A full activity refuses new "going"
// answers; prepaid activities add or drop the caller's share of the linked
// expense in the same transaction.
func (s *ActivityService) SetRSVP(ctx context.Context, tripID, userID, activityID int64, status types.ActivityRSVPStatus) (*types.Activity, error) {
	if status != types.ActivityRSVPGoing && status != types.ActivityRSVPNotGoing {
		return nil, apperrors.ValidationFailed("invalid RSVP", fmt.Sprintf("unknown status %q", status))
	}
	if _, err := s.gate.RequireConfirmedMember(ctx, tripID, userID); err != nil {
		return nil, err
	}

	var result *types.Activity
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		activity, err := s.activities.LockActivity(ctx, activityID)
		if err != nil {
			return err
		}
		if activity.TripID != tripID {
			return apperrors.NotFound("Activity", activityID)
		}

		wasGoing := false
		prev, err := s.activities.GetRSVP(ctx, activityID, userID)
		switch {
		case err == nil:
			wasGoing = prev.Status == types.ActivityRSVPGoing
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		going := status == types.ActivityRSVPGoing

		if going && !wasGoing && activity.IsFull() {
			return apperrors.NewConflictError("Activity is full",
				fmt.Sprintf("%s is limited to %d people", activity.Name, *activity.MaxCapacity))
		}

		if err := s.activities.UpsertRSVP(ctx, &types.ActivityRSVP{
			ActivityID: activityID,
			UserID:     userID,
			Status:     status,
			UpdatedAt:  s.now(),
		}); err != nil {
			return err
		}

		switch {
		case going && !wasGoing:
			activity.GoingCount++
		case !going && wasGoing:
			activity.GoingCount--
		}
		if activity.IsPrepaid && activity.CostPerPerson != nil && going != wasGoing {
			if err := s.syncPrepaidShare(ctx, activity, userID, going); err != nil {
				return err
			}
		}
		result = activity
		return nil
	})
	if err != nil {
		return nil, store.ToAppError(err, "Activity", activityID)
	}

	events.Emit(ctx, s.events, types.EventTypeActivityRSVPUpdated, tripID, userID, map[string]any{
		"activityId": activityID,
		"status":     status,
		"goingCount": result.GoingCount,
	})
	return result, nil
}

// syncPrepaidShare keeps the activity's expense, paid by its creator, owing
// one share per "going" member.
func (s *ActivityService) syncPrepaidShare(ctx context.Context, activity *types.Activity, userID int64, going bool) error {
	expense, err := s.expenses.GetExpenseByActivity(ctx, activity.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if !going {
		if expense == nil {
			return nil
		}
		return s.expenses.RemoveSplit(ctx, expense.ID, userID)
	}

	share := *activity.CostPerPerson
	if expense != nil {
		return s.expenses.UpsertSplit(ctx, expense.ID, userID, share)
	}

	activityID := activity.ID
	return s.expenses.CreateExpense(ctx, &types.Expense{
		TripID:      activity.TripID,
		Description: activity.Name,
		Category:    prepaidCategory,
		Amount:      share,
		PaidBy:      activity.CreatedBy,
		CreatedBy:   activity.CreatedBy,
		ActivityID:  &activityID,
		Splits:      []types.ExpenseSplit{{UserID: userID, Amount: share}},
	})
}
