package service

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/events"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/models/trip/validation"
	"github.com/NomadCrew/crewtrip-backend/pkg/pexels"
	"github.com/NomadCrew/crewtrip-backend/pkg/sanitize"
	"github.com/NomadCrew/crewtrip-backend/services"
	"github.com/NomadCrew/crewtrip-backend/types"
)

const coverImageTimeout = 10 * time.Second

// TripService handles the trip lifecycle.
type TripService struct {
	tx      store.Transactor
	trips   store.TripStore
	members store.MemberStore
	gate    types.MemberGate
	images  pexels.ClientInterface
	jobs    services.JobSubmitter
	events  types.EventPublisher
}

var _ TripServiceInterface = (*TripService)(nil)

// NewTripService creates the service. images and jobs are optional; without
// them trips are created without a cover photo.
func NewTripService(
	tx store.Transactor,
	trips store.TripStore,
	members store.MemberStore,
	gate types.MemberGate,
	images pexels.ClientInterface,
	jobs services.JobSubmitter,
	eventPublisher types.EventPublisher,
) *TripService {
	return &TripService{
		tx:      tx,
		trips:   trips,
		members: members,
		gate:    gate,
		images:  images,
		jobs:    jobs,
		events:  eventPublisher,
	}
}

// CreateTrip stores the trip and makes the organizer a confirmed admin
// member in the same transaction.
func (s *TripService) CreateTrip(ctx context.Context, userID int64, req *types.CreateTripRequest) (*types.Trip, error) {
	downPayment, err := validation.ValidateCreateTrip(req)
	if err != nil {
		return nil, err
	}

	trip := &types.Trip{
		Name:                sanitize.Text(req.Name),
		Description:         sanitize.Text(req.Description),
		Destination:         strings.TrimSpace(req.Destination),
		DestinationCountry:  strings.TrimSpace(req.DestinationCountry),
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		OrganizerID:         userID,
		RequiresDownPayment: req.RequiresDownPayment,
		DownPaymentAmount:   downPayment,
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.trips.CreateTrip(ctx, trip); err != nil {
			return err
		}
		organizer := &types.TripMember{
			TripID:        trip.ID,
			UserID:        userID,
			Status:        types.InvitationStatusConfirmed,
			RSVPStatus:    types.RSVPStatusConfirmed,
			PaymentStatus: types.PaymentStatusNotRequired,
			IsAdmin:       true,
		}
		return s.members.AddMember(ctx, organizer)
	})
	if err != nil {
		return nil, store.ToAppError(err, "Trip", userID)
	}

	logger.GetLogger().Infow("Trip created", "tripID", trip.ID, "organizerID", userID)
	s.queueCoverImage(trip)
	return trip, nil
}

// queueCoverImage looks up a destination photo in the background.
func (s *TripService) queueCoverImage(trip *types.Trip) {
	if s.images == nil || s.jobs == nil {
		return
	}
	query := pexels.BuildSearchQuery(trip)
	if query == "" {
		return
	}
	tripID := trip.ID
	submitted := s.jobs.Submit(services.Job{
		Name: "trip-cover-image",
		Execute: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, coverImageTimeout)
			defer cancel()
			url, err := s.images.SearchDestinationImage(ctx, query)
			if err != nil || url == "" {
				return err
			}
			return s.trips.SetBackgroundImage(ctx, tripID, url)
		},
	})
	if !submitted {
		logger.GetLogger().Warnw("Cover image lookup dropped", "tripID", tripID)
	}
}

func (s *TripService) GetTrip(ctx context.Context, tripID, userID int64) (*types.TripWithMembership, error) {
	mc, err := s.gate.RequireMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	return &types.TripWithMembership{Trip: *mc.Trip, Membership: mc.Member}, nil
}

// ListTrips returns the caller's active trips, hiding trips archived
// globally or for the caller.
func (s *TripService) ListTrips(ctx context.Context, userID int64) ([]*types.TripWithMembership, error) {
	trips, err := s.trips.ListTripsForUser(ctx, userID)
	if err != nil {
		return nil, store.ToAppError(err, "Trip", userID)
	}
	visible := make([]*types.TripWithMembership, 0, len(trips))
	for _, t := range trips {
		if t.IsArchived() || (t.Membership != nil && t.Membership.IsArchived) {
			continue
		}
		visible = append(visible, t)
	}
	return visible, nil
}

func (s *TripService) UpdateTrip(ctx context.Context, tripID, userID int64, update *types.TripUpdate) (*types.Trip, error) {
	mc, err := s.gate.RequireMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !mc.IsOrganizer() {
		return nil, apperrors.OrganizerOnly("update the trip")
	}
	if err := validation.ValidateTripUpdate(update, mc.Trip); err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := sanitize.Text(*update.Name)
		update.Name = &name
	}
	if update.Description != nil {
		desc := sanitize.Text(*update.Description)
		update.Description = &desc
	}

	trip, err := s.trips.UpdateTrip(ctx, tripID, *update)
	if err != nil {
		return nil, store.ToAppError(err, "Trip", tripID)
	}

	events.Emit(ctx, s.events, types.EventTypeTripUpdated, tripID, userID, trip)
	if update.Destination != nil && *update.Destination != mc.Trip.Destination {
		s.queueCoverImage(trip)
	}
	return trip, nil
}

// ArchiveTrip hides the trip for everyone. Nothing is deleted.
func (s *TripService) ArchiveTrip(ctx context.Context, tripID, userID int64) error {
	mc, err := s.gate.RequireMember(ctx, tripID, userID)
	if err != nil {
		return err
	}
	if !mc.IsOrganizer() {
		return apperrors.OrganizerOnly("archive the trip")
	}
	if mc.Trip.IsArchived() {
		return nil
	}
	if err := s.trips.ArchiveTrip(ctx, tripID); err != nil {
		return store.ToAppError(err, "Trip", tripID)
	}
	events.Emit(ctx, s.events, types.EventTypeTripArchived, tripID, userID, map[string]interface{}{
		"tripId": tripID,
	})
	return nil
}
