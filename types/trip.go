package types

import (
	"time"

	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
)

// Trip is the top-level grouping for members, expenses and itinerary.
type Trip struct {
	ID                  int64               `json:"id"`
	Name                string              `json:"name"`
	Description         string              `json:"description,omitempty"`
	Destination         string              `json:"destination"`
	DestinationCountry  string              `json:"destinationCountry,omitempty"`
	StartDate           time.Time           `json:"startDate"`
	EndDate             time.Time           `json:"endDate"`
	OrganizerID         int64               `json:"organizerId"`
	RequiresDownPayment bool                `json:"requiresDownPayment"`
	DownPaymentAmount   valueobjects.Amount `json:"downPaymentAmount"`
	BackgroundImageURL  string              `json:"backgroundImageUrl,omitempty"`
	ArchivedAt          *time.Time          `json:"archivedAt,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// IsOrganizer reports whether userID owns the trip.
func (t *Trip) IsOrganizer(userID int64) bool {
	return t != nil && t.OrganizerID == userID
}

func (t *Trip) IsArchived() bool {
	return t != nil && t.ArchivedAt != nil
}

// DurationDays counts both the start and end day.
func (t *Trip) DurationDays() int {
	if t == nil || t.EndDate.Before(t.StartDate) {
		return 0
	}
	return int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
}

// CreateTripRequest is the payload for creating a trip.
type CreateTripRequest struct {
	Name                string    `json:"name" binding:"required,max=120"`
	Description         string    `json:"description" binding:"max=2000"`
	Destination         string    `json:"destination" binding:"required,max=200"`
	DestinationCountry  string    `json:"destinationCountry" binding:"max=80"`
	StartDate           time.Time `json:"startDate" binding:"required"`
	EndDate             time.Time `json:"endDate" binding:"required"`
	RequiresDownPayment bool      `json:"requiresDownPayment"`
	DownPaymentAmount   string    `json:"downPaymentAmount"`
}

// TripUpdate carries partial trip edits; nil fields are unchanged.
type TripUpdate struct {
	Name                *string              `json:"name,omitempty"`
	Description         *string              `json:"description,omitempty"`
	Destination         *string              `json:"destination,omitempty"`
	DestinationCountry  *string              `json:"destinationCountry,omitempty"`
	StartDate           *time.Time           `json:"startDate,omitempty"`
	EndDate             *time.Time           `json:"endDate,omitempty"`
	RequiresDownPayment *bool                `json:"requiresDownPayment,omitempty"`
	DownPaymentAmount   *valueobjects.Amount `json:"downPaymentAmount,omitempty"`
}

// TripWithMembership is a trip as seen by one of its members.
type TripWithMembership struct {
	Trip
	Membership *TripMember `json:"membership"`
}
