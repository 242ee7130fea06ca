package types

import (
	"time"

	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
)

// ActivityRSVPStatus is a member's answer for a single itinerary item.
type ActivityRSVPStatus string

const (
	ActivityRSVPGoing    ActivityRSVPStatus = "going"
	ActivityRSVPNotGoing ActivityRSVPStatus = "not_going"
)

// Activity is an itinerary item. Prepaid activities with a per-person cost
// keep a linked expense, paid by the creator, in sync with "going" RSVPs.
type Activity struct {
	ID            int64                `json:"id"`
	TripID        int64                `json:"tripId"`
	Name          string               `json:"name"`
	Description   string               `json:"description,omitempty"`
	Location      string               `json:"location,omitempty"`
	StartTime     time.Time            `json:"startTime"`
	EndTime       *time.Time           `json:"endTime,omitempty"`
	MaxCapacity   *int                 `json:"maxCapacity,omitempty"`
	IsPrepaid     bool                 `json:"isPrepaid"`
	CostPerPerson *valueobjects.Amount `json:"costPerPerson,omitempty"`
	CreatedBy     int64                `json:"createdBy"`
	GoingCount    int                  `json:"goingCount"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// IsFull reports whether another "going" RSVP would exceed the capacity.
func (a *Activity) IsFull() bool {
	return a.MaxCapacity != nil && a.GoingCount >= *a.MaxCapacity
}

// ActivityRSVP is keyed by (ActivityID, UserID).
type ActivityRSVP struct {
	ActivityID int64              `json:"activityId"`
	UserID     int64              `json:"userId"`
	Status     ActivityRSVPStatus `json:"status"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// CreateActivityRequest is the payload for POST /trips/:id/activities.
type CreateActivityRequest struct {
	Name          string     `json:"name" binding:"required,max=120"`
	Description   string     `json:"description" binding:"max=2000"`
	Location      string     `json:"location" binding:"max=200"`
	StartTime     time.Time  `json:"startTime" binding:"required"`
	EndTime       *time.Time `json:"endTime"`
	MaxCapacity   *int       `json:"maxCapacity" binding:"omitempty,min=1"`
	IsPrepaid     bool       `json:"isPrepaid"`
	CostPerPerson string     `json:"costPerPerson"`
}

// ActivityRSVPRequest is the payload for PUT /trips/:id/activities/:activityId/rsvp.
type ActivityRSVPRequest struct {
	Status ActivityRSVPStatus `json:"status" binding:"required,oneof=going not_going"`
}
