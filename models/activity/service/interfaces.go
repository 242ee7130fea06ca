package service

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
)

// ActivityServiceInterface is consumed by the itinerary handlers.
type ActivityServiceInterface interface {
	CreateActivity(ctx context.Context, tripID, userID int64, req *types.CreateActivityRequest) (*types.Activity, error)
	ListActivities(ctx context.Context, tripID, userID int64) ([]*types.Activity, error)
	DeleteActivity(ctx context.Context, tripID, userID, activityID int64) error
	SetRSVP(ctx context.Context, tripID, userID, activityID int64, status types.ActivityRSVPStatus) (*types.Activity, error)
}
