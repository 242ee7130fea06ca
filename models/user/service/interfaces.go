package service

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
)

// UserServiceInterface defines the contract for user operations
type UserServiceInterface interface {
	// EnsureUser returns the local user for a verified token, creating it on
	// first sight.
	EnsureUser(ctx context.Context, identity types.AuthIdentity) (*types.User, error)

	GetProfile(ctx context.Context, userID int64) (*types.User, error)

	// UpdateProfile applies partial edits. Venmo handles are stored without
	// the leading @.
	UpdateProfile(ctx context.Context, userID int64, update types.UserProfileUpdate) (*types.User, error)

	// CloseAccount flags the user as legacy-removed. Rows that reference the
	// user are kept.
	CloseAccount(ctx context.Context, userID int64) error
}
