package store

import (
	"errors"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
)

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates a uniqueness or foreign-key conflict.
	ErrConflict = errors.New("conflict")
)

// ToAppError translates a store error into the API error taxonomy. AppErrors
// pass through unchanged so service code can return them from inside a
// transaction.
func ToAppError(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return apperrors.NotFound(entity, id)
	case errors.Is(err, ErrConflict):
		return apperrors.NewConflictError(entity+" conflicts with existing data", err.Error())
	default:
		return apperrors.NewDatabaseError(err)
	}
}
