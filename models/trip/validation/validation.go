package validation

import (
	"strings"

	"github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
)

// ValidateCreateTrip checks a create request and returns the parsed down
// payment (zero when none is required).
func ValidateCreateTrip(req *types.CreateTripRequest) (valueobjects.Amount, error) {
	var validationErrors []string

	if strings.TrimSpace(req.Name) == "" {
		validationErrors = append(validationErrors, "trip name is required")
	}
	if strings.TrimSpace(req.Destination) == "" {
		validationErrors = append(validationErrors, "trip destination is required")
	}
	if req.StartDate.IsZero() {
		validationErrors = append(validationErrors, "trip start date is required")
	}
	if req.EndDate.IsZero() {
		validationErrors = append(validationErrors, "trip end date is required")
	}
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() && req.EndDate.Before(req.StartDate) {
		validationErrors = append(validationErrors, "trip end date cannot be before start date")
	}

	downPayment := valueobjects.ZeroAmount()
	if req.RequiresDownPayment {
		amount, err := valueobjects.ParseAmount(req.DownPaymentAmount)
		if err != nil {
			validationErrors = append(validationErrors, "down payment amount must be a positive amount with at most 2 decimals")
		} else {
			downPayment = amount
		}
	}

	if len(validationErrors) > 0 {
		return valueobjects.Amount{}, errors.ValidationFailed(
			"Invalid trip data",
			strings.Join(validationErrors, "; "),
		)
	}
	return downPayment, nil
}

// ValidateTripUpdate checks the update against the current trip so partial
// edits cannot leave the trip inconsistent.
func ValidateTripUpdate(update *types.TripUpdate, original *types.Trip) error {
	var validationErrors []string

	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		validationErrors = append(validationErrors, "trip name cannot be empty")
	}
	if update.Destination != nil && strings.TrimSpace(*update.Destination) == "" {
		validationErrors = append(validationErrors, "trip destination cannot be empty")
	}

	start, end := original.StartDate, original.EndDate
	if update.StartDate != nil {
		start = *update.StartDate
	}
	if update.EndDate != nil {
		end = *update.EndDate
	}
	if end.Before(start) {
		validationErrors = append(validationErrors, "trip end date cannot be before start date")
	}

	requires := original.RequiresDownPayment
	if update.RequiresDownPayment != nil {
		requires = *update.RequiresDownPayment
	}
	amount := original.DownPaymentAmount
	if update.DownPaymentAmount != nil {
		amount = *update.DownPaymentAmount
	}
	if requires && !amount.IsPositive() {
		validationErrors = append(validationErrors, "down payment amount must be greater than zero")
	}
	if update.DownPaymentAmount != nil && !amount.Equal(amount.Round(2)) {
		validationErrors = append(validationErrors, "down payment amount cannot have more than 2 decimal places")
	}
	if update.DownPaymentAmount != nil && amount.ExceedsMax() {
		validationErrors = append(validationErrors, "down payment amount is too large")
	}

	if len(validationErrors) > 0 {
		return errors.ValidationFailed(
			"Invalid trip update",
			strings.Join(validationErrors, "; "),
		)
	}
	return nil
}
