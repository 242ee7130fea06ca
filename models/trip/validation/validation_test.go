package validation

import (
	"testing"
	"time"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreateTrip(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	valid := types.CreateTripRequest{
		Name:        "Lisbon",
		Destination: "Lisbon, Portugal",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 4),
	}

	t.Run("valid without down payment", func(t *testing.T) {
		req := valid
		amount, err := ValidateCreateTrip(&req)
		require.NoError(t, err)
		assert.True(t, amount.IsZero())
	})

	t.Run("valid with down payment", func(t *testing.T) {
		req := valid
		req.RequiresDownPayment = true
		req.DownPaymentAmount = "150.50"
		amount, err := ValidateCreateTrip(&req)
		require.NoError(t, err)
		assert.Equal(t, "150.50", amount.String())
	})

	tests := []struct {
		name   string
		mutate func(*types.CreateTripRequest)
	}{
		{"blank name", func(r *types.CreateTripRequest) { r.Name = "  " }},
		{"missing destination", func(r *types.CreateTripRequest) { r.Destination = "" }},
		{"end before start", func(r *types.CreateTripRequest) { r.EndDate = start.AddDate(0, 0, -1) }},
		{"down payment missing amount", func(r *types.CreateTripRequest) { r.RequiresDownPayment = true }},
		{"down payment sub-cent", func(r *types.CreateTripRequest) {
			r.RequiresDownPayment = true
			r.DownPaymentAmount = "10.001"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := ValidateCreateTrip(&req)
			assert.True(t, apperrors.IsType(err, apperrors.ValidationError))
		})
	}
}

func TestValidateTripUpdate(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	trip := &types.Trip{ID: 1, Name: "Lisbon", StartDate: start, EndDate: start.AddDate(0, 0, 3)}

	earlyEnd := start.AddDate(0, 0, -2)
	assert.Error(t, ValidateTripUpdate(&types.TripUpdate{EndDate: &earlyEnd}, trip))

	requires := true
	assert.Error(t, ValidateTripUpdate(&types.TripUpdate{RequiresDownPayment: &requires}, trip))

	amount := valueobjects.NewAmount(decimal.NewFromInt(99))
	assert.NoError(t, ValidateTripUpdate(&types.TripUpdate{RequiresDownPayment: &requires, DownPaymentAmount: &amount}, trip))

	huge := valueobjects.NewAmount(decimal.RequireFromString("100000000000.00"))
	assert.Error(t, ValidateTripUpdate(&types.TripUpdate{RequiresDownPayment: &requires, DownPaymentAmount: &huge}, trip))

	empty := ""
	assert.Error(t, ValidateTripUpdate(&types.TripUpdate{Name: &empty}, trip))
}
