package service

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/pkg/countries"
	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/shopspring/decimal"
)

const (
	maxEstimateDays = 365

	// UnresolvedDestinationMessage is shown when the destination country
	// cannot be determined.
	UnresolvedDestinationMessage = "Could not determine destination country; ask the organizer to refine the destination."
)

// BudgetService estimates daily per-person spend from a USD baseline scaled by
// a regional cost multiplier.
type BudgetService struct {
	gate         types.MemberGate
	members      store.MemberStore
	expenses     store.ExpenseStore
	resolver     countries.Resolver
	baseDailyUSD decimal.Decimal
}

var _ BudgetServiceInterface = (*BudgetService)(nil)

func NewBudgetService(
	gate types.MemberGate,
	members store.MemberStore,
	expenses store.ExpenseStore,
	resolver countries.Resolver,
	baseDailyUSD decimal.Decimal,
) *BudgetService {
	return &BudgetService{
		gate:         gate,
		members:      members,
		expenses:     expenses,
		resolver:     resolver,
		baseDailyUSD: baseDailyUSD,
	}
}

// Estimate never fails because of the country lookup: an unknown
// destination falls back to USD with multiplier 1.0 and a hint message.
func (s *BudgetService) Estimate(ctx context.Context, tripID, userID int64, days int) (*types.BudgetEstimate, error) {
	mc, err := s.gate.RequireMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	trip := mc.Trip

	if days <= 0 {
		days = trip.DurationDays()
	}
	if days <= 0 {
		days = 1
	}
	if days > maxEstimateDays {
		return nil, apperrors.ValidationFailed("invalid days", "estimates cover at most 365 days")
	}

	estimate := &types.BudgetEstimate{
		TripID:      trip.ID,
		Destination: trip.Destination,
		Currency:    string(valueobjects.DefaultCurrency),
		Multiplier:  countries.DefaultMultiplier,
		Days:        days,
	}

	if country := s.lookupCountry(ctx, trip); country != nil {
		estimate.CountryResolved = true
		estimate.CountryName = country.Name
		estimate.Region = country.Region
		estimate.Multiplier = countries.Multiplier(country)
		local, _ := valueobjects.ParseCurrency(country.Currency)
		estimate.LocalCurrency = string(local)
	} else {
		estimate.Message = UnresolvedDestinationMessage
	}

	daily := valueobjects.NewAmount(s.baseDailyUSD.Mul(decimal.NewFromFloat(estimate.Multiplier)))
	estimate.DailyPerPerson = daily.String()
	estimate.TotalPerPerson = valueobjects.NewAmount(daily.Mul(decimal.NewFromInt(int64(days)))).String()

	spent, travelers, err := s.spentPerPerson(ctx, trip)
	if err != nil {
		return nil, err
	}
	estimate.ConfirmedTravelers = travelers
	estimate.SpentPerPerson = spent.String()
	return estimate, nil
}

func (s *BudgetService) lookupCountry(ctx context.Context, trip *types.Trip) *countries.Country {
	if s.resolver == nil {
		return nil
	}
	query := trip.DestinationCountry
	if strings.TrimSpace(query) == "" {
		query = trip.Destination
	}
	if strings.TrimSpace(query) == "" {
		return nil
	}
	country, err := s.resolver.Lookup(ctx, query)
	if err != nil {
		if !errors.Is(err, countries.ErrNotFound) {
			logger.GetLogger().Warnw("Country lookup failed", "tripID", trip.ID, "query", query, "error", err)
		}
		return nil
	}
	return country
}

func (s *BudgetService) spentPerPerson(ctx context.Context, trip *types.Trip) (valueobjects.Amount, int, error) {
	members, err := s.members.ListMembers(ctx, trip.ID, false)
	if err != nil {
		return valueobjects.Amount{}, 0, store.ToAppError(err, "Member", trip.ID)
	}
	travelers := 0
	for _, m := range members {
		if types.IsConfirmedMember(trip, m) {
			travelers++
		}
	}

	expenses, err := s.expenses.ListExpenses(ctx, trip.ID)
	if err != nil {
		return valueobjects.Amount{}, 0, store.ToAppError(err, "Expense", trip.ID)
	}
	var totalCents int64
	for _, e := range expenses {
		totalCents += e.Amount.Cents()
	}
	perPerson := valueobjects.USDFromCents(totalCents).DivideSafe(travelers)
	return valueobjects.NewAmount(perPerson.Amount()), travelers, nil
}
