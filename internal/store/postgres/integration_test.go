//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/NomadCrew/crewtrip-backend/db"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	logger.IsTest = true
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func mustAmount(t *testing.T, s string) valueobjects.Amount {
	t.Helper()
	a, err := valueobjects.ParseAmount(s)
	require.NoError(t, err)
	return a
}

func TestIntegration_TripLedger(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	users := NewUserStore(pool)
	trips := NewTripStore(pool)
	members := NewMemberStore(pool)
	expenses := NewExpenseStore(pool)
	settlements := NewSettlementStore(pool)
	activities := NewActivityStore(pool)
	tx := NewTxManager(pool)

	alice, err := users.EnsureUser(ctx, types.AuthIdentity{Subject: "a", Username: "alice", Email: "a@example.com"})
	require.NoError(t, err)
	bob, err := users.EnsureUser(ctx, types.AuthIdentity{Subject: "b", Username: "bob"})
	require.NoError(t, err)
	carol, err := users.EnsureUser(ctx, types.AuthIdentity{Subject: "c", Username: "carol"})
	require.NoError(t, err)

	again, err := users.EnsureUser(ctx, types.AuthIdentity{Subject: "a", Username: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, again.ID)
	assert.Equal(t, "alice", again.Username)

	trip := &types.Trip{
		Name:              "Lisbon",
		Destination:       "Lisbon, Portugal",
		StartDate:         time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC),
		OrganizerID:       alice.ID,
		DownPaymentAmount: valueobjects.ZeroAmount(),
	}
	require.NoError(t, trips.CreateTrip(ctx, trip))

	for _, u := range []*types.User{alice, bob, carol} {
		m := &types.TripMember{
			TripID:        trip.ID,
			UserID:        u.ID,
			Status:        types.InvitationStatusConfirmed,
			RSVPStatus:    types.RSVPStatusConfirmed,
			PaymentStatus: types.PaymentStatusNotRequired,
			IsAdmin:       u.ID == alice.ID,
		}
		require.NoError(t, members.AddMember(ctx, m))
	}
	n, err := members.CountAdmins(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	dup := &types.TripMember{TripID: trip.ID, UserID: bob.ID, Status: types.InvitationStatusPending,
		RSVPStatus: types.RSVPStatusPending, PaymentStatus: types.PaymentStatusNotRequired}
	assert.ErrorIs(t, members.AddMember(ctx, dup), store.ErrConflict)

	exp := &types.Expense{
		TripID:      trip.ID,
		Description: "Dinner",
		Category:    "food",
		Amount:      mustAmount(t, "90"),
		PaidBy:      alice.ID,
		CreatedBy:   alice.ID,
		Splits: []types.ExpenseSplit{
			{UserID: bob.ID, Amount: mustAmount(t, "45")},
			{UserID: carol.ID, Amount: mustAmount(t, "45")},
		},
	}
	require.NoError(t, tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := trips.LockTrip(ctx, trip.ID); err != nil {
			return err
		}
		return expenses.CreateExpense(ctx, exp)
	}))

	listed, err := expenses.ListExpenses(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Amount.Equal(decimal.NewFromInt(90)))
	require.Len(t, listed[0].Splits, 2)
	assert.Equal(t, "45.00", listed[0].Splits[0].Amount.String())

	st := &types.Settlement{
		TripID:  trip.ID,
		PayerID: bob.ID,
		PayeeID: alice.ID,
		Amount:  mustAmount(t, "45"),
		Method:  types.PaymentMethodCash,
		Status:  types.SettlementStatusPending,
	}
	require.NoError(t, settlements.CreateSettlement(ctx, st))

	require.NoError(t, tx.WithTx(ctx, func(ctx context.Context) error {
		locked, err := settlements.LockSettlement(ctx, st.ID)
		if err != nil {
			return err
		}
		now := time.Now()
		locked.Status = types.SettlementStatusConfirmed
		locked.ConfirmedAt = &now
		locked.ConfirmedBy = &alice.ID
		return settlements.UpdateSettlementStatus(ctx, locked)
	}))

	got, err := settlements.GetSettlement(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SettlementStatusConfirmed, got.Status)
	assert.Equal(t, "45.00", got.Amount.String())

	got.Status = types.SettlementStatusCancelled
	assert.ErrorIs(t, settlements.UpdateSettlementStatus(ctx, got), store.ErrConflict)

	cost := mustAmount(t, "30")
	capacity := 2
	act := &types.Activity{
		TripID:        trip.ID,
		Name:          "Surf lesson",
		StartTime:     time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC),
		MaxCapacity:   &capacity,
		IsPrepaid:     true,
		CostPerPerson: &cost,
		CreatedBy:     alice.ID,
	}
	require.NoError(t, activities.CreateActivity(ctx, act))
	require.NoError(t, activities.UpsertRSVP(ctx, &types.ActivityRSVP{ActivityID: act.ID, UserID: bob.ID, Status: types.ActivityRSVPGoing}))

	fetched, err := activities.GetActivity(ctx, act.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.GoingCount)
	require.NotNil(t, fetched.CostPerPerson)
	assert.Equal(t, "30.00", fetched.CostPerPerson.String())

	require.NoError(t, members.RemoveMember(ctx, trip.ID, carol.ID))
	removed, err := members.GetMember(ctx, trip.ID, carol.ID)
	require.NoError(t, err)
	assert.False(t, removed.IsActive())

	active, err := members.ListMembers(ctx, trip.ID, false)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	reinvite := &types.TripMember{TripID: trip.ID, UserID: carol.ID, Status: types.InvitationStatusPending,
		RSVPStatus: types.RSVPStatusPending, PaymentStatus: types.PaymentStatusNotRequired}
	require.NoError(t, members.AddMember(ctx, reinvite))
	back, err := members.GetMember(ctx, trip.ID, carol.ID)
	require.NoError(t, err)
	assert.True(t, back.IsActive())
	assert.Equal(t, types.RSVPStatusPending, back.RSVPStatus)

	mine, err := trips.ListTripsForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, trip.ID, mine[0].ID)
	assert.Equal(t, types.RSVPStatusConfirmed, mine[0].Membership.RSVPStatus)
}
