package service

import (
	"context"
	"io"
	"strings"
	"testing"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeEvidence struct {
	uploads   int
	deleted   []string
	uploadErr error
}

func (e *fakeEvidence) Upload(_ context.Context, tripID, userID int64, body io.Reader) (string, error) {
	if e.uploadErr != nil {
		return "", e.uploadErr
	}
	_, _ = io.ReadAll(body)
	e.uploads++
	return "evidence/10/2/receipt.png", nil
}

func (e *fakeEvidence) PresignURL(_ context.Context, key string) (string, error) {
	return "https://storage.example.com/" + key, nil
}

func (e *fakeEvidence) Delete(_ context.Context, key string) error {
	e.deleted = append(e.deleted, key)
	return nil
}

func newMemberService(f *fixture, evidence *fakeEvidence) *MemberService {
	if evidence == nil {
		return NewMemberService(f.tx, f.trips, f.members, f.gate, nil, f.events)
	}
	return NewMemberService(f.tx, f.trips, f.members, f.gate, evidence, f.events)
}

func downPaymentTrip() *types.Trip {
	trip := testTrip()
	trip.RequiresDownPayment = true
	trip.DownPaymentAmount = valueobjects.NewAmount(decimal.NewFromInt(150))
	return trip
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func TestMemberService_UpdateRSVP(t *testing.T) {
	ctx := context.Background()

	t.Run("confirm without down payment", func(t *testing.T) {
		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(testTrip(), nil)
		f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(member(2, types.RSVPStatusPending), nil)
		f.members.On("UpdateMember", mock.Anything, mock.MatchedBy(func(m *types.TripMember) bool {
			return m.RSVPStatus == types.RSVPStatusConfirmed
		})).Return(nil)

		updated, err := newMemberService(f, nil).UpdateRSVP(ctx, testTripID, 2, 2, types.RSVPStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, types.RSVPStatusConfirmed, updated.RSVPStatus)
		assert.Equal(t, 1, f.tx.Count)
		assert.Equal(t, []types.EventType{types.EventTypeMemberRSVPUpdated}, f.events.Types(testTripID))
	})

	t.Run("confirm with down payment waits for payment", func(t *testing.T) {
		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(downPaymentTrip(), nil)
		pending := member(2, types.RSVPStatusPending)
		pending.PaymentStatus = types.PaymentStatusPending
		f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(pending, nil)
		f.members.On("UpdateMember", mock.Anything, mock.Anything).Return(nil)

		updated, err := newMemberService(f, nil).UpdateRSVP(ctx, testTripID, 2, 2, types.RSVPStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, types.RSVPStatusAwaitingPayment, updated.RSVPStatus)
		assert.Equal(t, types.PaymentStatusPending, updated.PaymentStatus)
	})

	t.Run("cannot answer for someone else", func(t *testing.T) {
		f := newFixture()
		_, err := newMemberService(f, nil).UpdateRSVP(ctx, testTripID, 2, 3, types.RSVPStatusConfirmed)
		assert.True(t, apperrors.IsType(err, apperrors.ForbiddenError))
		assert.Equal(t, 0, f.tx.Count)
	})

	t.Run("last admin cannot decline", func(t *testing.T) {
		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(testTrip(), nil)
		f.members.On("GetMember", mock.Anything, testTripID, testOrganizerID).Return(organizerMember(), nil)
		f.members.On("CountAdmins", mock.Anything, testTripID).Return(1, nil)

		_, err := newMemberService(f, nil).UpdateRSVP(ctx, testTripID, testOrganizerID, testOrganizerID, types.RSVPStatusDeclined)
		assertCode(t, err, apperrors.CodeLastAdmin)
		f.members.AssertNotCalled(t, "UpdateMember", mock.Anything, mock.Anything)
		assert.Empty(t, f.events.Events(testTripID))
	})

	t.Run("declined member cannot confirm again", func(t *testing.T) {
		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(testTrip(), nil)
		declined := member(2, types.RSVPStatusDeclined)
		declined.Status = types.InvitationStatusDeclined
		f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(declined, nil)

		_, err := newMemberService(f, nil).UpdateRSVP(ctx, testTripID, 2, 2, types.RSVPStatusConfirmed)
		assert.True(t, apperrors.IsType(err, apperrors.InvalidStatusTransitionError))
	})
}

func TestMemberService_SubmitPayment(t *testing.T) {
	ctx := context.Background()
	sub := types.PaymentSubmission{Method: types.PaymentMethodVenmo, Note: "sent <b>friday</b>"}

	setup := func(trip *types.Trip) *fixture {
		f := newFixture()
		awaiting := member(2, types.RSVPStatusAwaitingPayment)
		awaiting.PaymentStatus = types.PaymentStatusPending
		f.trips.On("GetTrip", mock.Anything, testTripID).Return(trip, nil)
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(trip, nil)
		f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(awaiting, nil)
		return f
	}

	t.Run("stores evidence key", func(t *testing.T) {
		f := setup(downPaymentTrip())
		f.members.On("UpdateMember", mock.Anything, mock.Anything).Return(nil)
		evidence := &fakeEvidence{}

		updated, err := newMemberService(f, evidence).SubmitPayment(ctx, testTripID, 2, 2, sub, &Evidence{Body: strings.NewReader("png")})
		require.NoError(t, err)
		assert.Equal(t, types.PaymentStatusSubmitted, updated.PaymentStatus)
		assert.Equal(t, "evidence/10/2/receipt.png", updated.PaymentEvidenceKey)
		assert.NotContains(t, updated.PaymentNote, "<b>")
		assert.Equal(t, 1, evidence.uploads)
		assert.Empty(t, evidence.deleted)
		assert.Equal(t, []types.EventType{types.EventTypeMemberPaymentSubmitted}, f.events.Types(testTripID))
	})

	t.Run("removes evidence when transition fails", func(t *testing.T) {
		f := setup(testTrip())
		evidence := &fakeEvidence{}

		_, err := newMemberService(f, evidence).SubmitPayment(ctx, testTripID, 2, 2, sub, &Evidence{Body: strings.NewReader("png")})
		assert.True(t, apperrors.IsType(err, apperrors.ValidationError))
		assert.Equal(t, []string{"evidence/10/2/receipt.png"}, evidence.deleted)
	})

	t.Run("evidence rejected when storage disabled", func(t *testing.T) {
		f := setup(downPaymentTrip())

		_, err := newMemberService(f, nil).SubmitPayment(ctx, testTripID, 2, 2, sub, &Evidence{Body: strings.NewReader("png")})
		assert.True(t, apperrors.IsType(err, apperrors.ValidationError))
		assert.Equal(t, 0, f.tx.Count)
	})

	t.Run("without evidence", func(t *testing.T) {
		f := setup(downPaymentTrip())
		f.members.On("UpdateMember", mock.Anything, mock.Anything).Return(nil)

		updated, err := newMemberService(f, nil).SubmitPayment(ctx, testTripID, 2, 2, sub, nil)
		require.NoError(t, err)
		assert.Empty(t, updated.PaymentEvidenceKey)
	})
}

func TestMemberService_ReviewPayment(t *testing.T) {
	ctx := context.Background()

	setup := func() *fixture {
		f := newFixture()
		submitted := member(2, types.RSVPStatusAwaitingPayment)
		submitted.PaymentStatus = types.PaymentStatusSubmitted
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(downPaymentTrip(), nil)
		f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(submitted, nil)
		return f
	}

	t.Run("organizer approves", func(t *testing.T) {
		f := setup()
		f.members.On("UpdateMember", mock.Anything, mock.Anything).Return(nil)

		updated, err := newMemberService(f, nil).ReviewPayment(ctx, testTripID, testOrganizerID, 2, true)
		require.NoError(t, err)
		assert.Equal(t, types.PaymentStatusConfirmed, updated.PaymentStatus)
		assert.Equal(t, types.RSVPStatusConfirmed, updated.RSVPStatus)
	})

	t.Run("organizer rejects", func(t *testing.T) {
		f := setup()
		f.members.On("UpdateMember", mock.Anything, mock.Anything).Return(nil)

		updated, err := newMemberService(f, nil).ReviewPayment(ctx, testTripID, testOrganizerID, 2, false)
		require.NoError(t, err)
		assert.Equal(t, types.PaymentStatusRejected, updated.PaymentStatus)
		assert.Equal(t, types.RSVPStatusAwaitingPayment, updated.RSVPStatus)
	})

	t.Run("admin who is not organizer", func(t *testing.T) {
		f := setup()

		_, err := newMemberService(f, nil).ReviewPayment(ctx, testTripID, 3, 2, true)
		assertCode(t, err, apperrors.CodeOrganizerOnly)
	})
}

func TestMemberService_SetAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("organizer promotes member", func(t *testing.T) {
		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(testTrip(), nil)
		f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(member(2, types.RSVPStatusConfirmed), nil)
		f.members.On("GetMember", mock.Anything, testTripID, testOrganizerID).Return(organizerMember(), nil)
		f.members.On("UpdateMember", mock.Anything, mock.Anything).Return(nil)

		updated, err := newMemberService(f, nil).SetAdmin(ctx, testTripID, testOrganizerID, 2, true)
		require.NoError(t, err)
		assert.True(t, updated.IsAdmin)
		assert.Equal(t, []types.EventType{types.EventTypeMemberAdminUpdated}, f.events.Types(testTripID))
	})

	t.Run("non admin cannot manage admins", func(t *testing.T) {
		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(testTrip(), nil)
		f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(member(2, types.RSVPStatusConfirmed), nil)
		f.members.On("GetMember", mock.Anything, testTripID, int64(3)).Return(member(3, types.RSVPStatusConfirmed), nil)

		_, err := newMemberService(f, nil).SetAdmin(ctx, testTripID, 3, 2, true)
		assertCode(t, err, apperrors.CodeAdminOnly)
	})

	t.Run("organizer stays admin", func(t *testing.T) {
		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(testTrip(), nil)
		f.members.On("GetMember", mock.Anything, testTripID, testOrganizerID).Return(organizerMember(), nil)

		_, err := newMemberService(f, nil).SetAdmin(ctx, testTripID, testOrganizerID, testOrganizerID, false)
		assert.True(t, apperrors.IsType(err, apperrors.ForbiddenError))
	})

	t.Run("last admin cannot step down", func(t *testing.T) {
		trip := testTrip()
		trip.OrganizerID = 99
		admin := member(2, types.RSVPStatusConfirmed)
		admin.IsAdmin = true

		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(trip, nil)
		f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(admin, nil)
		f.members.On("CountAdmins", mock.Anything, testTripID).Return(1, nil)

		_, err := newMemberService(f, nil).SetAdmin(ctx, testTripID, 2, 2, false)
		assertCode(t, err, apperrors.CodeLastAdmin)
		f.members.AssertNotCalled(t, "UpdateMember", mock.Anything, mock.Anything)
	})
}

func TestMemberService_RemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("member leaves", func(t *testing.T) {
		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(testTrip(), nil)
		f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(member(2, types.RSVPStatusConfirmed), nil)
		f.members.On("RemoveMember", mock.Anything, testTripID, int64(2)).Return(nil)

		require.NoError(t, newMemberService(f, nil).RemoveMember(ctx, testTripID, 2, 2))
		f.members.AssertNotCalled(t, "CountAdmins", mock.Anything, mock.Anything)
		assert.Equal(t, []types.EventType{types.EventTypeMemberRemoved}, f.events.Types(testTripID))
	})

	t.Run("plain member cannot remove others", func(t *testing.T) {
		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(testTrip(), nil)
		f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(member(2, types.RSVPStatusConfirmed), nil)
		f.members.On("GetMember", mock.Anything, testTripID, int64(3)).Return(member(3, types.RSVPStatusConfirmed), nil)

		err := newMemberService(f, nil).RemoveMember(ctx, testTripID, 3, 2)
		assertCode(t, err, apperrors.CodeAdminOnly)
	})

	t.Run("organizer cannot be removed", func(t *testing.T) {
		admin := member(2, types.RSVPStatusConfirmed)
		admin.IsAdmin = true
		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(testTrip(), nil)
		f.members.On("GetMember", mock.Anything, testTripID, testOrganizerID).Return(organizerMember(), nil)
		f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(admin, nil)

		err := newMemberService(f, nil).RemoveMember(ctx, testTripID, 2, testOrganizerID)
		assert.True(t, apperrors.IsType(err, apperrors.ForbiddenError))
	})

	t.Run("organizer cannot leave even with another admin", func(t *testing.T) {
		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(testTrip(), nil)
		f.members.On("GetMember", mock.Anything, testTripID, testOrganizerID).Return(organizerMember(), nil)
		f.members.On("CountAdmins", mock.Anything, testTripID).Return(2, nil).Maybe()

		err := newMemberService(f, nil).RemoveMember(ctx, testTripID, testOrganizerID, testOrganizerID)
		assert.True(t, apperrors.IsType(err, apperrors.ForbiddenError))
		f.members.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.events.Types(testTripID))
	})

	t.Run("last admin cannot be removed", func(t *testing.T) {
		trip := testTrip()
		trip.OrganizerID = 99
		admin := member(2, types.RSVPStatusConfirmed)
		admin.IsAdmin = true

		f := newFixture()
		f.trips.On("LockTrip", mock.Anything, testTripID).Return(trip, nil)
		f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(admin, nil)
		f.members.On("CountAdmins", mock.Anything, testTripID).Return(1, nil)

		err := newMemberService(f, nil).RemoveMember(ctx, testTripID, 2, 2)
		assertCode(t, err, apperrors.CodeLastAdmin)
		f.members.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.events.Types(testTripID))
	})
}

func TestMemberService_ListMembersPresignsForAdmins(t *testing.T) {
	withEvidence := member(2, types.RSVPStatusAwaitingPayment)
	withEvidence.PaymentEvidenceKey = "evidence/10/2/receipt.png"

	f := newFixture()
	f.trips.On("GetTrip", mock.Anything, testTripID).Return(testTrip(), nil)
	f.members.On("GetMember", mock.Anything, testTripID, testOrganizerID).Return(organizerMember(), nil)
	f.members.On("GetMember", mock.Anything, testTripID, int64(2)).Return(withEvidence, nil)
	f.members.On("ListMembers", mock.Anything, testTripID, false).Return([]*types.TripMember{organizerMember(), withEvidence}, nil)

	svc := newMemberService(f, &fakeEvidence{})

	views, err := svc.ListMembers(context.Background(), testTripID, testOrganizerID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Empty(t, views[0].EvidenceURL)
	assert.Equal(t, "https://storage.example.com/evidence/10/2/receipt.png", views[1].EvidenceURL)

	views, err = svc.ListMembers(context.Background(), testTripID, 2)
	require.NoError(t, err)
	assert.Empty(t, views[1].EvidenceURL)
}
