package service

import (
	"context"
	"sync"

	"github.com/NomadCrew/crewtrip-backend/internal/events"
	"github.com/NomadCrew/crewtrip-backend/internal/store/mocks"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/services"
	"github.com/NomadCrew/crewtrip-backend/types"
)

func init() {
	logger.IsTest = true
}

// inlineJobs runs submitted jobs immediately.
type inlineJobs struct {
	names []string
}

func (j *inlineJobs) Submit(job services.Job) bool {
	j.names = append(j.names, job.Name)
	_ = job.Execute(context.Background())
	return true
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []types.InvitationEmail
}

func (m *recordingMailer) SendInvitationEmail(_ context.Context, email types.InvitationEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

type fixture struct {
	tx       *mocks.Transactor
	trips    *mocks.TripStore
	members  *mocks.MemberStore
	users    *mocks.UserStore
	links    *mocks.InvitationStore
	expenses *mocks.ExpenseStore
	gate     *MembershipGate
	events   *events.MockPublisher
	jobs     *inlineJobs
	mailer   *recordingMailer
}

func newFixture() *fixture {
	f := &fixture{
		tx:       &mocks.Transactor{},
		trips:    &mocks.TripStore{},
		members:  &mocks.MemberStore{},
		users:    &mocks.UserStore{},
		links:    &mocks.InvitationStore{},
		expenses: &mocks.ExpenseStore{},
		events:   events.NewMockPublisher(),
		jobs:     &inlineJobs{},
		mailer:   &recordingMailer{},
	}
	f.gate = NewMembershipGate(f.trips, f.members)
	return f
}

const (
	testTripID      int64 = 10
	testOrganizerID int64 = 1
)

func testTrip() *types.Trip {
	return &types.Trip{ID: testTripID, Name: "Lisbon Weekend", Destination: "Lisbon, Portugal", OrganizerID: testOrganizerID}
}

func member(userID int64, rsvp types.RSVPStatus) *types.TripMember {
	return &types.TripMember{
		TripID:        testTripID,
		UserID:        userID,
		Status:        types.InvitationStatusConfirmed,
		RSVPStatus:    rsvp,
		PaymentStatus: types.PaymentStatusNotRequired,
	}
}

func organizerMember() *types.TripMember {
	m := member(testOrganizerID, types.RSVPStatusConfirmed)
	m.IsAdmin = true
	return m
}
