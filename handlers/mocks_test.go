package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/middleware"
	tripservice "github.com/NomadCrew/crewtrip-backend/models/trip/service"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.IsTest = true
}

const testUserID int64 = 42

// newTestRouter mounts routes behind the real error handler with an
// authenticated user already in context.
func newTestRouter(register func(r gin.IRoutes)) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	g := r.Group("", func(c *gin.Context) {
		c.Set(string(middleware.UserIDKey), testUserID)
		c.Next()
	})
	register(g)
	return r
}

func perform(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()
	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

type MockTripService struct{ mock.Mock }

func (m *MockTripService) CreateTrip(ctx context.Context, userID int64, req *types.CreateTripRequest) (*types.Trip, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockTripService) GetTrip(ctx context.Context, tripID, userID int64) (*types.TripWithMembership, error) {
	args := m.Called(ctx, tripID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripWithMembership), args.Error(1)
}

func (m *MockTripService) ListTrips(ctx context.Context, userID int64) ([]*types.TripWithMembership, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.TripWithMembership), args.Error(1)
}

func (m *MockTripService) UpdateTrip(ctx context.Context, tripID, userID int64, update *types.TripUpdate) (*types.Trip, error) {
	args := m.Called(ctx, tripID, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockTripService) ArchiveTrip(ctx context.Context, tripID, userID int64) error {
	return m.Called(ctx, tripID, userID).Error(0)
}

type MockBudgetService struct{ mock.Mock }

func (m *MockBudgetService) Estimate(ctx context.Context, tripID, userID int64, days int) (*types.BudgetEstimate, error) {
	args := m.Called(ctx, tripID, userID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.BudgetEstimate), args.Error(1)
}

type MockMemberService struct {
	mock.Mock
	// evidenceBody captures the uploaded file so tests can inspect it
	// after the request has finished.
	evidenceBody []byte
}

func (m *MockMemberService) ListMembers(ctx context.Context, tripID, userID int64) ([]*types.MemberView, error) {
	args := m.Called(ctx, tripID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.MemberView), args.Error(1)
}

func (m *MockMemberService) UpdateRSVP(ctx context.Context, tripID, actorID, targetID int64, status types.RSVPStatus) (*types.TripMember, error) {
	args := m.Called(ctx, tripID, actorID, targetID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripMember), args.Error(1)
}

func (m *MockMemberService) SubmitPayment(ctx context.Context, tripID, actorID, targetID int64, sub types.PaymentSubmission, evidence *tripservice.Evidence) (*types.TripMember, error) {
	if evidence != nil && evidence.Body != nil {
		m.evidenceBody, _ = io.ReadAll(evidence.Body)
	}
	args := m.Called(ctx, tripID, actorID, targetID, sub, evidence != nil)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripMember), args.Error(1)
}

func (m *MockMemberService) ReviewPayment(ctx context.Context, tripID, actorID, targetID int64, approve bool) (*types.TripMember, error) {
	args := m.Called(ctx, tripID, actorID, targetID, approve)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripMember), args.Error(1)
}

func (m *MockMemberService) SetAdmin(ctx context.Context, tripID, actorID, targetID int64, isAdmin bool) (*types.TripMember, error) {
	args := m.Called(ctx, tripID, actorID, targetID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripMember), args.Error(1)
}

func (m *MockMemberService) RemoveMember(ctx context.Context, tripID, actorID, targetID int64) error {
	return m.Called(ctx, tripID, actorID, targetID).Error(0)
}

type MockInvitationService struct{ mock.Mock }

func (m *MockInvitationService) InviteUsernames(ctx context.Context, tripID, actorID int64, usernames []string) (*types.BatchInvitationResult, error) {
	args := m.Called(ctx, tripID, actorID, usernames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.BatchInvitationResult), args.Error(1)
}

func (m *MockInvitationService) CreateLink(ctx context.Context, tripID, actorID int64, expiresInHours int) (*types.InvitationLink, error) {
	args := m.Called(ctx, tripID, actorID, expiresInHours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.InvitationLink), args.Error(1)
}

func (m *MockInvitationService) ListLinks(ctx context.Context, tripID, actorID int64) ([]*types.InvitationLink, error) {
	args := m.Called(ctx, tripID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.InvitationLink), args.Error(1)
}

func (m *MockInvitationService) RevokeLink(ctx context.Context, tripID, actorID, linkID int64) error {
	return m.Called(ctx, tripID, actorID, linkID).Error(0)
}

func (m *MockInvitationService) JoinByToken(ctx context.Context, token string, userID int64) (*types.TripMember, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripMember), args.Error(1)
}

type MockExpenseService struct{ mock.Mock }

func (m *MockExpenseService) CreateExpense(ctx context.Context, tripID, userID int64, req *types.CreateExpenseRequest) (*types.Expense, error) {
	args := m.Called(ctx, tripID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Expense), args.Error(1)
}

func (m *MockExpenseService) ListExpenses(ctx context.Context, tripID, userID int64) ([]*types.Expense, error) {
	args := m.Called(ctx, tripID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Expense), args.Error(1)
}

func (m *MockExpenseService) DeleteExpense(ctx context.Context, tripID, userID, expenseID int64) error {
	return m.Called(ctx, tripID, userID, expenseID).Error(0)
}

func (m *MockExpenseService) GetBalances(ctx context.Context, tripID, userID int64) (*types.TripBalances, error) {
	args := m.Called(ctx, tripID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripBalances), args.Error(1)
}

func (m *MockExpenseService) ExportWorkbook(ctx context.Context, tripID, userID int64) (*excelize.File, string, error) {
	args := m.Called(ctx, tripID, userID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*excelize.File), args.String(1), args.Error(2)
}

type MockSettlementService struct{ mock.Mock }

func (m *MockSettlementService) GetOptions(ctx context.Context, tripID, payerID, payeeID int64) (*types.SettlementOptions, error) {
	args := m.Called(ctx, tripID, payerID, payeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SettlementOptions), args.Error(1)
}

func (m *MockSettlementService) CreateSettlement(ctx context.Context, tripID, payerID int64, req *types.CreateSettlementRequest) (*types.Settlement, error) {
	args := m.Called(ctx, tripID, payerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Settlement), args.Error(1)
}

func (m *MockSettlementService) ListSettlements(ctx context.Context, tripID, userID int64) ([]*types.Settlement, error) {
	args := m.Called(ctx, tripID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Settlement), args.Error(1)
}

func (m *MockSettlementService) ConfirmSettlement(ctx context.Context, tripID, actorID, settlementID int64) (*types.Settlement, error) {
	args := m.Called(ctx, tripID, actorID, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Settlement), args.Error(1)
}

func (m *MockSettlementService) CancelSettlement(ctx context.Context, tripID, actorID, settlementID int64) (*types.Settlement, error) {
	args := m.Called(ctx, tripID, actorID, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Settlement), args.Error(1)
}

type MockChatService struct{ mock.Mock }

func (m *MockChatService) SendMessage(ctx context.Context, tripID, userID int64, content string) (*types.ChatMessage, error) {
	args := m.Called(ctx, tripID, userID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatMessage), args.Error(1)
}

func (m *MockChatService) ListMessages(ctx context.Context, tripID, userID int64, before *int64, limit int) (*types.MessagePage, error) {
	args := m.Called(ctx, tripID, userID, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.MessagePage), args.Error(1)
}

func (m *MockChatService) DeleteMessage(ctx context.Context, tripID, userID, messageID int64) error {
	return m.Called(ctx, tripID, userID, messageID).Error(0)
}

type MockFlightService struct{ mock.Mock }

func (m *MockFlightService) UpsertMyFlight(ctx context.Context, tripID, userID int64, req *types.FlightInfoRequest) (*types.FlightInfo, error) {
	args := m.Called(ctx, tripID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FlightInfo), args.Error(1)
}

func (m *MockFlightService) ListFlights(ctx context.Context, tripID, userID int64) ([]*types.FlightInfo, error) {
	args := m.Called(ctx, tripID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.FlightInfo), args.Error(1)
}

func (m *MockFlightService) DeleteMyFlight(ctx context.Context, tripID, userID int64, direction types.FlightDirection) error {
	return m.Called(ctx, tripID, userID, direction).Error(0)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) EnsureUser(ctx context.Context, identity types.AuthIdentity) (*types.User, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID int64) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID int64, update types.UserProfileUpdate) (*types.User, error) {
	args := m.Called(ctx, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) CloseAccount(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type fakeHealth struct {
	status types.HealthStatus
}

func (f fakeHealth) CheckHealth(ctx context.Context) types.HealthCheck {
	return types.HealthCheck{Status: f.status, Components: map[string]types.HealthComponent{}}
}
