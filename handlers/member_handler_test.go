package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func memberRouter(svc *MockMemberService, maxUpload int64) *gin.Engine {
	h := NewMemberHandler(svc, maxUpload)
	return newTestRouter(func(r gin.IRoutes) {
		r.GET("/trips/:id/members", h.ListMembersHandler)
		r.PUT("/trips/:id/members/:userId/rsvp", h.UpdateRSVPHandler)
		r.POST("/trips/:id/members/:userId/payment", h.SubmitPaymentHandler)
		r.PUT("/trips/:id/members/:userId/payment", h.ReviewPaymentHandler)
		r.PUT("/trips/:id/members/:userId/admin", h.SetAdminHandler)
		r.DELETE("/trips/:id/members/:userId", h.RemoveMemberHandler)
	})
}

func TestUpdateRSVPHandler(t *testing.T) {
	testCases := []struct {
		name       string
		path       string
		body       string
		setup      func(m *MockMemberService)
		wantStatus int
	}{
		{
			name: "confirm",
			path: "/trips/7/members/42/rsvp",
			body: `{"status":"confirmed"}`,
			setup: func(m *MockMemberService) {
				m.On("UpdateRSVP", mock.Anything, int64(7), testUserID, int64(42), types.RSVPStatusConfirmed).
					Return(&types.TripMember{TripID: 7, UserID: 42, RSVPStatus: types.RSVPStatusAwaitingPayment}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown status rejected by binding",
			path:       "/trips/7/members/42/rsvp",
			body:       `{"status":"maybe"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "non numeric trip id",
			path:       "/trips/abc/members/42/rsvp",
			body:       `{"status":"confirmed"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "someone else's rsvp",
			path: "/trips/7/members/43/rsvp",
			body: `{"status":"declined"}`,
			setup: func(m *MockMemberService) {
				m.On("UpdateRSVP", mock.Anything, int64(7), testUserID, int64(43), types.RSVPStatusDeclined).
					Return(nil, apperrors.Forbidden("You can only respond for yourself", ""))
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockMemberService)
			if tc.setup != nil {
				tc.setup(svc)
			}
			req := httptest.NewRequest(http.MethodPut, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := perform(memberRouter(svc, 0), req)

			assert.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestSubmitPaymentHandler_JSON(t *testing.T) {
	svc := new(MockMemberService)
	sub := types.PaymentSubmission{Method: types.PaymentMethodCash, Note: "paid at dinner"}
	svc.On("SubmitPayment", mock.Anything, int64(7), testUserID, testUserID, sub, false).
		Return(&types.TripMember{TripID: 7, UserID: testUserID, PaymentStatus: types.PaymentStatusSubmitted}, nil)

	req := httptest.NewRequest(http.MethodPost, "/trips/7/members/42/payment",
		strings.NewReader(`{"method":"cash","note":"paid at dinner"}`))
	req.Header.Set("Content-Type", "application/json")
	w := perform(memberRouter(svc, 0), req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"paymentStatus":"submitted"`)
	svc.AssertExpectations(t)
}

func TestSubmitPaymentHandler_Multipart(t *testing.T) {
	svc := new(MockMemberService)
	sub := types.PaymentSubmission{Method: types.PaymentMethodVenmo}
	svc.On("SubmitPayment", mock.Anything, int64(7), testUserID, testUserID, sub, true).
		Return(&types.TripMember{TripID: 7, UserID: testUserID, PaymentStatus: types.PaymentStatusSubmitted}, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("method", "venmo"))
	fw, err := mw.CreateFormFile("evidence", "receipt.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 receipt"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/trips/7/members/42/payment", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := perform(memberRouter(svc, 1<<20), req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "%PDF-1.4 receipt", string(svc.evidenceBody))
	svc.AssertExpectations(t)
}

func TestSubmitPaymentHandler_MultipartMissingMethod(t *testing.T) {
	svc := new(MockMemberService)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "forgot the method"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/trips/7/members/42/payment", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := perform(memberRouter(svc, 0), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "SubmitPayment")
}

func TestReviewPaymentHandler(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("ReviewPayment", mock.Anything, int64(7), testUserID, int64(50), false).
		Return(&types.TripMember{TripID: 7, UserID: 50, PaymentStatus: types.PaymentStatusRejected}, nil)

	req := httptest.NewRequest(http.MethodPut, "/trips/7/members/50/payment", strings.NewReader(`{"approve":false}`))
	req.Header.Set("Content-Type", "application/json")
	w := perform(memberRouter(svc, 0), req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodPut, "/trips/7/members/50/payment", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w = perform(memberRouter(svc, 0), req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "approve is required")

	svc.AssertExpectations(t)
}

func TestSetAdminHandler_LastAdmin(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("SetAdmin", mock.Anything, int64(7), testUserID, testUserID, false).Return(nil, apperrors.LastAdminRequired())

	req := httptest.NewRequest(http.MethodPut, "/trips/7/members/42/admin", strings.NewReader(`{"isAdmin":false}`))
	req.Header.Set("Content-Type", "application/json")
	w := perform(memberRouter(svc, 0), req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.CodeLastAdmin, decodeError(t, w).Code)
	svc.AssertExpectations(t)
}

func TestRemoveMemberHandler(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("RemoveMember", mock.Anything, int64(7), testUserID, int64(50)).Return(nil)

	w := perform(memberRouter(svc, 0), httptest.NewRequest(http.MethodDelete, "/trips/7/members/50", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestListMembersHandler_EmptyIsArray(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("ListMembers", mock.Anything, int64(7), testUserID).Return(nil, nil)

	w := perform(memberRouter(svc, 0), httptest.NewRequest(http.MethodGet, "/trips/7/members", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
