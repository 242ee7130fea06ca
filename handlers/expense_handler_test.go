package handlers

import (
	"bytes"
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
	"github.com/xuri/excelize/v2"
)

func expenseRouter(expenses *MockExpenseService, settlements *MockSettlementService) *gin.Engine {
	eh := NewExpenseHandler(expenses)
	sh := NewSettlementHandler(settlements)
	return newTestRouter(func(r gin.IRoutes) {
		r.POST("/trips/:id/expenses", eh.CreateExpenseHandler)
		r.GET("/trips/:id/expenses", eh.ListExpensesHandler)
		r.DELETE("/trips/:id/expenses/:expenseId", eh.DeleteExpenseHandler)
		r.GET("/trips/:id/expenses/balances", eh.GetBalancesHandler)
		r.GET("/trips/:id/expenses/export", eh.ExportHandler)
		r.GET("/trips/:id/settlements/options", sh.GetOptionsHandler)
		r.POST("/trips/:id/settlements", sh.CreateSettlementHandler)
		r.POST("/trips/:id/settlements/:settlementId/confirm", sh.ConfirmSettlementHandler)
		r.POST("/trips/:id/settlements/:settlementId/cancel", sh.CancelSettlementHandler)
	})
}

func TestCreateExpenseHandler(t *testing.T) {
	expenses := new(MockExpenseService)
	expenses.On("CreateExpense", mock.Anything, int64(4), testUserID, mock.MatchedBy(func(req *types.CreateExpenseRequest) bool {
		return req.Amount == "90.00" && len(req.Participants) == 3
	})).Return(&types.Expense{ID: 1, TripID: 4}, nil)

	req := httptest.NewRequest(http.MethodPost, "/trips/4/expenses",
		strings.NewReader(`{"description":"Dinner","amount":"90.00","splitMode":"equal","participants":[42,43,44]}`))
	req.Header.Set("Content-Type", "application/json")
	w := perform(expenseRouter(expenses, nil), req)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	expenses.AssertExpectations(t)
}

func TestCreateExpenseHandler_PendingMember(t *testing.T) {
	expenses := new(MockExpenseService)
	expenses.On("CreateExpense", mock.Anything, int64(4), testUserID, mock.Anything).
		Return(nil, apperrors.NotConfirmedMember(4, testUserID))

	req := httptest.NewRequest(http.MethodPost, "/trips/4/expenses", strings.NewReader(`{"description":"Taxi","amount":"12"}`))
	req.Header.Set("Content-Type", "application/json")
	w := perform(expenseRouter(expenses, nil), req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.NotConfirmedMember(4, testUserID).Code, decodeError(t, w).Code)
}

func TestExportHandler(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Balances"))

	expenses := new(MockExpenseService)
	expenses.On("ExportWorkbook", mock.Anything, int64(4), testUserID).Return(f, "Lisbon_Export_2026-06-01.xlsx", nil)

	w := perform(expenseRouter(expenses, nil), httptest.NewRequest(http.MethodGet, "/trips/4/expenses/export", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Lisbon_Export_2026-06-01.xlsx"`, w.Header().Get("Content-Disposition"))

	out, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	v, err := out.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Balances", v)
}

func TestDeleteExpenseHandler(t *testing.T) {
	expenses := new(MockExpenseService)
	expenses.On("DeleteExpense", mock.Anything, int64(4), testUserID, int64(12)).Return(nil)

	w := perform(expenseRouter(expenses, nil), httptest.NewRequest(http.MethodDelete, "/trips/4/expenses/12", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	expenses.AssertExpectations(t)
}

func TestGetOptionsHandler(t *testing.T) {
	settlements := new(MockSettlementService)
	settlements.On("GetOptions", mock.Anything, int64(4), testUserID, int64(43)).
		Return(&types.SettlementOptions{PayeeID: 43, Methods: []types.PaymentMethod{types.PaymentMethodCash}}, nil)

	w := perform(expenseRouter(nil, settlements), httptest.NewRequest(http.MethodGet, "/trips/4/settlements/options?payeeId=43", nil))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(expenseRouter(nil, settlements), httptest.NewRequest(http.MethodGet, "/trips/4/settlements/options", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	settlements.AssertExpectations(t)
}

func TestCreateSettlementHandler_NoPaymentMethods(t *testing.T) {
	settlements := new(MockSettlementService)
	settlements.On("CreateSettlement", mock.Anything, int64(4), testUserID, mock.Anything).
		Return(nil, apperrors.NoPaymentMethods("venmo"))

	req := httptest.NewRequest(http.MethodPost, "/trips/4/settlements",
		strings.NewReader(`{"payeeId":43,"amount":"45.00","method":"venmo"}`))
	req.Header.Set("Content-Type", "application/json")
	w := perform(expenseRouter(nil, settlements), req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSettlementTransitions(t *testing.T) {
	settlements := new(MockSettlementService)
	settlements.On("ConfirmSettlement", mock.Anything, int64(4), testUserID, int64(8)).
		Return(&types.Settlement{ID: 8, Status: types.SettlementStatusConfirmed}, nil)
	settlements.On("CancelSettlement", mock.Anything, int64(4), testUserID, int64(9)).
		Return(nil, apperrors.NewConflictError("Settlement is not pending", ""))

	w := perform(expenseRouter(nil, settlements), httptest.NewRequest(http.MethodPost, "/trips/4/settlements/8/confirm", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(expenseRouter(nil, settlements), httptest.NewRequest(http.MethodPost, "/trips/4/settlements/9/cancel", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	settlements.AssertExpectations(t)
}
