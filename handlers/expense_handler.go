package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/logger"
	expenseservice "github.com/NomadCrew/crewtrip-backend/models/expense/service"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExpenseHandler handles shared expenses, balances and the spreadsheet export.
type ExpenseHandler struct {
	expenses expenseservice.ExpenseServiceInterface
}

func NewExpenseHandler(expenses expenseservice.ExpenseServiceInterface) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// CreateExpenseHandler godoc
// @Summary Record a shared expense
// @Description Equal splits distribute the cent remainder one cent at a time; custom splits must sum to the amount.
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param request body types.CreateExpenseRequest true "Expense"
// @Success 201 {object} types.Expense "Created expense with splits"
// @Failure 400 {object} types.ErrorResponse "Bad request - Invalid amount or splits"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/expenses [post]
// @Security BearerAuth
func (h *ExpenseHandler) CreateExpenseHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	var req types.CreateExpenseRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	expense, err := h.expenses.CreateExpense(c.Request.Context(), tripID, userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// ListExpensesHandler godoc
// @Summary List trip expenses
// @Tags expenses
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {array} types.Expense "Expenses, oldest first"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/expenses [get]
// @Security BearerAuth
func (h *ExpenseHandler) ListExpensesHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	expenses, err := h.expenses.ListExpenses(c.Request.Context(), tripID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if expenses == nil {
		expenses = []*types.Expense{}
	}
	c.JSON(http.StatusOK, expenses)
}

// DeleteExpenseHandler godoc
// @Summary Delete an expense
// @Description The creator or an admin may delete; activity-linked expenses are admin only.
// @Tags expenses
// @Param id path int true "Trip ID"
// @Param expenseId path int true "Expense ID"
// @Success 204 "Deleted"
// @Failure 403 {object} types.ErrorResponse "Forbidden"
// @Failure 404 {object} types.ErrorResponse "Not found"
// @Router /trips/{id}/expenses/{expenseId} [delete]
// @Security BearerAuth
func (h *ExpenseHandler) DeleteExpenseHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	expenseID, ok := paramID(c, "expenseId")
	if !ok {
		return
	}
	if err := h.expenses.DeleteExpense(c.Request.Context(), tripID, userID, expenseID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetBalancesHandler godoc
// @Summary Balances and suggested settlements
// @Tags expenses
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {object} types.TripBalances "Balances"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/expenses/balances [get]
// @Security BearerAuth
func (h *ExpenseHandler) GetBalancesHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	balances, err := h.expenses.GetBalances(c.Request.Context(), tripID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

// ExportHandler godoc
// @Summary Export expenses as a spreadsheet
// @Description Workbook with Balances, Expenses and Settlements sheets.
// @Tags expenses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Trip ID"
// @Success 200 {file} file "xlsx workbook"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/expenses/export [get]
// @Security BearerAuth
func (h *ExpenseHandler) ExportHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	f, filename, err := h.expenses.ExportWorkbook(c.Request.Context(), tripID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.GetLogger().Warnw("Failed to close workbook", "tripID", tripID, "error", cerr)
		}
	}()

	buf, err := f.WriteToBuffer()
	if err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ServerError, "Failed to render export"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
