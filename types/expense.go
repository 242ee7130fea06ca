package types

import (
	"time"

	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
)

// SplitMode selects how an expense is divided.
type SplitMode string

const (
	SplitModeEqual  SplitMode = "equal"
	SplitModeCustom SplitMode = "custom"
)

// Expense is money fronted by PaidBy on behalf of the split participants.
type Expense struct {
	ID          int64               `json:"id"`
	TripID      int64               `json:"tripId"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Amount      valueobjects.Amount `json:"amount"`
	PaidBy      int64               `json:"paidBy"`
	CreatedBy   int64               `json:"createdBy"`
	ActivityID  *int64              `json:"activityId,omitempty"`
	IsSettled   bool                `json:"isSettled"`
	Splits      []ExpenseSplit      `json:"splits"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ExpenseSplit is the share of an expense owed by UserID.
type ExpenseSplit struct {
	ID        int64               `json:"id"`
	ExpenseID int64               `json:"expenseId"`
	UserID    int64               `json:"userId"`
	Amount    valueobjects.Amount `json:"amount"`
	IsPaid    bool                `json:"isPaid"`
}

// SplitInput is one explicit share in a custom split.
type SplitInput struct {
	UserID int64  `json:"userId" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// CreateExpenseRequest is the payload for POST /trips/:id/expenses.
type CreateExpenseRequest struct {
	Description  string       `json:"description" binding:"required,max=200"`
	Category     string       `json:"category" binding:"max=50"`
	Amount       string       `json:"amount" binding:"required"`
	PaidBy       *int64       `json:"paidBy"`
	SplitMode    SplitMode    `json:"splitMode" binding:"omitempty,oneof=equal custom"`
	Participants []int64      `json:"participants"`
	Splits       []SplitInput `json:"splits" binding:"dive"`
}

// MemberBalance is the derived position of one user within a trip.
// NetBalance = TotalPaid - TotalOwed + SettlementsPaid - SettlementsReceived.
type MemberBalance struct {
	UserID              int64               `json:"userId"`
	Name                string              `json:"name"`
	TotalPaid           valueobjects.Amount `json:"totalPaid"`
	TotalOwed           valueobjects.Amount `json:"totalOwed"`
	SettlementsPaid     valueobjects.Amount `json:"settlementsPaid"`
	SettlementsReceived valueobjects.Amount `json:"settlementsReceived"`
	NetBalance          valueobjects.Amount `json:"netBalance"`
	IsCurrentMember     bool                `json:"isCurrentMember"`
	IsLegacyRemoved     bool                `json:"isLegacyRemoved"`
}

// SuggestedTransfer is one edge of the minimal payoff plan.
type SuggestedTransfer struct {
	FromUserID int64               `json:"fromUserId"`
	ToUserID   int64               `json:"toUserId"`
	Amount     valueobjects.Amount `json:"amount"`
}

// TripBalances is the response of GET /trips/:id/expenses/balances.
type TripBalances struct {
	TripID               int64               `json:"tripId"`
	Currency             string              `json:"currency"`
	TotalSpent           valueobjects.Amount `json:"totalSpent"`
	ConfirmedMemberCount int                 `json:"confirmedMemberCount"`
	PerPersonCost        valueobjects.Amount `json:"perPersonCost"`
	Balances             []MemberBalance     `json:"balances"`
	Suggestions          []SuggestedTransfer `json:"suggestions"`
}

// Find returns the balance row for userID, or nil.
func (tb *TripBalances) Find(userID int64) *MemberBalance {
	for i := range tb.Balances {
		if tb.Balances[i].UserID == userID {
			return &tb.Balances[i]
		}
	}
	return nil
}
