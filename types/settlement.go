package types

import (
	"time"

	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
)

// SettlementStatus is the lifecycle of a settlement. Confirmed and cancelled
// are terminal.
type SettlementStatus string

const (
	SettlementStatusPending   SettlementStatus = "pending"
	SettlementStatusConfirmed SettlementStatus = "confirmed"
	SettlementStatusCancelled SettlementStatus = "cancelled"
)

func (s SettlementStatus) IsTerminal() bool {
	return s == SettlementStatusConfirmed || s == SettlementStatusCancelled
}

// Settlement records a debtor paying a creditor outside the system.
type Settlement struct {
	ID          int64               `json:"id"`
	TripID      int64               `json:"tripId"`
	PayerID     int64               `json:"payerId"`
	PayeeID     int64               `json:"payeeId"`
	Amount      valueobjects.Amount `json:"amount"`
	Method      PaymentMethod       `json:"method"`
	PaymentLink string              `json:"paymentLink,omitempty"`
	WebLink     string              `json:"webLink,omitempty"`
	Memo        string              `json:"memo,omitempty"`
	Status      SettlementStatus    `json:"status"`
	ConfirmedAt *time.Time          `json:"confirmedAt,omitempty"`
	ConfirmedBy *int64              `json:"confirmedBy,omitempty"`
	CancelledAt *time.Time          `json:"cancelledAt,omitempty"`
	CancelledBy *int64              `json:"cancelledBy,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// CreateSettlementRequest is the payload for POST /trips/:id/settlements.
type CreateSettlementRequest struct {
	PayeeID int64         `json:"payeeId" binding:"required"`
	Amount  string        `json:"amount" binding:"required"`
	Method  PaymentMethod `json:"method" binding:"required,oneof=venmo paypal cash"`
	Memo    string        `json:"memo" binding:"max=140"`
}

// SettlementOptions describes how the caller can pay a given payee.
type SettlementOptions struct {
	PayeeID                   int64               `json:"payeeId"`
	PayeeName                 string              `json:"payeeName"`
	OutstandingAmount         valueobjects.Amount `json:"outstandingAmount"`
	Methods                   []PaymentMethod     `json:"methods"`
	NoPaymentMethodsAvailable bool                `json:"noPaymentMethodsAvailable"`
}
