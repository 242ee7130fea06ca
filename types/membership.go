package types

import (
	"context"
	"time"
)

// InvitationStatus tracks the invitation lifecycle of a trip member.
type InvitationStatus string

const (
	InvitationStatusPending   InvitationStatus = "pending"
	InvitationStatusConfirmed InvitationStatus = "confirmed"
	InvitationStatusDeclined  InvitationStatus = "declined"
)

// RSVPStatus tracks attendance, including the down-payment step.
type RSVPStatus string

const (
	RSVPStatusPending         RSVPStatus = "pending"
	RSVPStatusAwaitingPayment RSVPStatus = "awaiting_payment"
	RSVPStatusConfirmed       RSVPStatus = "confirmed"
	RSVPStatusDeclined        RSVPStatus = "declined"
)

// PaymentStatus tracks the down payment of a member.
type PaymentStatus string

const (
	PaymentStatusNotRequired PaymentStatus = "not_required"
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusSubmitted   PaymentStatus = "submitted"
	PaymentStatusConfirmed   PaymentStatus = "confirmed"
	PaymentStatusRejected    PaymentStatus = "rejected"
)

// PaymentMethod is how money changes hands between members.
type PaymentMethod string

const (
	PaymentMethodVenmo  PaymentMethod = "venmo"
	PaymentMethodPaypal PaymentMethod = "paypal"
	PaymentMethodCash   PaymentMethod = "cash"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodVenmo, PaymentMethodPaypal, PaymentMethodCash:
		return true
	}
	return false
}

// TripMember is keyed by (TripID, UserID). Removal is soft: RemovedAt is set
// and the row is kept so historical balances can still name the user.
type TripMember struct {
	TripID             int64            `json:"tripId"`
	UserID             int64            `json:"userId"`
	Username           string           `json:"username,omitempty"`
	DisplayName        string           `json:"displayName,omitempty"`
	Status             InvitationStatus `json:"status"`
	RSVPStatus         RSVPStatus       `json:"rsvpStatus"`
	PaymentStatus      PaymentStatus    `json:"paymentStatus"`
	PaymentMethod      PaymentMethod    `json:"paymentMethod,omitempty"`
	PaymentNote        string           `json:"paymentNote,omitempty"`
	PaymentEvidenceKey string           `json:"-"`
	IsAdmin            bool             `json:"isAdmin"`
	IsArchived         bool             `json:"isArchived"`
	InvitedBy          *int64           `json:"invitedBy,omitempty"`
	JoinedAt           time.Time        `json:"joinedAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
	RemovedAt          *time.Time       `json:"removedAt,omitempty"`
}

// IsActive reports whether the membership row has not been removed.
func (m *TripMember) IsActive() bool {
	return m != nil && m.RemovedAt == nil
}

// IsConfirmedMember is the one gate every content feature (chat, expenses,
// activities, polls, flights, settlements) evaluates: the organizer, or an
// active member whose RSVP is confirmed.
func IsConfirmedMember(trip *Trip, member *TripMember) bool {
	if trip == nil || member == nil || !member.IsActive() || member.TripID != trip.ID {
		return false
	}
	return trip.IsOrganizer(member.UserID) || member.RSVPStatus == RSVPStatusConfirmed
}

// IsTripAdmin reports admin privilege; the organizer always counts as admin.
func IsTripAdmin(trip *Trip, member *TripMember) bool {
	if trip == nil || member == nil || !member.IsActive() {
		return false
	}
	return trip.IsOrganizer(member.UserID) || member.IsAdmin
}

// MemberContext is the resolved caller of a trip-scoped request.
type MemberContext struct {
	Trip   *Trip
	Member *TripMember
}

func (mc *MemberContext) UserID() int64 { return mc.Member.UserID }

func (mc *MemberContext) IsAdmin() bool { return IsTripAdmin(mc.Trip, mc.Member) }

func (mc *MemberContext) IsOrganizer() bool { return mc.Trip.IsOrganizer(mc.Member.UserID) }

// MemberGate resolves a caller's membership for trip-scoped features.
type MemberGate interface {
	// RequireMember admits any active member, including pending invitees.
	RequireMember(ctx context.Context, tripID, userID int64) (*MemberContext, error)
	// RequireConfirmedMember admits only members passing IsConfirmedMember.
	RequireConfirmedMember(ctx context.Context, tripID, userID int64) (*MemberContext, error)
}

// RSVPRequest is the body of PUT /trips/:id/members/:userId/rsvp.
type RSVPRequest struct {
	Status RSVPStatus `json:"status" binding:"required,oneof=confirmed declined"`
}

// PaymentSubmission is a member's down-payment claim.
type PaymentSubmission struct {
	Method PaymentMethod `json:"method" form:"method" binding:"required,oneof=venmo paypal cash"`
	Note   string        `json:"note" form:"note" binding:"max=500"`
}

// PaymentReview is the organizer's decision on a submitted down payment.
type PaymentReview struct {
	Approve *bool  `json:"approve" binding:"required"`
	Reason  string `json:"reason" binding:"max=500"`
}

// AdminUpdateRequest grants or revokes admin rights.
type AdminUpdateRequest struct {
	IsAdmin *bool `json:"isAdmin" binding:"required"`
}

// MemberView adds the evidence URL for reviewers.
type MemberView struct {
	TripMember
	EvidenceURL string `json:"evidenceUrl,omitempty"`
}
