package validation

import (
	"github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/types"
)

// ApplyRSVP returns the member state after answering an invitation.
//
// Confirming on a trip without a down payment confirms immediately. When a
// down payment is required the member waits in awaiting_payment until the
// organizer approves a submitted payment. Declining archives the trip for
// the member; the row itself is kept.
func ApplyRSVP(trip *types.Trip, member types.TripMember, status types.RSVPStatus) (types.TripMember, error) {
	current := member.RSVPStatus

	switch status {
	case types.RSVPStatusDeclined:
		if current == types.RSVPStatusDeclined {
			return member, nil
		}
		member.Status = types.InvitationStatusDeclined
		member.RSVPStatus = types.RSVPStatusDeclined
		member.IsArchived = true
		return member, nil

	case types.RSVPStatusConfirmed:
		switch current {
		case types.RSVPStatusConfirmed:
			return member, nil
		case types.RSVPStatusDeclined:
			return member, errors.InvalidStatusTransition(string(current), string(status))
		}
		member.Status = types.InvitationStatusConfirmed
		member.IsArchived = false
		if trip.RequiresDownPayment && !trip.IsOrganizer(member.UserID) &&
			member.PaymentStatus != types.PaymentStatusConfirmed {
			member.RSVPStatus = types.RSVPStatusAwaitingPayment
			if member.PaymentStatus == types.PaymentStatusNotRequired || member.PaymentStatus == "" {
				member.PaymentStatus = types.PaymentStatusPending
			}
			return member, nil
		}
		member.RSVPStatus = types.RSVPStatusConfirmed
		return member, nil
	}

	return member, errors.ValidationFailed("invalid RSVP status", string(status))
}

// ApplyPaymentSubmission records a member's down-payment claim.
func ApplyPaymentSubmission(trip *types.Trip, member types.TripMember, sub types.PaymentSubmission) (types.TripMember, error) {
	if !trip.RequiresDownPayment {
		return member, errors.ValidationFailed("down payment not required", "this trip does not require a down payment")
	}
	if !sub.Method.IsValid() {
		return member, errors.ValidationFailed("invalid payment method", string(sub.Method))
	}
	if member.RSVPStatus == types.RSVPStatusDeclined {
		return member, errors.InvalidStatusTransition(string(member.RSVPStatus), string(types.PaymentStatusSubmitted))
	}
	switch member.PaymentStatus {
	case types.PaymentStatusConfirmed, types.PaymentStatusSubmitted:
		return member, errors.InvalidStatusTransition(string(member.PaymentStatus), string(types.PaymentStatusSubmitted))
	}

	member.Status = types.InvitationStatusConfirmed
	member.RSVPStatus = types.RSVPStatusAwaitingPayment
	member.PaymentStatus = types.PaymentStatusSubmitted
	member.PaymentMethod = sub.Method
	member.PaymentNote = sub.Note
	member.IsArchived = false
	return member, nil
}

// ApplyPaymentReview applies the organizer's decision. Approval confirms the
// RSVP; rejection sends the member back to resubmit.
func ApplyPaymentReview(member types.TripMember, approve bool) (types.TripMember, error) {
	if member.PaymentStatus != types.PaymentStatusSubmitted {
		next := types.PaymentStatusRejected
		if approve {
			next = types.PaymentStatusConfirmed
		}
		return member, errors.InvalidStatusTransition(string(member.PaymentStatus), string(next))
	}
	if approve {
		member.PaymentStatus = types.PaymentStatusConfirmed
		member.RSVPStatus = types.RSVPStatusConfirmed
		member.Status = types.InvitationStatusConfirmed
		return member, nil
	}
	member.PaymentStatus = types.PaymentStatusRejected
	member.RSVPStatus = types.RSVPStatusAwaitingPayment
	return member, nil
}

// CheckAdminFloor rejects a change that would take admin rights away from
// target when it holds the last ones. adminCount is the current number of
// active admins, organizer included.
func CheckAdminFloor(trip *types.Trip, target *types.TripMember, adminCount int) error {
	if types.IsTripAdmin(trip, target) && adminCount <= 1 {
		return errors.LastAdminRequired()
	}
	return nil
}

// InitialPaymentStatus is the payment state a new invitee starts in.
func InitialPaymentStatus(trip *types.Trip) types.PaymentStatus {
	if trip.RequiresDownPayment {
		return types.PaymentStatusPending
	}
	return types.PaymentStatusNotRequired
}
