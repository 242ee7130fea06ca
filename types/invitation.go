package types

import (
	"encoding/json"
	"strings"
	"time"
)

// InvitationOutcomeStatus is the per-username result of a batch invite.
type InvitationOutcomeStatus string

const (
	InvitationOutcomeSent             InvitationOutcomeStatus = "sent"
	InvitationOutcomeAlreadyMember    InvitationOutcomeStatus = "already_member"
	InvitationOutcomeNotFound         InvitationOutcomeStatus = "not_found"
	InvitationOutcomePermissionDenied InvitationOutcomeStatus = "permission_denied"
	InvitationOutcomeFailed           InvitationOutcomeStatus = "failed"
)

type InvitationOutcome struct {
	Username string                  `json:"username"`
	Status   InvitationOutcomeStatus `json:"status"`
	UserID   *int64                  `json:"userId,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// BatchInvitationResult groups outcomes by category and carries a summary
// line suitable for a toast.
type BatchInvitationResult struct {
	Outcomes         []InvitationOutcome `json:"outcomes"`
	Sent             []string            `json:"sent"`
	AlreadyInvited   []string            `json:"alreadyInvited"`
	NotFound         []string            `json:"notFound"`
	PermissionDenied []string            `json:"permissionDenied"`
	Failed           []string            `json:"failed"`
	Message          string              `json:"message"`
}

// FailedCount counts every outcome other than sent.
func (r *BatchInvitationResult) FailedCount() int {
	return len(r.Outcomes) - len(r.Sent)
}

// UsernameList accepts either a JSON array of usernames or a single
// comma/whitespace separated string such as "alice, bob".
type UsernameList []string

func (u *UsernameList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*u = list
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*u = strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
	})
	return nil
}

// InviteRequest is the payload for POST /trips/:id/invitations.
type InviteRequest struct {
	Usernames UsernameList `json:"usernames" binding:"required"`
}

// InvitationLink is a shareable join token.
type InvitationLink struct {
	ID        int64      `json:"id"`
	TripID    int64      `json:"tripId"`
	Token     string     `json:"token"`
	CreatedBy int64      `json:"createdBy"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (l *InvitationLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

type CreateInvitationLinkRequest struct {
	ExpiresInHours int `json:"expiresInHours" binding:"omitempty,min=1,max=720"`
}

// InvitationEmail is queued for delivery when a user is invited.
type InvitationEmail struct {
	To          string
	InviteeName string
	InviterName string
	TripName    string
	Destination string
	TripURL     string
}
