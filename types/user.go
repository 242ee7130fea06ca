package types

import (
	"fmt"
	"time"
)

// User is a registered traveller. Users are never hard-deleted; closing an
// account sets IsLegacyRemoved so historical expenses keep their references.
type User struct {
	ID              int64     `json:"id"`
	AuthSubject     string    `json:"-"`
	Username        string    `json:"username"`
	DisplayName     string    `json:"displayName"`
	Email           string    `json:"email,omitempty"`
	VenmoHandle     string    `json:"venmoHandle,omitempty"`
	PaypalEmail     string    `json:"paypalEmail,omitempty"`
	IsLegacyRemoved bool      `json:"isLegacyRemoved"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Name returns the best human-readable label for the user.
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("User %d", u.ID)
}

// HasPaymentHandle reports whether any provider link can be generated for the user.
func (u *User) HasPaymentHandle() bool {
	return u != nil && (u.VenmoHandle != "" || u.PaypalEmail != "")
}

// UserProfileUpdate carries partial profile edits. Nil fields are left unchanged;
// empty strings clear the value.
type UserProfileUpdate struct {
	DisplayName *string `json:"displayName,omitempty" binding:"omitempty,max=80"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	VenmoHandle *string `json:"venmoHandle,omitempty" binding:"omitempty,max=30"`
	PaypalEmail *string `json:"paypalEmail,omitempty" binding:"omitempty,email"`
}

// AuthIdentity is what the auth middleware extracts from a verified token.
type AuthIdentity struct {
	Subject  string
	Username string
	Email    string
}
