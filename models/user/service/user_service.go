package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/pkg/paymentlinks"
	"github.com/NomadCrew/crewtrip-backend/pkg/sanitize"
	"github.com/NomadCrew/crewtrip-backend/types"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 30
)

var (
	usernameInvalid = regexp.MustCompile(`[^a-z0-9_.]+`)
	venmoHandle     = regexp.MustCompile(`^[A-Za-z0-9_-]{5,30}$`)
)

// UserService manages user operations
type UserService struct {
	users store.UserStore
}

var _ UserServiceInterface = (*UserService)(nil)

func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

// maskEmail masks an email address for logging (e.g., "user@example.com" -> "u***@e***.com")
func maskEmail(email string) string {
	if email == "" {
		return ""
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		if len(email) <= 3 {
			return "***"
		}
		return email[:1] + "***"
	}
	if len(local) > 1 {
		local = local[:1] + "***"
	}
	if name, tld, ok := strings.Cut(domain, "."); ok && len(name) > 1 {
		domain = name[:1] + "***." + tld
	}
	return local + "@" + domain
}

// usernameFor picks a username when the token carries none: the local part
// of the email, or a stable fallback derived from the subject.
func usernameFor(identity types.AuthIdentity) string {
	candidate := strings.ToLower(strings.TrimSpace(identity.Username))
	if candidate == "" {
		local, _, _ := strings.Cut(identity.Email, "@")
		candidate = strings.ToLower(local)
	}
	candidate = usernameInvalid.ReplaceAllString(candidate, "")
	if len(candidate) > maxUsernameLength {
		candidate = candidate[:maxUsernameLength]
	}
	if len(candidate) < minUsernameLength {
		candidate = "user_" + subjectSuffix(identity.Subject, 8)
	}
	return candidate
}

func subjectSuffix(subject string, n int) string {
	clean := usernameInvalid.ReplaceAllString(strings.ToLower(subject), "")
	if len(clean) > n {
		clean = clean[len(clean)-n:]
	}
	if clean == "" {
		clean = "0000"
	}
	return clean
}

func (s *UserService) EnsureUser(ctx context.Context, identity types.AuthIdentity) (*types.User, error) {
	log := logger.GetLogger()
	if identity.Subject == "" {
		return nil, apperrors.AuthenticationFailed("token has no subject")
	}

	identity.Username = usernameFor(identity)
	user, err := s.users.EnsureUser(ctx, identity)
	if errors.Is(err, store.ErrConflict) {
		// Username taken by someone else; disambiguate with the subject.
		base := identity.Username
		if len(base) > maxUsernameLength-5 {
			base = base[:maxUsernameLength-5]
		}
		identity.Username = fmt.Sprintf("%s_%s", base, subjectSuffix(identity.Subject, 4))
		user, err = s.users.EnsureUser(ctx, identity)
	}
	if err != nil {
		log.Errorw("Failed to ensure user", "subject", identity.Subject, "email", maskEmail(identity.Email), "error", err)
		return nil, store.ToAppError(err, "User", identity.Subject)
	}
	if user.IsLegacyRemoved {
		return nil, apperrors.Unauthorized("account_closed", "This account has been closed")
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*types.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, store.ToAppError(err, "User", userID)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, update types.UserProfileUpdate) (*types.User, error) {
	if update.DisplayName != nil {
		name := sanitize.Text(*update.DisplayName)
		update.DisplayName = &name
	}
	if update.VenmoHandle != nil {
		handle := paymentlinks.NormalizeVenmoHandle(*update.VenmoHandle)
		if handle != "" && !venmoHandle.MatchString(handle) {
			return nil, apperrors.ValidationFailed("invalid Venmo handle", "use 5-30 letters, digits, dashes or underscores")
		}
		update.VenmoHandle = &handle
	}
	for field, value := range map[string]*string{"email": update.Email, "PayPal email": update.PaypalEmail} {
		if value == nil {
			continue
		}
		*value = strings.ToLower(strings.TrimSpace(*value))
		if *value == "" {
			continue
		}
		if _, err := mail.ParseAddress(*value); err != nil {
			return nil, apperrors.ValidationFailed("invalid "+field, *value)
		}
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, store.ToAppError(err, "User", userID)
	}
	logger.GetLogger().Infow("Profile updated", "userId", userID, "hasVenmo", user.VenmoHandle != "", "hasPaypal", user.PaypalEmail != "")
	return user, nil
}

func (s *UserService) CloseAccount(ctx context.Context, userID int64) error {
	if err := s.users.MarkLegacyRemoved(ctx, userID); err != nil {
		return store.ToAppError(err, "User", userID)
	}
	logger.GetLogger().Infow("Account closed", "userId", userID)
	return nil
}
