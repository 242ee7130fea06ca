package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/NomadCrew/crewtrip-backend/config"
	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserEnsurer maps a verified identity to a local user.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, identity types.AuthIdentity) (*types.User, error)
}

// Claims are the token claims the API reads.
type Claims struct {
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	Username          string `json:"username"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token and returns the identity it carries.
func ParseToken(tokenString, secret string) (types.AuthIdentity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return types.AuthIdentity{}, err
	}
	if claims.Subject == "" {
		return types.AuthIdentity{}, errors.New("token has no subject")
	}
	username := claims.PreferredUsername
	if username == "" {
		username = claims.Username
	}
	return types.AuthIdentity{Subject: claims.Subject, Username: username, Email: claims.Email}, nil
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	// Browsers cannot set headers on WebSocket upgrades.
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("token")
	}
	return ""
}

// AuthMiddleware validates the Bearer token and resolves the local user.
func AuthMiddleware(cfg *config.ServerConfig, users UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		token := bearerToken(c)
		if token == "" {
			_ = c.Error(apperrors.Unauthorized("missing_token", "Authorization required"))
			c.Abort()
			return
		}

		identity, err := ParseToken(token, cfg.JwtSecretKey)
		if err != nil {
			code, msg := "invalid_token", "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				code, msg = "token_expired", "Your session has expired"
			}
			log.Debugw("Token rejected", "path", c.Request.URL.Path, "token", logger.MaskJWT(token), "error", err)
			_ = c.Error(apperrors.Unauthorized(code, msg))
			c.Abort()
			return
		}

		user, err := users.EnsureUser(c.Request.Context(), identity)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(string(UserIDKey), user.ID)
		c.Set(string(UserKey), user)
		c.Next()
	}
}
