package middleware

import (
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
)

// contextKey defines a type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey holds the authenticated user's ID (int64).
	UserIDKey contextKey = "userID"
	// UserKey holds the authenticated *types.User.
	UserKey contextKey = "user"
)

// GetUserID returns the caller set by AuthMiddleware.
func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(string(UserIDKey))
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func GetUser(c *gin.Context) *types.User {
	v, ok := c.Get(string(UserKey))
	if !ok {
		return nil
	}
	u, _ := v.(*types.User)
	return u
}
