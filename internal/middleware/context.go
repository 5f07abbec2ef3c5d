package middleware

import (
	"github.com/gin-gonic/gin"

	"identity-service/internal/domain/user"
)

// CurrentUser returns the authenticated account stored by
// AuthMiddleware, or nil when the request is unauthenticated.
func CurrentUser(c *gin.Context) *user.User {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil
	}

	u, ok := value.(*user.User)
	if !ok {
		return nil
	}

	return u
}
