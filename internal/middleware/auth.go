package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"identity-service/internal/token"
	"identity-service/internal/usecase/auth"
	apperrors "identity-service/pkg/errors"
	"identity-service/pkg/utils"
)

const (
	UserKey   = "user"
	ClaimsKey = "claims"
)

// AuthMiddleware authenticates the bearer access token and loads the
// account it references into the request context.
func AuthMiddleware(engine *token.Engine, authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := engine.Verify(c.Request.Context(), parts[1], token.TypeAccess)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, apperrors.ErrInvalidToken.Error())
			c.Abort()
			return
		}

		u, err := authService.ResolveUser(c.Request.Context(), claims)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				utils.ErrorResponse(c, http.StatusUnauthorized, apperrors.ErrUserNotFound.Error())
			case errors.Is(err, apperrors.ErrUserInactive):
				utils.ErrorResponse(c, http.StatusUnauthorized, apperrors.ErrUserInactive.Error())
			default:
				utils.ErrorResponse(c, http.StatusUnauthorized, apperrors.ErrInvalidToken.Error())
			}
			c.Abort()
			return
		}

		c.Set(UserKey, u)
		c.Set(ClaimsKey, claims)

		c.Next()
	}
}

// StaffOnly rejects requests from accounts without the staff flag. Must
// run after AuthMiddleware.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsStaff {
			utils.ErrorResponse(c, http.StatusForbidden, "Staff access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
