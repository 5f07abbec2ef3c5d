package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"identity-service/internal/logger"
	"identity-service/internal/middleware"
	apperrors "identity-service/pkg/errors"
	"identity-service/pkg/utils"
)

// respondWithError translates use-case failures into status codes.
// Token failures all surface the same generic message; the reason a
// token was rejected is not the caller's business.
func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrEmailTaken):
		utils.FieldErrorResponse(c, http.StatusBadRequest, "Invalid input", map[string]string{
			"email": apperrors.ErrEmailTaken.Error(),
		})
	case errors.Is(err, apperrors.ErrWrongCredentials):
		utils.ErrorResponse(c, http.StatusUnauthorized, apperrors.ErrWrongCredentials.Error())
	case errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenBlacklisted),
		errors.Is(err, apperrors.ErrTokenMalformed),
		errors.Is(err, apperrors.ErrNoUserClaim):
		utils.ErrorResponse(c, http.StatusUnauthorized, apperrors.ErrInvalidToken.Error())
	case errors.Is(err, apperrors.ErrCodeInvalidOrExpired):
		utils.ErrorResponse(c, http.StatusForbidden, apperrors.ErrCodeInvalidOrExpired.Error())
	case errors.Is(err, apperrors.ErrUserNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, apperrors.ErrUserNotFound.Error())
	case errors.Is(err, apperrors.ErrResetRequestNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, apperrors.ErrResetRequestNotFound.Error())
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
			return
		}

		logger.Error("Internal server error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
