package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"identity-service/internal/usecase/password"
	"identity-service/pkg/utils"
)

type PasswordHandler struct {
	service *password.Service
}

func NewPasswordHandler(service *password.Service) *PasswordHandler {
	return &PasswordHandler{service: service}
}

// RegisterRoutes mounts the reset-password flow. All three endpoints
// are unauthenticated; the code and reset token do the gating.
func (h *PasswordHandler) RegisterRoutes(router *gin.RouterGroup) {
	reset := router.Group("/reset-password")
	{
		reset.POST("/request-code", h.RequestCode)
		reset.POST("/validate-code", h.ValidateCode)
		reset.POST("/:uidb64/:token", h.SubmitNewPassword)
	}
}

func (h *PasswordHandler) RequestCode(c *gin.Context) {
	var req password.RequestCodeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)

	if err := h.service.RequestCode(c.Request.Context(), &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Success", nil)
}

func (h *PasswordHandler) ValidateCode(c *gin.Context) {
	var req password.ValidateCodeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)

	result, err := h.service.ValidateCode(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Code validated successfully", result)
}

func (h *PasswordHandler) SubmitNewPassword(c *gin.Context) {
	var req password.SubmitPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	uidb64 := c.Param("uidb64")
	resetToken := c.Param("token")

	if err := h.service.SubmitNewPassword(c.Request.Context(), uidb64, resetToken, &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Success", nil)
}
