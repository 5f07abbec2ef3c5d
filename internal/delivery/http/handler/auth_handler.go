package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"identity-service/internal/usecase/auth"
	"identity-service/pkg/utils"
)

type AuthHandler struct {
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes mounts the unauthenticated auth endpoints.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/signup", h.SignUp)
	router.POST("/signin", h.SignIn)
	router.POST("/refresh", h.Refresh)
}

// RegisterProtectedRoutes mounts endpoints that require a valid bearer
// access token.
func (h *AuthHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.POST("/signout", h.SignOut)
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req auth.SignUpRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The password is deliberately left untouched. Everything else is
	// sanitized.
	req.Email = utils.SanitizeEmail(req.Email)
	req.FullName = utils.SanitizeString(req.FullName)
	if req.Phone != nil {
		sanitized := utils.SanitizePhone(*req.Phone)
		req.Phone = &sanitized
	}

	userResponse, err := h.service.SignUp(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "User registered successfully", userResponse)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req auth.SignInRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)

	tokens, err := h.service.SignIn(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Signed in successfully", tokens)
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	var req auth.SignOutRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.SignOut(c.Request.Context(), &req); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Token refreshed successfully", result)
}
