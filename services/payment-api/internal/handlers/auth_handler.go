package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/services/payment-api/internal/services"
	"github.com/tripfund/payment-backend/services/payment-api/internal/views"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger     *zap.Logger
	service    services.AuthService
	loginGuard gin.HandlerFunc
}

// NewAuthHandler wires the auth routes. loginGuard runs before /login, typically a rate limiter.
func NewAuthHandler(logger *zap.Logger, svc services.AuthService, loginGuard gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{logger: logger, service: svc, loginGuard: loginGuard}
}

func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/signup", h.Signup)
	if h.loginGuard != nil {
		r.POST("/login", h.loginGuard, h.Login)
	} else {
		r.POST("/login", h.Login)
	}
	r.PUT("/update-profile", h.UpdateProfile)
}

// Signup godoc
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body views.CredentialsRequest true "Credentials"
// @Success 201 {object} pkg.APIResponse
// @Failure 400 {object} pkg.ErrorResponse
// @Failure 409 {object} pkg.ErrorResponse
// @Router /api/v1/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	traceID, ok := traceID(c, h.logger)
	if !ok {
		return
	}
	var req views.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, traceID, err)
		return
	}
	user, err := h.service.Signup(c.Request.Context(), traceID, req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusCreated, pkg.APIResponse{
		TraceID: traceID,
		Data: map[string]interface{}{
			"userId":  user.ID.String(),
			"message": "user registered successfully",
		},
	})
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body views.CredentialsRequest true "Credentials"
// @Success 200 {object} pkg.APIResponse
// @Failure 401 {object} pkg.ErrorResponse
// @Failure 429 {object} pkg.ErrorResponse
// @Router /api/v1/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	traceID, ok := traceID(c, h.logger)
	if !ok {
		return
	}
	var req views.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, traceID, err)
		return
	}
	user, err := h.service.Login(c.Request.Context(), traceID, req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, pkg.APIResponse{
		TraceID: traceID,
		Data: map[string]interface{}{
			"userId":     user.ID.String(),
			"email":      user.Email,
			"profilePic": user.ProfilePic,
			"message":    "login successful",
		},
	})
}

// UpdateProfile godoc
// @Summary Update password and profile picture
// @Tags auth
// @Accept json
// @Produce json
// @Param request body views.UpdateProfileRequest true "Profile"
// @Success 200 {object} pkg.APIResponse
// @Failure 404 {object} pkg.ErrorResponse
// @Router /api/v1/update-profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	traceID, ok := traceID(c, h.logger)
	if !ok {
		return
	}
	var req views.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, traceID, err)
		return
	}
	if err := h.service.UpdateProfile(c.Request.Context(), traceID, req.Email, req.Password, req.ProfilePic); err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, pkg.APIResponse{
		TraceID: traceID,
		Data:    map[string]interface{}{"message": "profile updated successfully"},
	})
}
