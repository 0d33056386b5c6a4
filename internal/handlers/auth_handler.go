package handlers

import (
	"fmt"
	"net/http"

	"github.com/openauthstack/user-auth-service/internal/config"
	"github.com/openauthstack/user-auth-service/internal/models"
	"github.com/openauthstack/user-auth-service/internal/services/auth"
	"github.com/openauthstack/user-auth-service/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *auth.AuthService
	settings    *config.Settings
}

func NewAuthHandler(authService *auth.AuthService, settings *config.Settings) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		settings:    settings,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Create a new user account with email, username, and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} models.UserResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationError(c, err)
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewUserResponse(user))
}

// LoginForm godoc
// @Summary Login user (OAuth2 compatible)
// @Description Authenticate with the OAuth2 password flow (used by the Swagger UI Authorize button). Returns an access token only.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username or email"
// @Param password formData string true "Password"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /auth/login [post]
func (h *AuthHandler) LoginForm(c *gin.Context) {
	var req models.LoginFormRequest
	if err := c.ShouldBind(&req); err != nil {
		h.validationError(c, err)
		return
	}

	resp, err := h.authService.Login(req.Username, req.Password, false, "", "")
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// LoginJSON godoc
// @Summary Login user (JSON)
// @Description Authenticate and return an access token, plus a refresh token when remember_me is true
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /auth/login/json [post]
func (h *AuthHandler) LoginJSON(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationError(c, err)
		return
	}

	userAgent := c.GetHeader("User-Agent")
	ipAddress := c.ClientIP()

	resp, err := h.authService.Login(req.Username, req.Password, req.RememberMe, userAgent, ipAddress)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Refresh access token
// @Description Exchange a valid refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshTokenRequest true "Refresh token request"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationError(c, err)
		return
	}

	resp, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Logout user
// @Description Revoke a refresh token. Issued access tokens stay valid until expiry.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshTokenRequest true "Refresh token to revoke"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationError(c, err)
		return
	}

	if err := h.authService.Logout(req.RefreshToken); err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Successfully logged out"})
}

// LogoutAll godoc
// @Summary Logout from all devices
// @Description Revoke all refresh tokens for the current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} map[string]interface{}
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	count, err := h.authService.LogoutAll(userID)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{
		Message: fmt.Sprintf("Successfully logged out from %d device(s)", count),
	})
}

// Me godoc
// @Summary Get current user
// @Description Return the authenticated caller's profile and active session count
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MeResponse
// @Failure 401 {object} map[string]interface{}
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	sessions, err := h.authService.CountActiveSessions(user.ID)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MeResponse{
		UserResponse:   models.NewUserResponse(user),
		ActiveSessions: sessions,
	})
}

// ChangePassword godoc
// @Summary Change password
// @Description Verify the current password, set the new one, and revoke all refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ChangePasswordRequest true "Change password request"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/change-password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationError(c, err)
		return
	}

	if err := h.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{
		Message: "Password changed successfully. Please login again.",
	})
}

// DeleteAccount godoc
// @Summary Delete user account
// @Description Revoke all tokens and permanently delete the caller's account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} map[string]interface{}
// @Router /auth/delete-account [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	if err := h.authService.DeleteAccount(userID); err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Account deleted successfully"})
}

func (h *AuthHandler) validationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "Validation error",
		"detail":  utils.BindingErrors(err),
	})
}

func (h *AuthHandler) serviceError(c *gin.Context, err error) {
	writeServiceError(c, err, h.settings.Debug)
}
