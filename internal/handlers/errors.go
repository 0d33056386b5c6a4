package handlers

import (
	"errors"
	"net/http"

	"github.com/openauthstack/user-auth-service/internal/services/auth"
	"github.com/openauthstack/user-auth-service/internal/utils"

	"github.com/gin-gonic/gin"
)

// writeServiceError maps auth service outcomes to HTTP responses. Anything
// outside the known taxonomy is a store failure: generic 500, real message
// only in debug mode, and a Sentry capture.
func writeServiceError(c *gin.Context, err error, debug bool) {
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered", "field": "email"})
	case errors.Is(err, auth.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken", "field": "username"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
	case errors.Is(err, auth.ErrInactiveAccount):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is inactive. Please contact support."})
	case errors.Is(err, auth.ErrTokenNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Refresh token not found"})
	case errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, auth.ErrPasswordIncorrect):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
	default:
		utils.CaptureError(err)
		body := gin.H{"error": "Internal server error"}
		if debug {
			body["detail"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
