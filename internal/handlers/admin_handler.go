package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/openauthstack/user-auth-service/internal/config"
	"github.com/openauthstack/user-auth-service/internal/models"
	"github.com/openauthstack/user-auth-service/internal/services/auth"
	"github.com/openauthstack/user-auth-service/internal/services/excel"
	"github.com/openauthstack/user-auth-service/internal/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	authService  *auth.AuthService
	excelService *excel.Service
	settings     *config.Settings
}

func NewAdminHandler(authService *auth.AuthService, excelService *excel.Service, settings *config.Settings) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		excelService: excelService,
		settings:     settings,
	}
}

func (h *AdminHandler) requireAdmin(c *gin.Context) bool {
	user := c.MustGet("user").(*models.User)
	if !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin privileges required"})
		return false
	}
	return true
}

// ListUsers godoc
// @Summary List users (admin only)
// @Description Paginated, searchable listing of all user accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param search query string false "Username or email substring"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	search := c.Query("search")

	page, pageSize = utils.ValidateAndNormalizePagination(page, pageSize)

	users, total, err := h.authService.ListUsers(page, pageSize, search)
	if err != nil {
		writeServiceError(c, err, h.settings.Debug)
		return
	}

	responses := make([]models.UserResponse, len(users))
	for i := range users {
		responses[i] = models.NewUserResponse(&users[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      responses,
		"pagination": utils.CalculatePaginationInfo(total, page, pageSize),
	})
}

// ExportUsers godoc
// @Summary Export users to xlsx (admin only)
// @Description Download the full user table as an Excel workbook
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /admin/users/export [get]
func (h *AdminHandler) ExportUsers(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	data, filename, err := h.excelService.ExportUsers()
	if err != nil {
		writeServiceError(c, err, h.settings.Debug)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// SetUserActive godoc
// @Summary Activate or deactivate a user (admin only)
// @Description Set a user's active flag. Deactivating also revokes the user's refresh tokens.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body models.SetUserActiveRequest true "Active status"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/users/{id}/active [put]
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req models.SetUserActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"detail":  utils.BindingErrors(err),
		})
		return
	}

	if err := h.authService.SetUserActive(uint(id), *req.IsActive); err != nil {
		writeServiceError(c, err, h.settings.Debug)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "User status updated"})
}
