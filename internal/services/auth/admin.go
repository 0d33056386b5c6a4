package auth

import (
	"errors"
	"fmt"

	"github.com/openauthstack/user-auth-service/internal/config"
	"github.com/openauthstack/user-auth-service/internal/database/repository"
	"github.com/openauthstack/user-auth-service/internal/models"
	"github.com/openauthstack/user-auth-service/internal/utils"

	"github.com/sirupsen/logrus"
)

// EnsureAdminUser creates the bootstrap admin account when ADMIN_USERNAME,
// ADMIN_EMAIL, and ADMIN_PASSWORD are all set and no such user exists yet
func (s *AuthService) EnsureAdminUser(settings *config.Settings) error {
	if settings.AdminUsername == "" || settings.AdminEmail == "" || settings.AdminPassword == "" {
		return nil
	}

	_, err := s.users.FindConflicting(settings.AdminEmail, settings.AdminUsername)
	if err == nil {
		return nil // already present
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check admin user: %w", err)
	}

	hashed, err := s.HashPassword(settings.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        settings.AdminEmail,
		Username:     settings.AdminUsername,
		PasswordHash: hashed,
		IsActive:     true,
		IsVerified:   true,
		IsAdmin:      true,
	}
	if err := s.users.Create(admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logrus.Infof("Bootstrap admin user %q created", admin.Username)
	return nil
}

// SetUserActive sets the active status of a user
func (s *AuthService) SetUserActive(userID uint, isActive bool) error {
	user, err := s.users.GetByID(userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	user.IsActive = isActive
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if !isActive {
		// A disabled account should not keep refreshing sessions
		if _, err := s.RevokeAllRefreshTokens(userID, "account_disabled"); err != nil {
			return err
		}
	}
	return nil
}

// ListUsers returns users with pagination and search
func (s *AuthService) ListUsers(page, pageSize int, search string) ([]models.User, int64, error) {
	page, pageSize = utils.ValidateAndNormalizePagination(page, pageSize)
	users, total, err := s.users.List(page, pageSize, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}
