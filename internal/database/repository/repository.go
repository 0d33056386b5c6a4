package repository

import (
	"errors"
	"strings"

	"github.com/openauthstack/user-auth-service/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// UserStore is the capability set the auth service needs over user records
type UserStore interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	// GetByIdentifier looks a user up by email or username, interchangeably
	GetByIdentifier(identifier string) (*models.User, error)
	// FindConflicting returns an existing user holding the given email or username
	FindConflicting(email, username string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(page, pageSize int, search string) ([]models.User, int64, error)
}

// RefreshTokenStore is the capability set over refresh token records
type RefreshTokenStore interface {
	Create(token *models.RefreshToken) error
	// GetValidByToken returns the token row only if it exists, is not revoked,
	// and has not expired
	GetValidByToken(token string) (*models.RefreshToken, error)
	// Revoke marks the matching row revoked, re-stamping even when it was
	// already revoked. Reports whether a row matched.
	Revoke(token string, reason string) (bool, error)
	// RevokeAllForUser revokes every non-revoked token of the user and returns
	// the number of rows actually changed
	RevokeAllForUser(userID uint, reason string) (int64, error)
	CountActiveForUser(userID uint) (int64, error)
	// CleanupStale deletes expired and revoked rows
	CleanupStale() error
}

// IsUniqueViolation reports whether err is a unique-constraint rejection from
// the store. Used to translate insert races into conflict errors.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
