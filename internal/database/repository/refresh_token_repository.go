package repository

import (
	"errors"
	"time"

	"github.com/openauthstack/user-auth-service/internal/models"

	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create creates a new refresh token
func (r *RefreshTokenRepository) Create(token *models.RefreshToken) error {
	return r.db.Create(token).Error
}

// GetValidByToken retrieves a refresh token by exact token string. Not found,
// revoked, and expired all collapse into ErrNotFound.
func (r *RefreshTokenRepository) GetValidByToken(token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	err := r.db.Where("token = ? AND is_revoked = ? AND expires_at > ?", token, false, time.Now()).
		First(&refreshToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &refreshToken, nil
}

// Revoke marks the matching token revoked. An already-revoked row still
// matches and gets a fresh revocation timestamp.
func (r *RefreshTokenRepository) Revoke(token string, reason string) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.RefreshToken{}).Where("token = ?", token).Updates(map[string]interface{}{
		"is_revoked":     true,
		"revoked_at":     now,
		"revoked_reason": reason,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RevokeAllForUser revokes every non-revoked token for a user and returns the
// number of rows changed. Already-revoked rows are left untouched.
func (r *RefreshTokenRepository) RevokeAllForUser(userID uint, reason string) (int64, error) {
	now := time.Now()
	res := r.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Updates(map[string]interface{}{
			"is_revoked":     true,
			"revoked_at":     now,
			"revoked_reason": reason,
		})
	return res.RowsAffected, res.Error
}

// CountActiveForUser counts usable refresh tokens for a user
func (r *RefreshTokenRepository) CountActiveForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ? AND expires_at > ?", userID, false, time.Now()).
		Count(&count).Error
	return count, err
}

// CleanupStale deletes expired and revoked tokens
func (r *RefreshTokenRepository) CleanupStale() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Where("is_revoked = ?", true).Delete(&models.RefreshToken{}).Error
	})
}
