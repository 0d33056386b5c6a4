package models

import (
	"time"
)

// RefreshToken represents a long-lived opaque credential stored per device.
// A token is usable only while is_revoked is false and expires_at is in the
// future; revocation is terminal.
type RefreshToken struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	UserID        uint       `json:"user_id" gorm:"not null;index;index:idx_token_user,priority:2;index:idx_user_active,priority:1"`
	Token         string     `json:"token" gorm:"type:varchar(255);not null;unique;index;index:idx_token_user,priority:1"`
	ExpiresAt     time.Time  `json:"expires_at" gorm:"not null;index:idx_user_active,priority:2"`
	CreatedAt     time.Time  `json:"created_at" gorm:"not null"`
	IsRevoked     bool       `json:"is_revoked" gorm:"not null;default:false"`
	RevokedAt     *time.Time `json:"revoked_at"`
	RevokedReason *string    `json:"revoked_reason" gorm:"type:varchar(255)"`
	UserAgent     *string    `json:"user_agent" gorm:"type:varchar(512)"`
	IPAddress     *string    `json:"ip_address" gorm:"type:varchar(45)"`
	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the RefreshToken model
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
