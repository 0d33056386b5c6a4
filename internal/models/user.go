package models

import (
	"time"
)

// User represents a user account
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"type:varchar(255);not null;unique;index"`
	Username     string     `json:"username" gorm:"type:varchar(50);not null;unique;index"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	IsVerified   bool       `json:"is_verified" gorm:"not null;default:false"`
	IsAdmin      bool       `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt    *time.Time `json:"updated_at"`
	// Relationships
	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
