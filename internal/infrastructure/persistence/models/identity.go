package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/modelmart/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	ID             uuid.UUID           `gorm:"type:uuid;primary_key"`
	Email          string              `gorm:"type:varchar(320);not null;uniqueIndex:idx_users_email"`
	PasswordHash   string              `gorm:"type:varchar(100);not null"`
	DisplayName    string              `gorm:"type:varchar(200);not null"`
	AvatarURL      string              `gorm:"type:varchar(500)"`
	Verified       bool                `gorm:"not null"`
	Status         identity.UserStatus `gorm:"type:varchar(20);not null;index"`
	LastLoginAt    *time.Time
	LastLoginIP    string `gorm:"type:varchar(45)"`
	FailedAttempts int    `gorm:"not null"`
	LockedUntil    *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		ID:             m.ID,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		DisplayName:    m.DisplayName,
		AvatarURL:      m.AvatarURL,
		Verified:       m.Verified,
		Status:         m.Status,
		LastLoginAt:    m.LastLoginAt,
		LastLoginIP:    m.LastLoginIP,
		FailedAttempts: m.FailedAttempts,
		LockedUntil:    m.LockedUntil,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.ID = u.ID
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.AvatarURL = u.AvatarURL
	m.Verified = u.Verified
	m.Status = u.Status
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
	m.CreatedAt = u.CreatedAt
	m.UpdatedAt = u.UpdatedAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
