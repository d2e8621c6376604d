package models

import (
	"time"

	"github.com/google/uuid"
)

type EmailVerificationToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"type:varchar(36);index;not null"`
	OTPCode   string    `gorm:"size:6;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// PasswordResetToken stores only the SHA-256 hex digest of the emailed token
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"type:varchar(36);index;not null"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}
