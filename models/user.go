package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleClient     UserRole = "client"
	RoleRestaurant UserRole = "restaurant"
	RoleAdmin      UserRole = "admin"
)

// Valid reports whether r is a known role
func (r UserRole) Valid() bool {
	switch r {
	case RoleClient, RoleRestaurant, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID            uuid.UUID   `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email         string      `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string      `json:"-" gorm:"not null"`
	FullName      string      `json:"fullName"`
	Role          UserRole    `json:"role" gorm:"not null;index"`
	IsActive      bool        `json:"isActive" gorm:"not null"`
	EmailVerified bool        `json:"emailVerified" gorm:"not null"`
	Restaurant    *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.ID = newID(u.ID)
	return nil
}
