package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Restaurant struct {
	ID          uuid.UUID `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID      uuid.UUID `json:"userId" gorm:"type:varchar(36);uniqueIndex;not null"`
	Owner       *User     `json:"owner,omitempty" gorm:"foreignKey:UserID"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Address     string    `json:"address" gorm:"not null"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Phone       string    `json:"phone" gorm:"not null"`
	LogoURL     string    `json:"logoUrl"`
	IsOpen      bool      `json:"isOpen" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	r.ID = newID(r.ID)
	return nil
}
