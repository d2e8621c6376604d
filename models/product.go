package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product is a near-expiry listing. Quantity is the remaining stock and
// never goes below zero; deleting a product only clears IsActive.
type Product struct {
	ID           uuid.UUID       `json:"id" gorm:"type:varchar(36);primaryKey"`
	RestaurantID uuid.UUID       `json:"restaurantId" gorm:"type:varchar(36);index;not null"`
	Restaurant   *Restaurant     `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	CategoryID   uint            `json:"categoryId" gorm:"not null"`
	Category     *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Name         string          `json:"name" gorm:"not null"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"imageUrl"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	ExpiryDate   time.Time       `json:"expiryDate" gorm:"not null"`
	IsActive     bool            `json:"isActive" gorm:"not null;index"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	p.ID = newID(p.ID)
	return nil
}
