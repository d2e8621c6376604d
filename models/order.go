package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled}

// Valid reports whether s is one of the known statuses
func (s OrderStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type OrderType string

const (
	OrderPickup   OrderType = "pickup"
	OrderDelivery OrderType = "delivery"
)

func (t OrderType) Valid() bool {
	return t == OrderPickup || t == OrderDelivery
}

type Order struct {
	ID               uuid.UUID            `json:"id" gorm:"type:varchar(36);primaryKey"`
	ClientID         uuid.UUID            `json:"clientId" gorm:"type:varchar(36);index;not null"`
	Client           *User                `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	RestaurantID     uuid.UUID            `json:"restaurantId" gorm:"type:varchar(36);index;not null"`
	Restaurant       *Restaurant          `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	TotalAmount      decimal.Decimal      `json:"totalAmount" gorm:"type:decimal(10,2);not null"`
	CommissionAmount decimal.Decimal      `json:"commissionAmount" gorm:"type:decimal(10,2);not null"`
	Status           OrderStatus          `json:"status" gorm:"not null;index"`
	OrderType        OrderType            `json:"orderType" gorm:"not null"`
	DeliveryAddress  *string              `json:"deliveryAddress"`
	DeliveryPhone    *string              `json:"deliveryPhone"`
	Items            []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory    []OrderStatusHistory `json:"statusHistory,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	o.ID = newID(o.ID)
	return nil
}

// OrderItem is immutable once written; PriceAtOrder is the product price
// captured when the order was placed.
type OrderItem struct {
	ID           uuid.UUID       `json:"id" gorm:"type:varchar(36);primaryKey"`
	OrderID      uuid.UUID       `json:"orderId" gorm:"type:varchar(36);index;not null"`
	ProductID    uuid.UUID       `json:"productId" gorm:"type:varchar(36);index;not null"`
	Product      *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	PriceAtOrder decimal.Decimal `json:"priceAtOrder" gorm:"type:decimal(10,2);not null"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	i.ID = newID(i.ID)
	return nil
}

// Subtotal is price at order times quantity
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtOrder.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderStatusHistory tracks every status change. An empty FromStatus marks
// the row written when the order was created.
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uuid.UUID   `json:"orderId" gorm:"type:varchar(36);index;not null"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  uuid.UUID   `json:"changedBy" gorm:"type:varchar(36)"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}
