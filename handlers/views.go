package handlers

import (
	"time"

	"near-expiry-api/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderItemView struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"priceAtOrder"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// orderView flattens an order with its restaurant, client and product
// names the way the dashboards consume it.
type orderView struct {
	ID                uuid.UUID                   `json:"id"`
	ClientID          uuid.UUID                   `json:"clientId"`
	ClientName        string                      `json:"clientName,omitempty"`
	ClientEmail       string                      `json:"clientEmail,omitempty"`
	RestaurantID      uuid.UUID                   `json:"restaurantId"`
	RestaurantName    string                      `json:"restaurantName,omitempty"`
	RestaurantAddress string                      `json:"restaurantAddress,omitempty"`
	RestaurantPhone   string                      `json:"restaurantPhone,omitempty"`
	TotalAmount       decimal.Decimal             `json:"totalAmount"`
	CommissionAmount  decimal.Decimal             `json:"commissionAmount"`
	Status            models.OrderStatus          `json:"status"`
	OrderType         models.OrderType            `json:"orderType"`
	DeliveryAddress   *string                     `json:"deliveryAddress"`
	DeliveryPhone     *string                     `json:"deliveryPhone"`
	Items             []orderItemView             `json:"items"`
	StatusHistory     []models.OrderStatusHistory `json:"statusHistory,omitempty"`
	CreatedAt         time.Time                   `json:"createdAt"`
	UpdatedAt         time.Time                   `json:"updatedAt"`
}

func newOrderView(o *models.Order) orderView {
	v := orderView{
		ID:               o.ID,
		ClientID:         o.ClientID,
		RestaurantID:     o.RestaurantID,
		TotalAmount:      o.TotalAmount,
		CommissionAmount: o.CommissionAmount,
		Status:           o.Status,
		OrderType:        o.OrderType,
		DeliveryAddress:  o.DeliveryAddress,
		DeliveryPhone:    o.DeliveryPhone,
		Items:            make([]orderItemView, len(o.Items)),
		StatusHistory:    o.StatusHistory,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	if o.Client != nil {
		v.ClientName = o.Client.FullName
		v.ClientEmail = o.Client.Email
	}
	if o.Restaurant != nil {
		v.RestaurantName = o.Restaurant.Name
		v.RestaurantAddress = o.Restaurant.Address
		v.RestaurantPhone = o.Restaurant.Phone
	}
	for i, it := range o.Items {
		iv := orderItemView{
			ID:           it.ID,
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			PriceAtOrder: it.PriceAtOrder,
			Subtotal:     it.Subtotal(),
		}
		if it.Product != nil {
			iv.ProductName = it.Product.Name
			iv.ProductImage = it.Product.ImageURL
		}
		v.Items[i] = iv
	}
	return v
}

func newOrderViews(orders []models.Order) []orderView {
	out := make([]orderView, len(orders))
	for i := range orders {
		out[i] = newOrderView(&orders[i])
	}
	return out
}
