package handlers

import (
	"near-expiry-api/middleware"
	"near-expiry-api/pkg/resp"
	"near-expiry-api/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders      *services.OrderService
	restaurants *services.RestaurantService
}

func NewOrderHandler(orders *services.OrderService, restaurants *services.RestaurantService) *OrderHandler {
	return &OrderHandler{orders: orders, restaurants: restaurants}
}

// Create places an order (client only)
func (h *OrderHandler) Create(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	order, err := h.orders.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Created(c, "Order created successfully", gin.H{"order": newOrderView(order)})
}

// MyOrders returns the caller's orders, newest first
func (h *OrderHandler) MyOrders(c *gin.Context) {
	orders, err := h.orders.ListForClient(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"orders": newOrderViews(orders)})
}

// Get returns one of the caller's orders with its status history
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "Order")
	if !ok {
		return
	}
	order, err := h.orders.GetForClient(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"order": newOrderView(order)})
}
