package handlers

import (
	"net/http"

	"near-expiry-api/middleware"
	"near-expiry-api/models"
	"near-expiry-api/pkg/resp"
	"near-expiry-api/services"

	"github.com/gin-gonic/gin"
)

type updateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// RestaurantOrders returns orders for the caller's restaurant, filtered by
// status and an optional startDate/endDate window
func (h *OrderHandler) RestaurantOrders(c *gin.Context) {
	rest, err := h.restaurants.ForOwner(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	orders, err := h.orders.ListForRestaurant(c.Request.Context(), rest.ID, services.RestaurantOrderQuery{
		Status:    c.Query("status"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	summary := make(map[models.OrderStatus]int, len(models.AllStatuses))
	for _, o := range orders {
		summary[o.Status]++
	}
	resp.OK(c, gin.H{
		"orders":  newOrderViews(orders),
		"summary": summary,
	})
}

// UpdateStatus drives an order through the state machine (owning restaurant only)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id", "Order")
	if !ok {
		return
	}
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	rest, err := h.restaurants.ForOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	order, err := h.orders.Transition(c.Request.Context(), id, rest.ID, req.Status, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Success(c, http.StatusOK, "Order status updated successfully", gin.H{"order": newOrderView(order)})
}
