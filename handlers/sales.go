package handlers

import (
	"near-expiry-api/middleware"
	"near-expiry-api/pkg/resp"
	"near-expiry-api/services"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	sales       *services.SalesService
	restaurants *services.RestaurantService
}

func NewSalesHandler(sales *services.SalesService, restaurants *services.RestaurantService) *SalesHandler {
	return &SalesHandler{sales: sales, restaurants: restaurants}
}

// Restaurant reports completed-order sales for the caller's restaurant
func (h *SalesHandler) Restaurant(c *gin.Context) {
	rest, err := h.restaurants.ForOwner(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := h.sales.Report(c.Request.Context(), rest.ID, services.SalesPeriod(c.Query("period")))
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, report)
}
