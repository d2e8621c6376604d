package handlers

import (
	"net/http"

	"near-expiry-api/middleware"
	"near-expiry-api/pkg/resp"
	"near-expiry-api/services"

	"github.com/gin-gonic/gin"
)

type RestaurantHandler struct {
	restaurants *services.RestaurantService
}

func NewRestaurantHandler(restaurants *services.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants}
}

// UpsertProfile creates or updates the caller's restaurant (restaurant only)
func (h *RestaurantHandler) UpsertProfile(c *gin.Context) {
	var req services.RestaurantProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	rest, created, err := h.restaurants.UpsertProfile(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "Restaurant profile updated successfully"
	if created {
		msg = "Restaurant profile created successfully"
	}
	resp.Success(c, http.StatusOK, msg, gin.H{"restaurant": rest})
}

// MyProfile returns the restaurant owned by the caller
func (h *RestaurantHandler) MyProfile(c *gin.Context) {
	rest, err := h.restaurants.ForOwner(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"restaurant": rest})
}

func (h *RestaurantHandler) ToggleOpen(c *gin.Context) {
	rest, err := h.restaurants.ToggleOpen(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "Restaurant is now closed"
	if rest.IsOpen {
		msg = "Restaurant is now open"
	}
	resp.Success(c, http.StatusOK, msg, gin.H{"restaurant": rest})
}

// Get returns a single restaurant (public)
func (h *RestaurantHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "Restaurant")
	if !ok {
		return
	}
	rest, err := h.restaurants.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"restaurant": rest})
}

// List returns every restaurant with its coordinates for the map (public)
func (h *RestaurantHandler) List(c *gin.Context) {
	list, err := h.restaurants.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"restaurants": list})
}
