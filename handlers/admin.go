package handlers

import (
	"net/http"

	"near-expiry-api/middleware"
	"near-expiry-api/pkg/resp"
	"near-expiry-api/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type commissionRequest struct {
	CommissionPercentage *decimal.Decimal `json:"commissionPercentage"`
}

// Users lists accounts with optional role, is_active and search filters
func (h *AdminHandler) Users(c *gin.Context) {
	q := services.UserListQuery{
		Role:   c.Query("role"),
		Search: c.Query("search"),
	}
	var ok bool
	if q.IsActive, ok = queryBool(c, "is_active"); !ok {
		return
	}
	if q.Page, ok = queryInt(c, "page"); !ok {
		return
	}
	if q.Limit, ok = queryInt(c, "limit"); !ok {
		return
	}

	users, page, err := h.admin.ListUsers(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"users": users, "pagination": page})
}

func (h *AdminHandler) ToggleUserStatus(c *gin.Context) {
	id, ok := paramID(c, "id", "User")
	if !ok {
		return
	}
	user, err := h.admin.ToggleUserStatus(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "User deactivated successfully"
	if user.IsActive {
		msg = "User activated successfully"
	}
	resp.Success(c, http.StatusOK, msg, gin.H{"user": user})
}

// Stats returns platform-wide counts and revenue
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, stats)
}

func (h *AdminHandler) Commission(c *gin.Context) {
	pct, err := h.admin.Commission(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"commissionPercentage": pct})
}

func (h *AdminHandler) SetCommission(c *gin.Context) {
	var req commissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	pct, err := h.admin.SetCommission(c.Request.Context(), middleware.GetUserID(c), req.CommissionPercentage)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Success(c, http.StatusOK, "Commission percentage updated successfully", gin.H{"commissionPercentage": pct})
}
