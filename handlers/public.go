package handlers

import (
	"strconv"

	"near-expiry-api/pkg/resp"
	"near-expiry-api/services"
	"near-expiry-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Categories(c *gin.Context) {
	cats, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"categories": cats})
}

// Browse searches active, unexpired, in-stock products (public)
func (h *CatalogHandler) Browse(c *gin.Context) {
	q := services.BrowseQuery{
		Search: c.Query("search"),
		SortBy: c.Query("sortBy"),
	}
	var ok bool
	if q.CategoryID, ok = queryUint(c, "category"); !ok {
		return
	}
	if q.MinPrice, ok = queryDecimal(c, "minPrice"); !ok {
		return
	}
	if q.MaxPrice, ok = queryDecimal(c, "maxPrice"); !ok {
		return
	}
	if q.Page, ok = queryInt(c, "page"); !ok {
		return
	}
	if q.Limit, ok = queryInt(c, "limit"); !ok {
		return
	}

	products, page, err := h.catalog.Browse(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"products": products, "pagination": page})
}

// StateMachine returns the order lifecycle for clients and docs
func StateMachine(c *gin.Context) {
	resp.OK(c, gin.H{
		"transitions":    statemachine.GetAllTransitions(),
		"terminalStates": statemachine.TerminalStates(),
		"description":    "Near-expiry marketplace order lifecycle",
	})
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		resp.BadRequest(c, key+" must be an integer")
		return 0, false
	}
	return n, true
}

func queryUint(c *gin.Context, key string) (uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		resp.BadRequest(c, key+" must be a positive integer")
		return 0, false
	}
	return uint(n), true
}

func queryDecimal(c *gin.Context, key string) (*decimal.Decimal, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		resp.BadRequest(c, key+" must be a number")
		return nil, false
	}
	return &d, true
}

func queryBool(c *gin.Context, key string) (*bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		resp.BadRequest(c, key+" must be true or false")
		return nil, false
	}
	return &b, true
}
