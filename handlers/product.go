package handlers

import (
	"net/http"

	"near-expiry-api/middleware"
	"near-expiry-api/pkg/resp"
	"near-expiry-api/services"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	products *services.ProductService
}

func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// Create lists a new product for the caller's restaurant
func (h *ProductHandler) Create(c *gin.Context) {
	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.products.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Created(c, "Product created successfully", gin.H{"product": p})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "Product")
	if !ok {
		return
	}
	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.products.Update(c.Request.Context(), middleware.GetUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Success(c, http.StatusOK, "Product updated successfully", gin.H{"product": p})
}

// Delete hides the product; order history keeps referencing it
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "Product")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	resp.Success(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) ListMine(c *gin.Context) {
	list, err := h.products.ListMine(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"products": list, "count": len(list)})
}

// Get returns one active product with its restaurant and category (public)
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "Product")
	if !ok {
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"product": p})
}
