package api

import (
	"net/http"

	"warehouse-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.svc.Products.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to fetch products", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// upsertProduct creates the product or overwrites the one with the same id
func (h *Handler) upsertProduct(c *gin.Context) {
	var req service.UpsertProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.svc.Products.UpsertProduct(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to save product", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.svc.Products.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, "Failed to delete product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
