package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.svc.Dashboard.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to fetch dashboard stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
