package api

import (
	"net/http"

	"warehouse-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listZones(c *gin.Context) {
	zones, err := h.svc.Zones.ListZones(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to fetch warehouse zones", err)
		return
	}
	c.JSON(http.StatusOK, zones)
}

func (h *Handler) getZone(c *gin.Context) {
	zone, err := h.svc.Zones.GetZone(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to fetch warehouse zone", err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

func (h *Handler) createZone(c *gin.Context) {
	var req service.CreateZoneRequest
	if !bindJSON(c, &req) {
		return
	}

	zone, err := h.svc.Zones.CreateZone(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to create warehouse zone", err)
		return
	}
	c.JSON(http.StatusCreated, zone)
}

// updateZone serves both PUT and PATCH; absent fields keep their value
func (h *Handler) updateZone(c *gin.Context) {
	var req service.UpdateZoneRequest
	if !bindJSON(c, &req) {
		return
	}

	zone, err := h.svc.Zones.UpdateZone(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, "Failed to update warehouse zone", err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

func (h *Handler) adjustZoneStock(c *gin.Context) {
	var req service.StockRequest
	if !bindJSON(c, &req) {
		return
	}

	zone, err := h.svc.Zones.AdjustStock(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, "Failed to update zone stock", err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

func (h *Handler) deleteZone(c *gin.Context) {
	if err := h.svc.Zones.DeleteZone(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, "Failed to delete warehouse zone", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Warehouse zone deleted"})
}
