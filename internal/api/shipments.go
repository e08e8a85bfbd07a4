package api

import (
	"net/http"

	"warehouse-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listIncoming(c *gin.Context) {
	shipments, err := h.svc.Shipments.ListIncoming(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to fetch incoming shipments", err)
		return
	}
	c.JSON(http.StatusOK, shipments)
}

func (h *Handler) createIncoming(c *gin.Context) {
	var req service.IncomingShipmentRequest
	if !bindJSON(c, &req) {
		return
	}

	shipment, err := h.svc.Shipments.CreateIncoming(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to create incoming shipment", err)
		return
	}
	c.JSON(http.StatusCreated, shipment)
}

func (h *Handler) updateIncoming(c *gin.Context) {
	var req service.IncomingShipmentRequest
	if !bindJSON(c, &req) {
		return
	}

	shipment, err := h.svc.Shipments.UpdateIncoming(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, "Failed to update incoming shipment", err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h *Handler) deleteIncoming(c *gin.Context) {
	if err := h.svc.Shipments.DeleteIncoming(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, "Failed to delete incoming shipment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Incoming shipment deleted"})
}

func (h *Handler) listOutgoing(c *gin.Context) {
	shipments, err := h.svc.Shipments.ListOutgoing(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to fetch outgoing shipments", err)
		return
	}
	c.JSON(http.StatusOK, shipments)
}

func (h *Handler) createOutgoing(c *gin.Context) {
	var req service.OutgoingShipmentRequest
	if !bindJSON(c, &req) {
		return
	}

	shipment, err := h.svc.Shipments.CreateOutgoing(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to create outgoing shipment", err)
		return
	}
	c.JSON(http.StatusCreated, shipment)
}

func (h *Handler) updateOutgoing(c *gin.Context) {
	var req service.OutgoingShipmentRequest
	if !bindJSON(c, &req) {
		return
	}

	shipment, err := h.svc.Shipments.UpdateOutgoing(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, "Failed to update outgoing shipment", err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h *Handler) deleteOutgoing(c *gin.Context) {
	if err := h.svc.Shipments.DeleteOutgoing(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, "Failed to delete outgoing shipment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Outgoing shipment deleted"})
}
