package api

import (
	"net/http"

	"warehouse-service/internal/service"

	"github.com/gin-gonic/gin"
)

// listAudits returns audits newest first, optionally capped by ?limit=
func (h *Handler) listAudits(c *gin.Context) {
	limit, ok := limitQuery(c)
	if !ok {
		return
	}

	audits, err := h.svc.Audits.ListAudits(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, "Failed to fetch inventory audits", err)
		return
	}
	c.JSON(http.StatusOK, audits)
}

func (h *Handler) scheduleAudit(c *gin.Context) {
	var req service.AuditRequest
	if !bindJSON(c, &req) {
		return
	}

	audit, err := h.svc.Audits.ScheduleAudit(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to schedule inventory audit", err)
		return
	}
	c.JSON(http.StatusCreated, audit)
}

func (h *Handler) updateAudit(c *gin.Context) {
	var req service.AuditRequest
	if !bindJSON(c, &req) {
		return
	}

	audit, err := h.svc.Audits.UpdateAudit(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, "Failed to update inventory audit", err)
		return
	}
	c.JSON(http.StatusOK, audit)
}

func (h *Handler) deleteAudit(c *gin.Context) {
	if err := h.svc.Audits.DeleteAudit(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, "Failed to delete inventory audit", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory audit deleted"})
}
