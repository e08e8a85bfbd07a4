package api

import (
	"fmt"
	"net/http"

	"warehouse-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) reportOverview(c *gin.Context) {
	overview, err := h.svc.Reports.Overview(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to fetch report overview", err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handler) reportTypes(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Reports.Types())
}

func (h *Handler) recentReports(c *gin.Context) {
	limit, ok := limitQuery(c)
	if !ok {
		return
	}

	reports, err := h.svc.Reports.Recent(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, "Failed to fetch recent reports", err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// generateReport builds a report. A repeated Idempotency-Key header returns
// the report the first request produced.
func (h *Handler) generateReport(c *gin.Context) {
	var req service.GenerateReportRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Reports.Generate(c.Request.Context(), &req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		h.respondError(c, "Failed to generate report", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) downloadReport(c *gin.Context) {
	dl, err := h.svc.Reports.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to download report", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	c.Data(http.StatusOK, dl.ContentType, dl.Content)
}

func (h *Handler) shareReport(c *gin.Context) {
	var req service.ShareReportRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Reports.Share(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to share report", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
