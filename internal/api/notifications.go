package api

import (
	"net/http"

	"warehouse-service/internal/service"

	"github.com/gin-gonic/gin"
)

// Both notification route families read the same rows. /app-notifications
// answers with the stored snake_case shape, /notifications with the feed
// projection.

func (h *Handler) notificationQuery(c *gin.Context) (service.ListQuery, bool) {
	limit, ok := limitQuery(c)
	if !ok {
		return service.ListQuery{}, false
	}
	return service.ListQuery{UnreadOnly: c.Query("unread") == "true", Limit: limit}, true
}

func (h *Handler) listAppNotifications(c *gin.Context) {
	q, ok := h.notificationQuery(c)
	if !ok {
		return
	}

	rows, err := h.svc.Notifications.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, "Failed to fetch notifications", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) createAppNotification(c *gin.Context) {
	var req service.CreateNotificationRequest
	if !bindJSON(c, &req) {
		return
	}

	n, err := h.svc.Notifications.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to create notification", err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *Handler) markAppNotificationRead(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	n, err := h.svc.Notifications.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to mark notification as read", err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) markAllAppNotificationsRead(c *gin.Context) {
	changed, err := h.svc.Notifications.MarkAllRead(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to mark notifications as read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": changed})
}

func (h *Handler) deleteAppNotification(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Notifications.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete notification", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

func (h *Handler) listFeed(c *gin.Context) {
	q, ok := h.notificationQuery(c)
	if !ok {
		return
	}

	rows, err := h.svc.Notifications.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, "Failed to fetch notifications", err)
		return
	}
	c.JSON(http.StatusOK, service.NewFeed(rows))
}

func (h *Handler) unreadCount(c *gin.Context) {
	count, err := h.svc.Notifications.UnreadCount(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to count notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) markFeedItemRead(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	n, err := h.svc.Notifications.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to mark notification as read", err)
		return
	}
	c.JSON(http.StatusOK, service.NewFeedItem(*n))
}

func (h *Handler) markAllFeedRead(c *gin.Context) {
	changed, err := h.svc.Notifications.MarkAllRead(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to mark notifications as read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": changed})
}
