package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"warehouse-service/internal/settings"

	"github.com/gin-gonic/gin"
)

// decodeObject reads a JSON object keeping numbers as json.Number, so the
// settings layer can store them in plain decimal form.
func decodeObject(c *gin.Context) (map[string]any, bool) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		badRequest(c, "Invalid request body", err)
		return nil, false
	}
	if body == nil {
		badRequest(c, "Invalid request body", fmt.Errorf("expected a JSON object"))
		return nil, false
	}
	return body, true
}

func (h *Handler) getAllSettings(c *gin.Context) {
	values, err := h.svc.Settings.GetAll(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to fetch settings", err)
		return
	}
	c.JSON(http.StatusOK, values)
}

// putAllSettings writes every key of the body in one transaction
func (h *Handler) putAllSettings(c *gin.Context) {
	body, ok := decodeObject(c)
	if !ok {
		return
	}

	written, err := h.svc.Settings.SetGroup(c.Request.Context(), settings.EntriesFromMap(body))
	if err != nil {
		h.respondError(c, "Failed to update settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully", "updated": written})
}

func (h *Handler) getSettingsGroup(g settings.Group) gin.HandlerFunc {
	return func(c *gin.Context) {
		values, err := h.svc.Settings.GetGroup(c.Request.Context(), g)
		if err != nil {
			h.respondError(c, fmt.Sprintf("Failed to fetch %s settings", g), err)
			return
		}
		c.JSON(http.StatusOK, values)
	}
}

// putSettingsGroup writes the group's keys found in the body and answers
// with the group as stored afterwards
func (h *Handler) putSettingsGroup(g settings.Group) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := decodeObject(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		if _, err := h.svc.Settings.SetGroupValues(ctx, g, body); err != nil {
			h.respondError(c, fmt.Sprintf("Failed to update %s settings", g), err)
			return
		}

		values, err := h.svc.Settings.GetGroup(ctx, g)
		if err != nil {
			h.respondError(c, fmt.Sprintf("Failed to fetch %s settings", g), err)
			return
		}
		c.JSON(http.StatusOK, values)
	}
}

func (h *Handler) getSetting(c *gin.Context) {
	key := c.Param("key")

	value, err := h.svc.Settings.GetOne(c.Request.Context(), key)
	if err != nil {
		h.respondError(c, "Setting not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// putSetting stores {"value": ...} under the path key
func (h *Handler) putSetting(c *gin.Context) {
	body, ok := decodeObject(c)
	if !ok {
		return
	}
	value, present := body["value"]
	if !present || value == nil {
		badRequest(c, "Invalid request body", fmt.Errorf("value is required"))
		return
	}

	key := c.Param("key")
	affected, err := h.svc.Settings.SetOne(c.Request.Context(), key, value)
	if err != nil {
		h.respondError(c, "Failed to update setting", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Setting updated successfully", "key": key, "affected": affected})
}
