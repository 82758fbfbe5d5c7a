package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports that the API process is up.
func (h *Handler) Health(c *gin.Context) {
	now := h.now()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.info.Version,
		"timestamp": now.UTC().Format(time.RFC3339),
		"uptime":    int64(now.Sub(h.info.StartedAt).Seconds()),
	})
}

// Ready reports whether the database answers.
func (h *Handler) Ready(c *gin.Context) {
	body := gin.H{
		"ready":       true,
		"version":     h.info.Version,
		"environment": h.info.Environment,
	}
	if h.store != nil && h.store.DB() != nil {
		sqlDB, err := h.store.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			body["ready"] = false
			body["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}
