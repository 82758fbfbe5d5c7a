package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booking-dashboard-backend/internal/booking"
)

// GetSyncStatus returns the last synchronization outcome.
func (h *Handler) GetSyncStatus(c *gin.Context) {
	status, err := h.store.FetchSyncStatus(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking.SyncInfoOf(status))
}

// PostSync runs one synchronization immediately.
func (h *Handler) PostSync(c *gin.Context) {
	if h.syncer == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "sync is not configured"})
		return
	}

	res, err := h.syncer.SyncOnce(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(statusOf(err), res)
		return
	}
	c.JSON(http.StatusOK, res)
}
