package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booking-dashboard-backend/internal/booking"
	"booking-dashboard-backend/internal/stays"
)

// reconcileDays is the default half-width of the reconciliation window.
const reconcileDays = 7

// ReconcileReport is the upstream-versus-store comparison for a window.
type ReconcileReport struct {
	Window booking.Window `json:"window"`
	booking.Reconciliation
}

// GetReconcile compares the upstream API with the store for from/to,
// defaulting to a week either side of today.
func (h *Handler) GetReconcile(c *gin.Context) {
	if h.upstream == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "upstream API is not configured"})
		return
	}
	from, to, ok := windowQuery(c)
	if !ok {
		return
	}
	today := h.views.Today()
	if from.IsZero() {
		from = today.AddDays(-reconcileDays)
	}
	if to.IsZero() {
		to = today.AddDays(reconcileDays)
	}
	if from.After(to) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must not be after to"})
		return
	}

	ctx := c.Request.Context()
	source, err := h.upstream.FetchBookings(ctx, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	target, err := h.store.FetchIntervals(ctx, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReconcileReport{
		Window:         booking.Window{From: from, To: to},
		Reconciliation: booking.Reconcile(stays.ToBookings(source, nil), target),
	})
}
