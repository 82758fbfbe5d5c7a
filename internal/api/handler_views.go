package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booking-dashboard-backend/internal/ics"
)

// GetUnified returns the dashboard and calendar built from one snapshot.
func (h *Handler) GetUnified(c *gin.Context) {
	from, to, ok := windowQuery(c)
	if !ok {
		return
	}
	resp, err := h.views.Unified(c.Request.Context(), from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDashboard returns the dashboard over the default window.
func (h *Handler) GetDashboard(c *gin.Context) {
	resp, err := h.views.Dashboard(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCalendar returns the per-unit calendar for from/to.
func (h *Handler) GetCalendar(c *gin.Context) {
	from, to, ok := windowQuery(c)
	if !ok {
		return
	}
	resp, err := h.views.Calendar(c.Request.Context(), from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetUnitCalendarICS exports one listing's reservations as iCalendar.
func (h *Handler) GetUnitCalendarICS(c *gin.Context) {
	from, to, ok := windowQuery(c)
	if !ok {
		return
	}
	listingID := c.Param("listing_id")
	unit, found, err := h.views.UnitCalendar(c.Request.Context(), listingID, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no reservations for listing " + listingID})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+unit.Code+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics.ExportUnit(unit, h.now())))
}

// GetConflicts lists overlapping reservations per unit in from/to.
func (h *Handler) GetConflicts(c *gin.Context) {
	from, to, ok := windowQuery(c)
	if !ok {
		return
	}
	report, err := h.views.Conflicts(c.Request.Context(), from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
