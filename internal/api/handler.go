package api

import (
	"context"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"booking-dashboard-backend/internal/booking"
	"booking-dashboard-backend/internal/stays"
	"booking-dashboard-backend/internal/store"
)

// Syncer runs one synchronization on demand.
type Syncer interface {
	SyncOnce(ctx context.Context) (*stays.Result, error)
}

// BuildInfo is reported by the health endpoints.
type BuildInfo struct {
	Version     string
	Environment string
	StartedAt   time.Time
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	views    *booking.Service
	syncer   Syncer
	upstream stays.Fetcher
	webpush  *webpush.Options
	info     BuildInfo
	now      func() time.Time
}

// Deps are the collaborators of the handlers. Syncer and Upstream are optional.
type Deps struct {
	Store    store.Store
	Views    *booking.Service
	Syncer   Syncer
	Upstream stays.Fetcher
	WebPush  *webpush.Options
	Info     BuildInfo
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	if d.Info.StartedAt.IsZero() {
		d.Info.StartedAt = time.Now()
	}
	return &Handler{
		store:    d.Store,
		views:    d.Views,
		syncer:   d.Syncer,
		upstream: d.Upstream,
		webpush:  d.WebPush,
		info:     d.Info,
		now:      time.Now,
	}
}

// statusOf maps a collaborator error to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, stays.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, stays.ErrSyncRunning):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError renders err as {"error": ...}.
func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusOf(err), gin.H{"error": err.Error()})
}

// dateQuery reads an optional YYYY-MM-DD query parameter.
func dateQuery(c *gin.Context, key string) (booking.Date, error) {
	raw := c.Query(key)
	if raw == "" {
		return booking.Date{}, nil
	}
	d, err := booking.ParseDate(raw)
	if err != nil {
		return booking.Date{}, errors.Newf("invalid %s: %q", key, raw)
	}
	return d, nil
}

// windowQuery reads the optional from/to bounds. A zero date means unset.
func windowQuery(c *gin.Context) (from, to booking.Date, ok bool) {
	from, err := dateQuery(c, "from")
	if err == nil {
		to, err = dateQuery(c, "to")
	}
	if err == nil && !from.IsZero() && !to.IsZero() && from.After(to) {
		err = errors.New("from must not be after to")
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return booking.Date{}, booking.Date{}, false
	}
	return from, to, true
}
