package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"booking-dashboard-backend/config"
	"booking-dashboard-backend/internal/mw"
)

const (
	defaultRateLimit = 10
	defaultRateBurst = 5
)

// NewRouter creates and configures a new Gin router. responseCache backs the
// GET cache of the view endpoints; the caller flushes it after each sync.
func NewRouter(h *Handler, cfg *config.ServerConfig, responseCache *cache.Cache) *gin.Engine {
	r := gin.Default()
	if cfg.RequestIPHeader != "" {
		r.TrustedPlatform = cfg.RequestIPHeader
	}
	r.Use(mw.CORS(cfg.CORSOrigins))

	limit := rate.Limit(defaultRateLimit)
	if cfg.RateLimitPerSec > 0 {
		limit = rate.Limit(cfg.RateLimitPerSec)
	}
	burst := defaultRateBurst
	if cfg.RateLimitBurst > 0 {
		burst = cfg.RateLimitBurst
	}
	rateLimiter := mw.RateLimiter(limit, burst)
	caching := mw.Cache(responseCache, time.Duration(cfg.CacheTTLSeconds)*time.Second)

	r.GET("/health", h.Health)
	r.GET("/health/ready", h.Ready)

	v1 := r.Group("/api/v1")
	v1.Use(rateLimiter, mw.APIKey(cfg.APIKey))
	{
		v1.GET("/unified", caching, h.GetUnified)
		v1.GET("/dashboard", caching, h.GetDashboard)
		v1.GET("/calendar", caching, h.GetCalendar)
		v1.GET("/calendar/:listing_id/ics", caching, h.GetUnitCalendarICS)
		v1.GET("/conflicts", caching, h.GetConflicts)
		v1.GET("/reconcile", h.GetReconcile)

		v1.GET("/sync/status", h.GetSyncStatus)
		v1.POST("/sync", h.PostSync)

		v1.GET("/subscriptions", h.GetSubscription)
		v1.PUT("/subscriptions", h.PutSubscription)
		v1.DELETE("/subscriptions", h.DeleteSubscription)
		v1.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
