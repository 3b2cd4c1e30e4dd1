package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/Kaltroniz/Smart-Parking-System/config"
	"github.com/Kaltroniz/Smart-Parking-System/internal/fleet"
	"github.com/Kaltroniz/Smart-Parking-System/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, table *fleet.Table, bookings BookingAPI, db *gorm.DB, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(table, bookings, db, webpushOptions)

	rps := cfg.RateLimitPerSec
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 5
	}
	rateLimiter := mw.RateLimiter(rate.Limit(rps), burst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter, mw.Identity(cfg.RequestUserHeader))
	{
		// The slot snapshot is live data and is never cached.
		api.GET("/slots", handler.GetSlots)

		api.POST("/slots/:index/booking", mw.RequireUser(), handler.PostBooking)
		api.POST("/gate/scan", mw.RequireUser(), handler.PostGateScan)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", caching, handler.GetVAPIDPublicKey)
	}

	return r
}
