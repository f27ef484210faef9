package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/config"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, handler *Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 10*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/tickets", caching, handler.ListTickets)
		api.GET("/tickets/:id", handler.GetTicket)
		api.POST("/tickets/weigh-in", handler.WeighIn)
		api.POST("/tickets/:id/weigh-out", handler.WeighOut)
		api.POST("/tickets/:id/finalize", handler.Finalize)

		api.GET("/serial/settings", handler.GetSerialSettings)
		api.POST("/serial/connect", handler.ConnectSerial)
		api.POST("/serial/disconnect", handler.DisconnectSerial)

		api.GET("/weight/live", handler.GetLiveWeight)

		api.GET("/sync/queue", handler.ListSyncQueue)
		api.POST("/sync/run", handler.RunSync)
		api.POST("/sync/queue/:id/retry", handler.RetrySyncEntry)
	}

	return r
}
