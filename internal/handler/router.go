package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lxtrip/holdbroker/internal/config"
	"lxtrip/holdbroker/internal/handler/middleware"
	jwtpkg "lxtrip/holdbroker/pkg/jwt"
)

// SetupRouter wires the HTTP surface. jwtManager, offerHandler and adminHandler are optional;
// storeBackend names the store currently serving holds.
func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	holdHandler *HoldHandler,
	offerHandler *OfferHandler,
	adminHandler *AdminHandler,
	storeBackend func() string,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "store": storeBackend()})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalJWTAuth(jwtManager))
	{
		api.POST("/holds", holdHandler.Create)
		api.POST("/holds/confirm", holdHandler.Confirm)

		if offerHandler != nil {
			api.GET("/offers", offerHandler.Search)
		}
	}

	// Admin routes (JWT + admin check)
	if adminHandler != nil && jwtManager != nil {
		admin := r.Group("/api/v1/admin")
		admin.Use(middleware.JWTAuth(jwtManager))
		admin.Use(middleware.AdminAuth(cfg.Admin.UserIDs))
		{
			admin.GET("/holds/:id", adminHandler.GetHold)
		}
	}

	return r
}
