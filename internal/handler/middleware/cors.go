package middleware

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lxtrip/holdbroker/internal/config"
)

// CORS builds the cross-origin policy for the public API. Unset lists keep the
// library defaults and an empty or "*" origin list admits every origin. The
// Authorization header is always allowed since hold routes take bearer tokens.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	c := cors.DefaultConfig()
	if len(cfg.AllowedMethods) > 0 {
		c.AllowMethods = cfg.AllowedMethods
	}
	if len(cfg.AllowedHeaders) > 0 {
		c.AllowHeaders = cfg.AllowedHeaders
	}
	c.AddAllowHeaders("Authorization")
	if cfg.MaxAge > 0 {
		c.MaxAge = cfg.MaxAge
	}
	c.AllowCredentials = cfg.AllowCredentials

	switch {
	case len(cfg.AllowedOrigins) > 0 && !slices.Contains(cfg.AllowedOrigins, "*"):
		c.AllowOrigins = cfg.AllowedOrigins
	case cfg.AllowCredentials:
		// Browsers refuse a literal "*" on credentialed requests, so echo the origin.
		c.AllowOriginFunc = func(string) bool { return true }
	default:
		c.AllowAllOrigins = true
	}
	return cors.New(c)
}
