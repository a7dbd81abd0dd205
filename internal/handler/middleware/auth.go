package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	jwtpkg "lxtrip/holdbroker/pkg/jwt"
	"lxtrip/holdbroker/pkg/response"
)

const ContextKeyUserClaims = "user_claims"

// JWTAuth requires a valid bearer token.
func JWTAuth(jwtManager *jwtpkg.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		authenticate(c, jwtManager, authHeader)
	}
}

// OptionalJWTAuth lets anonymous requests through but rejects a bad token.
// A nil manager disables authentication entirely.
func OptionalJWTAuth(jwtManager *jwtpkg.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if jwtManager == nil || authHeader == "" {
			c.Next()
			return
		}
		authenticate(c, jwtManager, authHeader)
	}
}

func authenticate(c *gin.Context, jwtManager *jwtpkg.Manager, authHeader string) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.Unauthorized(c, "invalid authorization format")
		c.Abort()
		return
	}

	claims, err := jwtManager.Validate(parts[1])
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		c.Abort()
		return
	}

	c.Set(ContextKeyUserClaims, claims)
	c.Next()
}

// UserID returns the authenticated subject, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	claimsVal, exists := c.Get(ContextKeyUserClaims)
	if !exists {
		return ""
	}
	claims, ok := claimsVal.(*jwtpkg.Claims)
	if !ok {
		return ""
	}
	return claims.Subject
}
