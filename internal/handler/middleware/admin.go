package middleware

import (
	"github.com/gin-gonic/gin"

	"lxtrip/holdbroker/pkg/response"
)

// AdminAuth checks that the authenticated user is in the admin user list.
// Must be used after JWTAuth middleware.
func AdminAuth(adminUserIDs []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		allowed[id] = struct{}{}
	}

	return func(c *gin.Context) {
		subject := UserID(c)
		if subject == "" {
			response.Unauthorized(c, "missing authentication")
			c.Abort()
			return
		}

		if _, isAdmin := allowed[subject]; !isAdmin {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
