package middlewares

import (
	"net/http"

	"github.com/geocoder89/hrhub/internal/access"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole runs the same guard the services apply, so a route-level rejection
// and a service-level one look identical to the client.
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)

		if !ok || actor.ID == "" {
			abortUnauthorized(c, "Missing identity context")
			return
		}
		if err := access.Require(actor, roles...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":      "forbidden",
					"message":   "Access denied. Insufficient role.",
					"requestId": c.GetString(CtxRequestID),
				},
			})
			return
		}
		c.Next()
	}
}

func RequireStaff() gin.HandlerFunc {
	return RequireRole(access.Staff...)
}
