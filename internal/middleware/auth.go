package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tourvia/commission-service/internal/auth"
	"github.com/tourvia/commission-service/internal/domain"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// RequireAccessToken verifies the bearer token and injects the identity and
// its capability set into the request context. Capability checks belong to
// RequireCapability on individual routes.
func RequireAccessToken(m *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    string(domain.ErrorCodeAuthMissing),
				"message": "missing bearer token",
			})
			return
		}
		tok := strings.TrimPrefix(raw, bearerPrefix)

		claims, err := m.Verify(tok, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    string(domain.ErrorCodeAuthInvalid),
				"message": "invalid token",
			})
			return
		}

		ctx := auth.WithIdentity(c.Request.Context(), claims.UserID, claims.Role)
		c.Request = c.Request.WithContext(ctx)

		// Also on the gin context for handler convenience
		c.Set("user_id", claims.UserID)
		c.Set("role", string(claims.Role))

		c.Next()
	}
}

// RequireCapability gates a route on one capability from the set resolved
// at token verification time
func RequireCapability(cap auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.Can(c.Request.Context(), cap) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    string(domain.ErrorCodeAuthInsufficientCaps),
				"message": "capability " + string(cap) + " required",
			})
			return
		}
		c.Next()
	}
}
