package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cinereserve/backend/internal/auth"
)

// identityKey is the gin context key the authenticated identity is stored
// under. Handlers read it back with Identity(c).
const identityKey = "auth.identity"

// Identity returns the authenticated identity set by RequireAuth. It panics
// if the route is not behind RequireAuth.
func Identity(c *gin.Context) *auth.Identity {
	return c.MustGet(identityKey).(*auth.Identity)
}

// RequireAuth authenticates the bearer token on the request. Every
// unauthorized-class failure (missing header, malformed or expired token,
// revoked session) gets the same 401 body so the response does not reveal
// which check failed.
func RequireAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := svc.Authenticate(c.Request.Context(), BearerToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header. Returns ""
// for a missing or non-Bearer header; the auth service treats that as a
// missing token.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
