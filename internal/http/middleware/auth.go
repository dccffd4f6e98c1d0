// README: Bearer-token auth middleware; populates caller uid and role.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medicar/internal/infra"
)

const (
	uidKey  = "auth_uid"
	roleKey = "auth_role"
)

// Roles known to the API. Admin and operator are the dispatcher roles.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleDriver   = "driver"
)

// Auth verifies the Authorization header and stores the caller identity in
// the request context. The domain services never check roles themselves;
// everything role-related happens in this package.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.Verify(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(uidKey, token.Subject)
		c.Set(roleKey, token.Role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the caller has one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		have := CallerRole(c)
		for _, r := range roles {
			if have == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

func CallerUID(c *gin.Context) string {
	v, _ := c.Get(uidKey)
	s, _ := v.(string)
	return s
}

func CallerRole(c *gin.Context) string {
	v, _ := c.Get(roleKey)
	s, _ := v.(string)
	return s
}
