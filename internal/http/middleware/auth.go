// README: Bearer-token auth middleware; resolves the caller's id and role.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"revline/internal/modules/identity"
	"revline/internal/types"
)

const (
	callerIDKey   = "caller_id"
	callerRoleKey = "caller_role"
)

// TokenVerifier validates a bearer token. Implemented by identity.Service.
type TokenVerifier interface {
	VerifyToken(token string) (identity.Claims, error)
}

func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}
		claims, err := verifier.VerifyToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(callerIDKey, claims.UserID)
		c.Set(callerRoleKey, claims.Role)
		c.Next()
	}
}

// Require rejects callers whose role is not in the allowed set.
func Require(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CallerRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

func CallerID(c *gin.Context) types.ID {
	if v, ok := c.Get(callerIDKey); ok {
		if id, ok := v.(types.ID); ok {
			return id
		}
	}
	return ""
}

func CallerRole(c *gin.Context) identity.Role {
	if v, ok := c.Get(callerRoleKey); ok {
		if r, ok := v.(identity.Role); ok {
			return r
		}
	}
	return ""
}
