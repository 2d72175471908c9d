package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/ai-usage-analyzer/internal/store/model"
	"github.com/nulzo/ai-usage-analyzer/pkg/api"
)

// ContextKeyIdentity is the gin context key holding the resolved caller.
const ContextKeyIdentity = "identity"

// Auth checks for a Bearer token in the Authorization header and resolves
// the caller to an identity. With a non-empty key list only listed tokens
// are accepted; with an empty list any bearer token passes (MVP behavior,
// matching an auth service that has not been wired in yet). Every accepted
// caller resolves to the default admin identity.
func Auth(staticKeys []string) gin.HandlerFunc {
	staticMap := make(map[string]bool, len(staticKeys))
	for _, k := range staticKeys {
		staticMap[k] = true
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				api.NewProblem(http.StatusUnauthorized, "Unauthorized", "Missing Authorization header"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				api.NewProblem(http.StatusUnauthorized, "Unauthorized", "Invalid Authorization header format"))
			return
		}

		if len(staticMap) > 0 && !staticMap[parts[1]] {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				api.NewProblem(http.StatusUnauthorized, "Unauthorized", "Invalid API Key"))
			return
		}

		c.Set(ContextKeyIdentity, model.Identity{
			UserID: "admin",
			Role:   model.RoleAdmin,
		})

		c.Next()
	}
}

// IdentityFrom returns the resolved caller, defaulting to admin when auth
// is disabled.
func IdentityFrom(c *gin.Context) model.Identity {
	if v, ok := c.Get(ContextKeyIdentity); ok {
		if id, ok := v.(model.Identity); ok {
			return id
		}
	}
	return model.Identity{UserID: "admin", Role: model.RoleAdmin}
}
