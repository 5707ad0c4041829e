package middleware

import (
	"github.com/gin-gonic/gin"

	"carshare/internal/domain"
)

const (
	userIDHeader   = "X-User-ID"
	userRoleHeader = "X-User-Role"

	// PrincipalKey is the gin context key under which the authenticated
	// principal is stored.
	PrincipalKey = "principal"
)

// PrincipalMiddleware extracts the authenticated principal set by the
// upstream identity gateway. Authentication itself happens there; this
// service only reads the result and passes it into the business operations
// that need access checks.
func PrincipalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(userIDHeader)
		if id != "" {
			role := domain.Role(c.GetHeader(userRoleHeader))
			if role != domain.RoleManager {
				role = domain.RoleCustomer
			}
			c.Set(PrincipalKey, domain.Principal{CustomerID: id, Role: role})
		}
		c.Next()
	}
}

// PrincipalFrom retrieves the principal from the gin context.
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := v.(domain.Principal)
	return principal, ok
}
