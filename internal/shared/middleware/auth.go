package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blog-backend/internal/shared"
	"blog-backend/internal/shared/response"
	"blog-backend/pkg/jwt"
)

const principalKey = "principal"

// RequireAuth validates the Bearer token and stores the resolved principal
// in the request context. The core never issues credentials; it only trusts
// what the identity collaborator signed.
func RequireAuth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := resolvePrincipal(c, manager)
		if !ok {
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allowed set. Runs
// after RequireAuth; the service-level guard stays authoritative, this is a
// router-level short circuit.
func RequireRoles(roles ...shared.Role) gin.HandlerFunc {
	allowed := make(map[shared.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if _, ok := allowed[principal.Role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the principal resolved by RequireAuth, or the zero
// principal on public routes.
func GetPrincipal(c *gin.Context) shared.Principal {
	value, exists := c.Get(principalKey)
	if !exists {
		return shared.Principal{}
	}
	principal, ok := value.(shared.Principal)
	if !ok {
		return shared.Principal{}
	}
	return principal
}

func resolvePrincipal(c *gin.Context, manager *jwt.Manager) (shared.Principal, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c, "missing authorization header")
		return shared.Principal{}, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.Unauthorized(c, "invalid authorization header format")
		return shared.Principal{}, false
	}

	claims, err := manager.ValidateAccessToken(parts[1])
	if err != nil {
		response.Unauthorized(c, "invalid token")
		return shared.Principal{}, false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		response.Unauthorized(c, "invalid user ID in token")
		return shared.Principal{}, false
	}

	role := shared.Role(claims.Role)
	if !role.IsValid() {
		response.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid role in token")
		return shared.Principal{}, false
	}

	return shared.Principal{ID: userID, Role: role}, true
}
