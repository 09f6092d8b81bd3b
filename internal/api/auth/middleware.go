package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"vigil/internal/api/types"
	"vigil/internal/storage"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	ContextUserID   = "auth_user_id"
	ContextUsername = "auth_username"
	ContextRole     = "auth_role"
)

// Middleware validates bearer tokens for protected route groups.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware creates auth middleware around a token manager.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// RequireAuth rejects requests without a valid bearer token (401) and
// stores the actor's identity on the request context.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			types.AbortWithError(c, types.AuthenticationError("Bearer token required"))
			return
		}

		claims, err := m.tokens.ValidateToken(tokenString)
		if err != nil {
			types.AbortWithError(c, types.AuthenticationError("Invalid or expired token"))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects authenticated requests whose role is below the
// required privilege level (403). It must run after RequireAuth.
func (m *Middleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if !storage.RoleAtLeast(role, required) {
			types.AbortWithError(c, types.AuthorizationError("Insufficient role for this operation"))
			return
		}
		c.Next()
	}
}

// ActorID returns the authenticated user's id from the request context.
func ActorID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
