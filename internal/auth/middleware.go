package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys under which the middleware stores verified claims.
const (
	ContextTelegramID = "telegram_id"
	ContextUsername   = "username"
)

// Middleware provides gin middleware for JWT-protected routes.
type Middleware struct {
	tokens *TokenManager // Token manager for validation
}

// NewMiddleware creates a new authentication middleware instance.
// Returns a pointer to the newly created Middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// RequireAuth requires a valid bearer token on protected routes.
// It extracts the Authorization header, validates the JWT, and stores the
// Telegram identity in the gin context for handlers. Failures abort the
// request with 401 and a {"detail": ...} body.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authorization header must start with 'Bearer '"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Bearer token is required"})
			return
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or expired token"})
			return
		}

		c.Set(ContextTelegramID, claims.TelegramID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// TelegramIDFromContext returns the verified Telegram ID stored by
// RequireAuth, or false when the request was not authenticated.
func TelegramIDFromContext(c *gin.Context) (int64, bool) {
	value, ok := c.Get(ContextTelegramID)
	if !ok {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}
