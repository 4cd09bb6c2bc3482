package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vmportal/internal/access"
	"vmportal/internal/auth"
	"vmportal/internal/repository"
)

// identityKey is the gin context key holding the resolved access.Identity.
const identityKey = "identity"

// lookupTimeout bounds the user-store read during authentication.
const lookupTimeout = 5 * time.Second

// Authenticate creates a Gin middleware for JWT bearer authentication. After
// the token checks out, the full user record is re-read from the store so
// role and VM assignments always reflect the latest admin edits; a token for
// a deleted user is rejected.
func Authenticate(tm *auth.TokenManager, users repository.UserRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer <token>"})
			return
		}

		claims, err := tm.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), lookupTimeout)
		defer cancel()

		user, err := users.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				return
			}
			logger.Error("Failed to resolve user during authentication", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
			return
		}

		c.Set(identityKey, access.IdentityFromUser(user))
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers. Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Identity(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// Identity returns the authenticated caller set by Authenticate.
func Identity(c *gin.Context) access.Identity {
	return c.MustGet(identityKey).(access.Identity)
}
