package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sitecheck/internal/auth"
	"sitecheck/internal/domain"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"
	ContextKeyClaims = "claims"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware returns Gin middleware that requires a valid bearer token
// and injects the user context.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, verifier, true) {
			return
		}
		c.Next()
	}
}

// OptionalAuth injects the user context when a bearer token is present. A
// request without an Authorization header passes through; an invalid token
// is still rejected.
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, verifier, false) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, verifier TokenVerifier, required bool) bool {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" && !required {
		return true
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		abortUnauthorized(c, "missing or invalid authorization header")
		return false
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	claims, err := verifier.Verify(token)
	if err != nil {
		abortUnauthorized(c, "invalid or expired token")
		return false
	}
	userID, err := claims.ResolveUserID()
	if err != nil {
		abortUnauthorized(c, "token does not identify a user")
		return false
	}

	c.Set(ContextKeyUserID, userID)
	c.Set(ContextKeyEmail, claims.Email)
	c.Set(ContextKeyClaims, claims)
	return true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "unauthorized", "message": msg},
	})
}

// GetUserID extracts the user ID from the Gin context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return val.(uuid.UUID), nil
}
