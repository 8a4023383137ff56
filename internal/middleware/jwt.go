package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gmprep/simulado-backend/internal/identity"
	"github.com/gmprep/simulado-backend/internal/response"
	"github.com/gmprep/simulado-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
)

// TokenValidator checks a bearer token.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenStr string) (*service.Claims, error)
}

// RequireJWT validates the bearer token from the Authorization header and
// binds the user to the request context.
func RequireJWT(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		authenticate(c, auth, tokenStr)
	}
}

// RequireWSAuth validates a JWT from the query param ?token=...
// Used for WebSocket upgrade requests, which cannot carry headers.
func RequireWSAuth(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			tokenStr = bearerToken(c.GetHeader("Authorization"))
		}
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		authenticate(c, auth, tokenStr)
	}
}

func authenticate(c *gin.Context, auth TokenValidator, tokenStr string) {
	claims, err := auth.ValidateToken(c.Request.Context(), tokenStr)
	if err != nil {
		if errors.Is(err, service.ErrTokenRevoked) {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRevoked)
			return
		}
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	c.Set(ContextKeyClaims, claims)
	c.Request = c.Request.WithContext(identity.WithUser(c.Request.Context(), claims.Subject))
	c.Next()
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
