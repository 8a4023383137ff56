package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// PublicCache lets clients and proxies keep catalogue responses for maxAge seconds.
func PublicCache(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAgeSeconds))
		c.Next()
	}
}

// NoStore marks per-user responses as uncacheable.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
