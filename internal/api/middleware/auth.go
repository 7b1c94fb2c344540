// Package middleware provides HTTP middleware functions for the CropCert API
// server. It includes authentication, logging, request identification, CORS
// handling, and other cross-cutting concerns that are applied to HTTP
// requests before they reach the handlers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/cropcert/cropcert/internal/auth"
	"github.com/cropcert/cropcert/internal/config"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates JWT tokens and sets the caller identity context
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]

		// Validate token
		claims, err := auth.ValidateToken(token, cfg.JWT.Secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		// Set caller context
		c.Set("identity", claims.Identity)

		c.Next()
	}
}
