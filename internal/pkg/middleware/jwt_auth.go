package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tripwise/internal/app/models"
)

// JWTConfig holds JWT authentication configuration.
type JWTConfig struct {
	SecretKey string
	Logger    *zap.Logger
}

// JWTAuthMiddleware validates the bearer token and stores the caller's
// identity in the gin context. Owner-scoped routes behind it always see an
// explicit user id, never ambient session state.
func JWTAuthMiddleware(config JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			config.Logger.Warn("Missing authorization header", zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			config.Logger.Warn("Invalid authorization header format", zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims := &models.Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(config.SecretKey), nil
		})
		if err != nil || !token.Valid {
			config.Logger.Warn("Invalid token",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("username", claims.Username)
		c.Set("authenticated", true)

		c.Next()
	}
}

// CurrentUserID returns the authenticated caller's identity from the gin
// context, or ErrUnauthenticated when no valid identity is present.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetString("user_id")
	if raw == "" {
		return uuid.Nil, models.ErrUnauthenticated
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed user id in token: %w", models.ErrUnauthenticated)
	}
	return userID, nil
}
