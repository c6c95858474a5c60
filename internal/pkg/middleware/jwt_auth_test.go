package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tripwise/internal/app/models"
)

const testSecret = "test-secret-key-for-unit-tests"

func signToken(t *testing.T, secret string, userID string, expiresAt time.Time) string {
	t.Helper()
	claims := &models.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(JWTConfig{SecretKey: testSecret, Logger: zap.NewNop()}))
	r.GET("/protected", func(c *gin.Context) {
		userID, err := CurrentUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID.String()})
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	userID := uuid.NewString()

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "Valid token",
			authHeader: "Bearer " + signToken(t, testSecret, userID, time.Now().Add(15*time.Minute)),
			wantStatus: http.StatusOK,
		},
		{
			name:       "Missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Malformed header",
			authHeader: "Token abc123",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Expired token",
			authHeader: "Bearer " + signToken(t, testSecret, userID, time.Now().Add(-time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Token signed with a different key",
			authHeader: "Bearer " + signToken(t, "another-secret", userID, time.Now().Add(15*time.Minute)),
			wantStatus: http.StatusUnauthorized,
		},
	}

	router := setupAuthRouter()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestCurrentUserIDMalformed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("user_id", "not-a-uuid")

	_, err := CurrentUserID(c)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}
