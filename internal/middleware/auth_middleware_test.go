package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestJWTService() *jwt.Service {
	return jwt.NewService("test-secret-key-123456789", time.Hour)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestAuthMiddleware_Success(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	userID := uuid.New()
	email := "user@example.com"

	token, err := jwtService.GenerateAccessToken(userID, email)
	require.NoError(t, err)

	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		require.True(t, exists)
		c.JSON(http.StatusOK, gin.H{
			"message": "success",
			"user_id": userCtx.UserID,
			"email":   userCtx.Email,
		})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
	assert.Contains(t, w.Body.String(), email)
}

func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_AUTH_HEADER")
}

func TestAuthMiddleware_InvalidFormat(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	for _, header := range []string{"NotBearer token123", "Bearer"} {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header: %q", header)
		assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
	}
}

func TestAuthMiddleware_EmptyToken(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer  ")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := jwt.NewService("test-secret-key-123456789", -time.Minute)
	router := setupTestRouter()

	token, err := expired.GenerateAccessToken(uuid.New(), "user@example.com")
	require.NoError(t, err)

	router.GET("/protected", AuthMiddleware(setupTestJWTService()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.real.token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestGetUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("present", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		want := UserContext{UserID: uuid.New(), Email: "user@example.com"}
		c.Set(UserContextKey, want)

		got, exists := GetUserContext(c)
		assert.True(t, exists)
		assert.Equal(t, want, got)
	})

	t.Run("absent", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		_, exists := GetUserContext(c)
		assert.False(t, exists)
	})

	t.Run("wrong type", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(UserContextKey, "not a user context")

		_, exists := GetUserContext(c)
		assert.False(t, exists)
	})
}

func TestMustGetUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("present", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		want := UserContext{UserID: uuid.New(), Email: "user@example.com"}
		c.Set(UserContextKey, want)

		assert.Equal(t, want, MustGetUserContext(c))
	})

	t.Run("absent panics", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		assert.Panics(t, func() {
			MustGetUserContext(c)
		})
	})
}
