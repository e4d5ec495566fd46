package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecheck/internal/auth"
	"sitecheck/internal/domain"
	"sitecheck/internal/middleware"
	"sitecheck/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func userEcho(c *gin.Context) {
	uid, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"user_id": ""})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": uid.String()})
}

func serve(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := new(mocks.MockTokenVerifier)
	userID := uuid.New()
	verifier.On("Verify", "valid-token").Return(&auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		Email:            "pm@example.com",
	}, nil)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(verifier))
	r.GET("/test", userEcho)

	w := serve(r, "Bearer valid-token")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, userID.String(), resp["user_id"])
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	verifier := new(mocks.MockTokenVerifier)
	r := gin.New()
	r.Use(middleware.AuthMiddleware(verifier))
	r.GET("/test", userEcho)

	w := serve(r, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
	verifier.AssertNumberOfCalls(t, "Verify", 0)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	verifier := new(mocks.MockTokenVerifier)
	verifier.On("Verify", "bad").Return(nil, domain.ErrUnauthorized)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(verifier))
	r.GET("/test", userEcho)

	w := serve(r, "Bearer bad")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid or expired token")
}

func TestAuthMiddleware_TokenWithoutUser(t *testing.T) {
	verifier := new(mocks.MockTokenVerifier)
	verifier.On("Verify", "anon").Return(&auth.Claims{}, nil)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(verifier))
	r.GET("/test", userEcho)

	w := serve(r, "Bearer anon")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_NotBearer(t *testing.T) {
	verifier := new(mocks.MockTokenVerifier)
	r := gin.New()
	r.Use(middleware.AuthMiddleware(verifier))
	r.GET("/test", userEcho)

	w := serve(r, "Basic dXNlcjpwYXNz")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth_NoHeaderPassesThrough(t *testing.T) {
	verifier := new(mocks.MockTokenVerifier)
	r := gin.New()
	r.Use(middleware.OptionalAuth(verifier))
	r.GET("/test", userEcho)

	w := serve(r, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":""}`, w.Body.String())
	verifier.AssertNumberOfCalls(t, "Verify", 0)
}

func TestOptionalAuth_InvalidTokenRejected(t *testing.T) {
	verifier := new(mocks.MockTokenVerifier)
	verifier.On("Verify", "bad").Return(nil, domain.ErrUnauthorized)

	r := gin.New()
	r.Use(middleware.OptionalAuth(verifier))
	r.GET("/test", userEcho)

	w := serve(r, "Bearer bad")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUserID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := middleware.GetUserID(c)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
