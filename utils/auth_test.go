package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("battery staple", hash))
}

func TestGenerateTokenNeedsSecret(t *testing.T) {
	_, err := GenerateToken("", "u1", "admin", time.Hour)
	assert.Error(t, err)
}

func TestParseToken(t *testing.T) {
	token, err := GenerateToken("s3cret", "user-9", "waiter", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", claims.Subject)
	assert.Equal(t, "waiter", claims.Role)

	_, err = ParseToken("other", token)
	assert.Error(t, err)

	noSubject, err := GenerateToken("s3cret", "", "waiter", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", noSubject)
	assert.Error(t, err)
}

func newAuthRouter(secret string, roles ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(secret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString("userId"), "role": c.GetString("role")})
	})
	r.GET("/private", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	valid, err := GenerateToken(secret, "user-1", "cashier", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(secret, "user-1", "cashier", -time.Hour)
	require.NoError(t, err)
	forged, err := GenerateToken("other-secret", "user-1", "admin", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{name: "bearer token", header: "Bearer " + valid, status: http.StatusOK},
		{name: "raw token", header: valid, status: http.StatusOK},
		{name: "query token", query: "?token=" + valid, status: http.StatusOK},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, status: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + forged, status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", status: http.StatusUnauthorized},
	}

	r := newAuthRouter(secret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"userId":"user-1","role":"cashier"}`, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	const secret = "test-secret"
	r := newAuthRouter(secret, "admin", "manager")

	for role, want := range map[string]int{
		"manager": http.StatusOK,
		"admin":   http.StatusOK,
		"waiter":  http.StatusForbidden,
	} {
		token, err := GenerateToken(secret, "u", role, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithError(c, http.StatusConflict, "table T1 is occupied")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"table T1 is occupied"}`, w.Body.String())
	assert.True(t, c.IsAborted())
}
