package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, expiresAt, err := v.IssueToken("owner-1", "nurse@example.com", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{OwnerID: "owner-1", Email: "nurse@example.com"}, id)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	expired, _, err := v.IssueToken("owner-1", "", -time.Minute)
	require.NoError(t, err)

	otherSecret, _, err := NewJWTVerifier("other-secret").IssueToken("owner-1", "", time.Hour)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "owner-1",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"other secret": otherSecret,
		"no subject":   noSubject,
		"wrong alg":    wrongAlg,
		"garbage":      "not-a-token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.Error(t, err)
		})
	}

	_, err = NewJWTVerifier("").Verify(expired)
	assert.Error(t, err)
}

func TestJWTVerifier_UserIDClaimFallback(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": float64(42),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	id, err := NewJWTVerifier("test-secret").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "42", id.OwnerID)
}

func TestAuthMiddleware(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	token, _, err := v.IssueToken("owner-1", "", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(v), func(c *gin.Context) {
		owner, ok := OwnerID(c)
		require.True(t, ok)
		c.String(http.StatusOK, owner)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, `{"error":"Authorization header required"}`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, `{"error":"Invalid authorization header format"}`},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, `{"error":"Invalid token"}`},
		{"valid token", "Bearer " + token, http.StatusOK, "owner-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestOwnerID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := OwnerID(c)
	assert.False(t, ok)

	c.Set(OwnerIDKey, "")
	_, ok = OwnerID(c)
	assert.False(t, ok)
}
