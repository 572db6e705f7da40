package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough-for-hmac"

func newTestManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(testSecret, "atlas-asset-api", "atlas-asset-api", expiry)
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newTestManager(time.Hour)

	token, err := m.GenerateToken(42, 7, "ADMIN")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, int64(7), claims.OrgID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.True(t, claims.IsAdmin())
}

func TestValidateTokenZeroOrg(t *testing.T) {
	m := newTestManager(time.Hour)

	token, err := m.GenerateToken(1, 0, "USER")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(0), claims.OrgID)
	assert.False(t, claims.IsAdmin())
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := newTestManager(time.Hour)
	other := NewJWTManager("another-secret-key-that-is-also-long-enough", "atlas-asset-api", "atlas-asset-api", time.Hour)

	token, err := m.GenerateToken(1, 1, "USER")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	m := newTestManager(-time.Minute)

	token, err := m.GenerateToken(1, 1, "USER")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, newTestManager(time.Hour).ValidateConfig())

	assert.Error(t, NewJWTManager("short", "iss", "aud", time.Hour).ValidateConfig())
	assert.Error(t, NewJWTManager(testSecret, "", "aud", time.Hour).ValidateConfig())
	assert.Error(t, NewJWTManager(testSecret, "iss", "", time.Hour).ValidateConfig())
	assert.Error(t, NewJWTManager(testSecret, "iss", "aud", 0).ValidateConfig())
}

func TestAuthMiddleware(t *testing.T) {
	m := newTestManager(time.Hour)

	handler := AuthMiddleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, int64(5), UserIDFromContext(r.Context()))
		assert.Equal(t, int64(3), OrgIDFromContext(r.Context()))
		assert.Equal(t, "USER", RoleFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/assets", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/assets", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/assets", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := m.GenerateToken(5, 3, "USER")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/assets", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestMustAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := MustAdmin(next)

	t.Run("no claims", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/assets", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non admin", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/assets", nil)
		ctx := context.WithValue(req.Context(), ClaimsKey, &Claims{UserID: 1, OrgID: 1, Role: "USER"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req.WithContext(ctx))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/assets", nil)
		ctx := context.WithValue(req.Context(), ClaimsKey, &Claims{UserID: 1, OrgID: 1, Role: "ADMIN"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req.WithContext(ctx))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
