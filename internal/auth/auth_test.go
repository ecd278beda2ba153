package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/auth"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/config"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager(&config.AuthConfig{JWTSecret: "test-secret", Issuer: "dsq", TokenTTLHours: 1})
}

func testUser(role domain.UserRole) *domain.User {
	u := &domain.User{Email: "a@example.com", DisplayName: "Asha", Role: role}
	u.ID = uuid.New()
	return u
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tokens := newTokens()
	user := testUser(domain.RoleAdmin)

	signed, expires, err := tokens.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	uc, err := tokens.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uc.UserID)
	assert.Equal(t, domain.RoleAdmin, uc.Role)
	assert.Equal(t, "Asha", uc.DisplayName)
	assert.True(t, uc.IsAdmin())
	assert.False(t, uc.IsSuperAdmin())
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	other := auth.NewTokenManager(&config.AuthConfig{JWTSecret: "other", Issuer: "dsq", TokenTTLHours: 1})
	signed, _, err := other.Issue(testUser(domain.RoleCustomer))
	require.NoError(t, err)

	_, err = newTokens().ValidateToken(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	claims := auth.Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    "dsq",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newTokens().ValidateToken(signed)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestMiddleware_Authenticate(t *testing.T) {
	tokens := newTokens()
	mw := auth.NewMiddleware(tokens, "key-123", zap.NewNop())

	var seen *auth.UserContext
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("api key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("x-api-key", "key-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.True(t, seen.IsSuperAdmin())
	})

	t.Run("wrong api key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("x-api-key", "nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer", func(t *testing.T) {
		user := testUser(domain.RoleCustomer)
		signed, _, err := tokens.Issue(user)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, user.ID, seen.UserID)
		assert.True(t, seen.IsCustomer())
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMiddleware_RequireRole(t *testing.T) {
	mw := auth.NewMiddleware(newTokens(), "", zap.NewNop())
	handler := mw.RequireRole(domain.RoleSuperAdmin, domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(uc *auth.UserContext) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if uc != nil {
			req = req.WithContext(auth.WithUserContext(req.Context(), uc))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve(&auth.UserContext{Role: domain.RoleAdmin}))
	assert.Equal(t, http.StatusForbidden, serve(&auth.UserContext{Role: domain.RoleCustomer}))
	assert.Equal(t, http.StatusForbidden, serve(nil))
}
