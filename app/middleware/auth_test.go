package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trove/app/dto"
	jwtutil "trove/app/jwt"
	"trove/app/models"
	"trove/app/token"
)

func newTestAuth(t *testing.T) (*Auth, *token.Blacklist) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	bl := token.NewBlacklist(client)
	signer := &jwtutil.Signer{Secret: []byte("test-secret-32-bytes-of-entropy!"), Issuer: "trove", Exp: time.Hour}
	return &Auth{Signer: signer, Blacklist: bl}, bl
}

func okHandler(claims **jwtutil.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims != nil {
			*claims = GetClaims(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_MissingToken(t *testing.T) {
	mw, _ := newTestAuth(t)
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body dto.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Token is required.", body.Message)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	mw, _ := newTestAuth(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(nil)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid Token.")
}

func TestRequireAuth_ValidToken(t *testing.T) {
	mw, _ := newTestAuth(t)
	tok, err := mw.Signer.Sign(7, models.RoleUser)
	require.NoError(t, err)

	var claims *jwtutil.Claims
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&claims)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, uint(7), claims.UserID)
}

func TestRequireAuth_RevokedToken(t *testing.T) {
	mw, bl := newTestAuth(t)
	tok, err := mw.Signer.Sign(7, models.RoleUser)
	require.NoError(t, err)
	require.NoError(t, bl.Revoke(context.Background(), tok, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "blacklisted")
}

func TestRequireRole(t *testing.T) {
	mw, _ := newTestAuth(t)
	gate := mw.RequireAuth(mw.RequireRole(okHandler(nil), models.RoleAdmin, models.RoleSuperAdmin))

	cases := []struct {
		role models.Role
		want int
	}{
		{models.RoleAdmin, http.StatusOK},
		{models.RoleSuperAdmin, http.StatusOK},
		{models.RoleModerator, http.StatusForbidden},
		{models.RoleUser, http.StatusForbidden},
	}
	for _, tc := range cases {
		tok, err := mw.Signer.Sign(1, tc.role)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, "role %s", tc.role)
	}
}

func TestRequireRole_NoClaims(t *testing.T) {
	mw, _ := newTestAuth(t)
	rec := httptest.NewRecorder()
	mw.RequireRole(okHandler(nil), models.RoleAdmin).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
