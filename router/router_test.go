package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trove/app/controllers"
	jwtutil "trove/app/jwt"
	"trove/app/middleware"
	"trove/app/models"
	"trove/app/notify"
	"trove/app/repo"
	"trove/app/services"
	"trove/app/token"
	"trove/app/upload"
)

// newTestServer stands up the full handler chain on sqlite plus an embedded
// redis, mirroring what initialize.Build wires in production.
func newTestServer(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "trove.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Item{}, &models.Like{}, &models.View{}, &models.Comment{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store, err := upload.NewStore(t.TempDir())
	require.NoError(t, err)

	users := repo.NewUserRepository(db)
	items := repo.NewItemRepository(db)
	interactions := repo.NewInteractionRepository(db)

	signer := &jwtutil.Signer{Secret: []byte("router-test-secret"), Issuer: "trove", Exp: time.Hour}
	blacklist := token.NewBlacklist(rdb)

	authSvc := services.NewAuthService(users, signer, blacklist, notify.LogNotifier{}, 5)
	userSvc := services.NewUserService(users, items, store)
	itemSvc := services.NewItemService(items, interactions, store)

	mw := &middleware.Auth{Signer: signer, Blacklist: blacklist}
	handler := New(
		controllers.NewAuthController(authSvc),
		controllers.NewOAuthController(authSvc),
		controllers.NewUserController(userSvc),
		controllers.NewItemController(itemSvc),
		mw,
	)
	return handler, db
}

func doJSON(t *testing.T, h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func loginAs(t *testing.T, h http.Handler, username, email, password string, role models.Role, db *gorm.DB) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	if role != models.RoleUser {
		require.NoError(t, db.Model(&models.User{}).Where("username = ?", username).Update("role", role).Error)
	}
	rec = doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "al", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "User registered successfully")

	rec = doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Message string `json:"message"`
		Auth    bool   `json:"auth"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "Login successful", login.Message)
	assert.True(t, login.Auth)
	require.NotEmpty(t, login.Token)

	// Token works before logout.
	rec = doJSON(t, h, http.MethodGet, "/items/getAll", login.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/auth/logout", login.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logout successful")

	// Same token is now rejected everywhere.
	rec = doJSON(t, h, http.MethodGet, "/items/getAll", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "blacklisted")
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := newTestServer(t)
	doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "bo", "email": "b@x.com", "password": "secret1",
	})

	rec := doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "b@x.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid password.")

	rec = doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "nobody@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found. Please register first.")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/items/getAll", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token is required.")
}

func TestUserRoutesRoleGate(t *testing.T) {
	h, db := newTestServer(t)

	userTok := loginAs(t, h, "plain", "plain@x.com", "secret1", models.RoleUser, db)
	modTok := loginAs(t, h, "mod", "mod@x.com", "secret1", models.RoleModerator, db)
	adminTok := loginAs(t, h, "boss", "boss@x.com", "secret1", models.RoleAdmin, db)
	superTok := loginAs(t, h, "root", "root@x.com", "secret1", models.RoleSuperAdmin, db)

	// Listing is admin territory.
	rec := doJSON(t, h, http.MethodGet, "/users", userTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access denied: insufficient permissions.")

	rec = doJSON(t, h, http.MethodGet, "/users", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 4)
	for _, u := range list {
		_, leaked := u["password_hash"]
		assert.False(t, leaked)
	}

	// Moderators may read a single user but not list.
	rec = doJSON(t, h, http.MethodGet, "/users", modTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/users/1", modTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Deletion is super-admin only.
	rec = doJSON(t, h, http.MethodDelete, "/users/1", adminTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(t, h, http.MethodDelete, "/users/1", superTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User deleted successfully")
}

func TestItemCommentFlow(t *testing.T) {
	h, db := newTestServer(t)
	tok := loginAs(t, h, "maker", "m@x.com", "secret1", models.RoleUser, db)

	rec := doJSON(t, h, http.MethodPost, "/items/add", tok, map[string]string{
		"name": "Lamp", "description": "brass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	rec = doJSON(t, h, http.MethodPost, "/items/1/like", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "liked")

	rec = doJSON(t, h, http.MethodPost, "/items/1/like", tok, nil)
	assert.Contains(t, rec.Body.String(), "disliked")

	rec = doJSON(t, h, http.MethodPost, "/items/1/comment", tok, map[string]string{"comment": "nice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/items/1/comments", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var comments []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "nice", comments[0]["comment"])

	rec = doJSON(t, h, http.MethodGet, "/items/getItem/999", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Item not found or access denied.")
}
