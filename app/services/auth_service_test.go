package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	jwtutil "trove/app/jwt"
	"trove/app/models"
	"trove/app/oauth"
	"trove/app/repo"
	"trove/app/token"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Item{}, &models.Like{}, &models.View{}, &models.Comment{}))
	return db
}

func testSigner() *jwtutil.Signer {
	return &jwtutil.Signer{Secret: []byte("this-is-a-test-secret-32-bytes!!"), Issuer: "trove", Exp: time.Hour}
}

func testBlacklist(t *testing.T) *token.Blacklist {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return token.NewBlacklist(client)
}

// lockSpy records which users the lockout policy notified.
type lockSpy struct{ ch chan uint }

func newLockSpy() *lockSpy { return &lockSpy{ch: make(chan uint, 4)} }

func (s *lockSpy) AccountLocked(u *models.User) error {
	s.ch <- u.ID
	return nil
}

func (s *lockSpy) notified(t *testing.T) uint {
	t.Helper()
	select {
	case id := <-s.ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("expected a lock notification")
		return 0
	}
}

func newTestAuth(t *testing.T) (*AuthService, *repo.UserRepository, *lockSpy) {
	t.Helper()
	users := repo.NewUserRepository(testDB(t))
	spy := newLockSpy()
	svc := NewAuthService(users, testSigner(), testBlacklist(t), spy, 5)
	return svc, users, spy
}

func TestRegister_HashNeverEqualsPlaintext(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "al", "a@x.com", "secret1", "")
	require.NoError(t, err)
	require.NotNil(t, u.PasswordHash)
	assert.NotEqual(t, "secret1", *u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte("secret1")))
	assert.Equal(t, models.RoleUser, u.Role)
}

func TestRegister_Duplicates(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "al", "a@x.com", "secret1", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "other", "a@x.com", "secret1", "")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, "al", "b@x.com", "secret1", "")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_InvalidRole(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	_, err := svc.Register(context.Background(), "al", "a@x.com", "secret1", "OVERLORD")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestLogin_Success(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "al", "a@x.com", "secret1", models.RoleAdmin)
	require.NoError(t, err)

	tok, got, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.Equal(t, u.ID, got.ID)

	claims, err := testSigner().Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	_, _, err := svc.Login(context.Background(), "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_OAuthOnlyAccount(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{
		Username: "gh-user", Email: "gh@x.com", Role: models.RoleUser,
		Provider: "github", ProviderID: "123",
	}))
	_, _, err := svc.Login(ctx, "gh@x.com", "anything")
	assert.ErrorIs(t, err, ErrOAuthOnly)
}

func TestLockout_FifthFailureLocks(t *testing.T) {
	svc, users, spy := newTestAuth(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "al", "a@x.com", "secret1", "")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, _, err := svc.Login(ctx, "a@x.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidPassword, "attempt %d", i+1)
	}

	_, _, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrAccountLocked, "fifth failure locks")
	assert.Equal(t, u.ID, spy.notified(t))

	// Correct credentials no longer help; the password is not consulted.
	_, _, err = svc.Login(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrAccountLocked)

	stored, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.Locked)
	assert.Equal(t, 5, stored.FailedAttempts)
}

func TestLockout_ConcurrentFailuresNotifyOnce(t *testing.T) {
	svc, users, spy := newTestAuth(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "al", "a@x.com", "secret1", "")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, _, err := svc.Login(ctx, "a@x.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	}

	// Two racing failures at the threshold boundary: both must see a locked
	// account, but only one of them performed the transition.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Login(ctx, "a@x.com", "wrong")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.ErrorIs(t, err, ErrAccountLocked)
	}

	assert.Equal(t, u.ID, spy.notified(t))
	select {
	case <-spy.ch:
		t.Fatal("lock announced more than once")
	case <-time.After(300 * time.Millisecond):
	}

	stored, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.Locked)
}

func TestLockout_SuccessResetsCounter(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "al", "a@x.com", "secret1", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, _, err := svc.Login(ctx, "a@x.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	}
	_, _, err = svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	stored, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.FailedAttempts)

	// Counting restarts from one, not the pre-reset value.
	_, _, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	stored, err = users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FailedAttempts)
	assert.False(t, stored.Locked)
}

func TestLockout_ConfigurableThreshold(t *testing.T) {
	svc, _, spy := newTestAuth(t)
	svc.SetLockThreshold(2)
	ctx := context.Background()

	_, err := svc.Register(ctx, "al", "a@x.com", "secret1", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, _, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrAccountLocked)
	spy.notified(t)
}

func TestLogout_RevokesToken(t *testing.T) {
	users := repo.NewUserRepository(testDB(t))
	blacklist := testBlacklist(t)
	signer := testSigner()
	svc := NewAuthService(users, signer, blacklist, newLockSpy(), 5)
	ctx := context.Background()

	_, err := svc.Register(ctx, "al", "a@x.com", "secret1", "")
	require.NoError(t, err)
	tok, _, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	claims, err := signer.Parse(tok)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, tok, claims))

	revoked, err := blacklist.IsRevoked(ctx, tok)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestOAuthLogin_CreatesUserOnce(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	ctx := context.Background()

	profile := &oauth.Profile{Subject: "987", Username: "octo", Email: "octo@x.com"}
	tok, u, err := svc.OAuthLogin(ctx, "github", profile)
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Nil(t, u.PasswordHash, "provider accounts never get a password")
	assert.Equal(t, "github", u.Provider)

	_, again, err := svc.OAuthLogin(ctx, "github", profile)
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOAuthLogin_EmailFallback(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, u, err := svc.OAuthLogin(ctx, "github", &oauth.Profile{Subject: "55", Username: "quiet"})
	require.NoError(t, err)
	assert.Equal(t, "quiet@users.noreply.github.com", u.Email)
}

func TestOAuthLogin_UsernameCollision(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "octo", "taken@x.com", "secret1", "")
	require.NoError(t, err)

	_, u, err := svc.OAuthLogin(ctx, "github", &oauth.Profile{Subject: "77", Username: "octo", Email: "octo@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "octo-77", u.Username)
}
