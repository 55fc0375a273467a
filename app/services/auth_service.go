package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	jwtutil "trove/app/jwt"
	"trove/app/models"
	"trove/app/notify"
	"trove/app/oauth"
	"trove/app/repo"
	"trove/app/token"
	"trove/global"
)

type AuthService struct {
	users     *repo.UserRepository
	signer    *jwtutil.Signer
	blacklist *token.Blacklist
	notifier  notify.Notifier
	threshold atomic.Int32
}

func NewAuthService(users *repo.UserRepository, signer *jwtutil.Signer, blacklist *token.Blacklist, notifier notify.Notifier, lockThreshold int) *AuthService {
	s := &AuthService{users: users, signer: signer, blacklist: blacklist, notifier: notifier}
	s.SetLockThreshold(lockThreshold)
	return s
}

// SetLockThreshold is safe to call while requests are in flight; config
// hot-reload uses it.
func (s *AuthService) SetLockThreshold(n int) {
	if n < 1 {
		n = 1
	}
	s.threshold.Store(int32(n))
}

func (s *AuthService) Register(ctx context.Context, username, email, password string, role models.Role) (*models.User, error) {
	const op = "auth.Register"

	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	hashStr := string(hash)
	u := &models.User{Username: username, Email: email, PasswordHash: &hashStr, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Login validates credentials and applies the lockout policy. A locked
// account fails immediately; the password is never inspected.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	const op = "auth.Login"

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrUserNotFound
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Locked {
		return "", nil, ErrAccountLocked
	}
	if u.PasswordHash == nil {
		return "", nil, ErrOAuthOnly
	}

	if bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) != nil {
		return "", nil, s.recordFailure(ctx, u)
	}

	if u.FailedAttempts > 0 {
		if err := s.users.ResetFailures(ctx, u.ID); err != nil {
			return "", nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	tok, err := s.signer.Sign(u.ID, u.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return tok, u, nil
}

func (s *AuthService) recordFailure(ctx context.Context, u *models.User) error {
	threshold := int(s.threshold.Load())
	updated, flipped, err := s.users.RecordFailure(ctx, u.ID, threshold)
	if err != nil {
		return fmt.Errorf("auth.recordFailure: %w", err)
	}
	if !updated.Locked {
		return ErrInvalidPassword
	}
	if flipped {
		// The request whose UPDATE flipped the flag owns the notification.
		// Delivery must not delay the response.
		user := *updated
		go func() {
			if err := s.notifier.AccountLocked(&user); err != nil {
				global.Logger.Warn().Err(err).Uint("user_id", user.ID).Msg("lock notification failed")
			}
		}()
	}
	return ErrAccountLocked
}

// Logout puts the token on the revocation list for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, tokenStr string, claims *jwtutil.Claims) error {
	ttl := time.Hour
	if claims != nil && claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.blacklist.Revoke(ctx, tokenStr, ttl); err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}
	return nil
}

// OAuthLogin finds or creates the local account for a verified provider
// profile and issues a local session token. Provider-created accounts never
// get a password hash.
func (s *AuthService) OAuthLogin(ctx context.Context, provider string, p *oauth.Profile) (string, *models.User, error) {
	const op = "auth.OAuthLogin"

	u, err := s.users.FindByProvider(ctx, provider, p.Subject)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("%s: %w", op, err)
		}
		u, err = s.createOAuthUser(ctx, provider, p)
		if err != nil {
			return "", nil, err
		}
	}
	tok, err := s.signer.Sign(u.ID, u.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return tok, u, nil
}

func (s *AuthService) createOAuthUser(ctx context.Context, provider string, p *oauth.Profile) (*models.User, error) {
	const op = "auth.createOAuthUser"

	username := p.Username
	if username == "" {
		username = provider + "-" + p.Subject
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		username = username + "-" + p.Subject
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	email := p.Email
	if email == "" {
		email = fmt.Sprintf("%s@users.noreply.%s.com", username, provider)
	}

	u := &models.User{
		Username:   username,
		Email:      email,
		Role:       models.RoleUser,
		Provider:   provider,
		ProviderID: p.Subject,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
