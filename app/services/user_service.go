package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"trove/app/models"
	"trove/app/repo"
	"trove/app/upload"
	"trove/global"
)

type UserService struct {
	users  *repo.UserRepository
	items  *repo.ItemRepository
	photos *upload.Store
}

func NewUserService(users *repo.UserRepository, items *repo.ItemRepository, photos *upload.Store) *UserService {
	return &UserService{users: users, items: items, photos: photos}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user.Get: %w", err)
	}
	return u, nil
}

// UpdateParams carries the administrative fields; nil means leave as is.
// Setting Locked false also resets the failure counter, which is the only
// way a locked account comes back.
type UpdateParams struct {
	Username *string
	Email    *string
	Role     *models.Role
	Locked   *bool
}

func (s *UserService) Update(ctx context.Context, id uint, p UpdateParams) (*models.User, error) {
	const op = "user.Update"

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if p.Username != nil {
		fields["username"] = *p.Username
	}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.Role != nil {
		if !models.ValidRole(*p.Role) {
			return nil, ErrInvalidRole
		}
		fields["role"] = *p.Role
	}
	if p.Locked != nil {
		fields["locked"] = *p.Locked
		if !*p.Locked {
			fields["failed_attempts"] = 0
		}
	}
	if len(fields) > 0 {
		if err := s.users.Update(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return s.Get(ctx, id)
}

// Delete removes the user, their items and interactions, and the items'
// stored photos. File removal is best-effort; a failed unlink is logged and
// the database cascade proceeds.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	const op = "user.Delete"

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	items, err := s.items.DeleteOwnedBy(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, it := range items {
		if it.PhotoPath == "" {
			continue
		}
		if err := s.photos.Remove(it.PhotoPath); err != nil {
			global.Logger.Warn().Err(err).Str("path", it.PhotoPath).Msg("photo cleanup failed")
		}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
