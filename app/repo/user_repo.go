package repo

import (
	"context"

	"gorm.io/gorm"

	"trove/app/models"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByProvider(ctx context.Context, provider, subject string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_id = ?", provider, subject).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	return users, r.db.WithContext(ctx).Order("id").Find(&users).Error
}

func (r *UserRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

// RecordFailure bumps the failure counter with an in-database increment, so
// two concurrent failed logins cannot both observe the pre-threshold count,
// then flips the lock flag with a separate conditional UPDATE. The flip
// statement matches at most once per lock, and its row count tells the caller
// whether this request performed the transition.
func (r *UserRepository) RecordFailure(ctx context.Context, id uint, threshold int) (*models.User, bool, error) {
	var flipped bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ? AND locked = ?", id, false).
			Update("failed_attempts", gorm.Expr("failed_attempts + 1")).Error; err != nil {
			return err
		}
		res := tx.Model(&models.User{}).
			Where("id = ? AND locked = ? AND failed_attempts >= ?", id, false, threshold).
			Update("locked", true)
		if res.Error != nil {
			return res.Error
		}
		flipped = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return u, flipped, nil
}

func (r *UserRepository) ResetFailures(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("failed_attempts", 0).Error
}
