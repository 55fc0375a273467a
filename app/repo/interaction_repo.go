package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"trove/app/models"
)

type InteractionRepository struct{ db *gorm.DB }

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// ToggleLike creates the (user, item) like or removes an existing one.
// It reports whether the item ends up liked.
func (r *InteractionRepository) ToggleLike(ctx context.Context, userID, itemID uint) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var like models.Like
		err := tx.Where("user_id = ? AND item_id = ?", userID, itemID).First(&like).Error
		switch {
		case err == nil:
			return tx.Delete(&like).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&models.Like{UserID: userID, ItemID: itemID}).Error
		default:
			return err
		}
	})
	return liked, err
}

func (r *InteractionRepository) CountLikes(ctx context.Context, itemID uint) (int64, error) {
	var n int64
	return n, r.db.WithContext(ctx).Model(&models.Like{}).Where("item_id = ?", itemID).Count(&n).Error
}

// RecordView inserts the (user, item) view if absent and reports whether a
// new row was created.
func (r *InteractionRepository) RecordView(ctx context.Context, userID, itemID uint) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var view models.View
		err := tx.Where("user_id = ? AND item_id = ?", userID, itemID).First(&view).Error
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			return tx.Create(&models.View{UserID: userID, ItemID: itemID}).Error
		default:
			return err
		}
	})
	return created, err
}

func (r *InteractionRepository) CountViews(ctx context.Context, itemID uint) (int64, error) {
	var n int64
	return n, r.db.WithContext(ctx).Model(&models.View{}).Where("item_id = ?", itemID).Count(&n).Error
}

func (r *InteractionRepository) CreateComment(ctx context.Context, c *models.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *InteractionRepository) ListComments(ctx context.Context, itemID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Where("item_id = ?", itemID).Order("id").Find(&comments).Error
	return comments, err
}

// FindOwnedComment returns the comment only when authorID wrote it.
func (r *InteractionRepository) FindOwnedComment(ctx context.Context, id, authorID uint) (*models.Comment, error) {
	var c models.Comment
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, authorID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *InteractionRepository) SaveComment(ctx context.Context, c *models.Comment) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *InteractionRepository) DeleteComment(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}
