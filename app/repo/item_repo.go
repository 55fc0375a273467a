package repo

import (
	"context"

	"gorm.io/gorm"

	"trove/app/models"
)

type ItemRepository struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) *ItemRepository { return &ItemRepository{db: db} }

func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *ItemRepository) FindByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindOwned returns the item only when ownerID matches; callers cannot tell
// a foreign item from a missing one.
func (r *ItemRepository) FindOwned(ctx context.Context, id, ownerID uint) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Item, error) {
	var items []models.Item
	return items, r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("id").Find(&items).Error
}

func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteCascade removes the item and its interactions in one transaction.
func (r *ItemRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.View{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Item{}, id).Error
	})
}

// DeleteOwnedBy removes every item a user owns, plus the interactions on
// those items and the interactions the user left elsewhere. Used by the
// user cascade; returns the items so the caller can remove stored photos.
func (r *ItemRepository) DeleteOwnedBy(ctx context.Context, ownerID uint) ([]models.Item, error) {
	items, err := r.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		if len(ids) > 0 {
			if err := tx.Where("item_id IN ?", ids).Delete(&models.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("item_id IN ?", ids).Delete(&models.View{}).Error; err != nil {
				return err
			}
			if err := tx.Where("item_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", ownerID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", ownerID).Delete(&models.View{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", ownerID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", ownerID).Delete(&models.Item{}).Error
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
