package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"gorm.io/gorm"

	"trove/app/models"
	"trove/app/repo"
	"trove/app/upload"
	"trove/global"
)

type ItemService struct {
	items        *repo.ItemRepository
	interactions *repo.InteractionRepository
	photos       *upload.Store
}

func NewItemService(items *repo.ItemRepository, interactions *repo.InteractionRepository, photos *upload.Store) *ItemService {
	return &ItemService{items: items, interactions: interactions, photos: photos}
}

func (s *ItemService) Create(ctx context.Context, ownerID uint, name, description string, photo *multipart.FileHeader) (*models.Item, error) {
	const op = "item.Create"

	item := &models.Item{UserID: ownerID, Name: name, Description: description}
	if photo != nil {
		path, size, err := s.photos.Save(photo)
		if err != nil {
			return nil, err
		}
		item.PhotoPath, item.PhotoSize = path, size
	}
	if err := s.items.Create(ctx, item); err != nil {
		if item.PhotoPath != "" {
			if rmErr := s.photos.Remove(item.PhotoPath); rmErr != nil {
				global.Logger.Warn().Err(rmErr).Str("path", item.PhotoPath).Msg("photo cleanup failed")
			}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

func (s *ItemService) List(ctx context.Context, ownerID uint) ([]models.Item, error) {
	return s.items.ListByOwner(ctx, ownerID)
}

func (s *ItemService) Get(ctx context.Context, id, ownerID uint) (*models.Item, error) {
	item, err := s.items.FindOwned(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("item.Get: %w", err)
	}
	return item, nil
}

// Update changes name/description and, when a new photo arrives, swaps the
// stored file. The old file is removed best-effort after the row persists.
func (s *ItemService) Update(ctx context.Context, id, ownerID uint, name, description string, photo *multipart.FileHeader) (*models.Item, error) {
	const op = "item.Update"

	item, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		item.Name = name
	}
	if description != "" {
		item.Description = description
	}

	oldPath := ""
	if photo != nil {
		path, size, err := s.photos.Save(photo)
		if err != nil {
			return nil, err
		}
		oldPath = item.PhotoPath
		item.PhotoPath, item.PhotoSize = path, size
	}
	if err := s.items.Save(ctx, item); err != nil {
		if photo != nil {
			if rmErr := s.photos.Remove(item.PhotoPath); rmErr != nil {
				global.Logger.Warn().Err(rmErr).Str("path", item.PhotoPath).Msg("photo cleanup failed")
			}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if oldPath != "" {
		if err := s.photos.Remove(oldPath); err != nil {
			global.Logger.Warn().Err(err).Str("path", oldPath).Msg("stale photo cleanup failed")
		}
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, id, ownerID uint) error {
	item, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if err := s.items.DeleteCascade(ctx, item.ID); err != nil {
		return fmt.Errorf("item.Delete: %w", err)
	}
	if item.PhotoPath != "" {
		if err := s.photos.Remove(item.PhotoPath); err != nil {
			global.Logger.Warn().Err(err).Str("path", item.PhotoPath).Msg("photo cleanup failed")
		}
	}
	return nil
}

// requireItem checks existence without the ownership filter; any
// authenticated user may view, like, or comment.
func (s *ItemService) requireItem(ctx context.Context, id uint) (*models.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("item.requireItem: %w", err)
	}
	return item, nil
}

func (s *ItemService) RecordView(ctx context.Context, userID, itemID uint) (bool, int64, error) {
	if _, err := s.requireItem(ctx, itemID); err != nil {
		return false, 0, err
	}
	created, err := s.interactions.RecordView(ctx, userID, itemID)
	if err != nil {
		return false, 0, fmt.Errorf("item.RecordView: %w", err)
	}
	n, err := s.interactions.CountViews(ctx, itemID)
	if err != nil {
		return created, 0, fmt.Errorf("item.RecordView: %w", err)
	}
	return created, n, nil
}

func (s *ItemService) ToggleLike(ctx context.Context, userID, itemID uint) (bool, int64, error) {
	if _, err := s.requireItem(ctx, itemID); err != nil {
		return false, 0, err
	}
	liked, err := s.interactions.ToggleLike(ctx, userID, itemID)
	if err != nil {
		return false, 0, fmt.Errorf("item.ToggleLike: %w", err)
	}
	n, err := s.interactions.CountLikes(ctx, itemID)
	if err != nil {
		return liked, 0, fmt.Errorf("item.ToggleLike: %w", err)
	}
	return liked, n, nil
}

func (s *ItemService) AddComment(ctx context.Context, userID, itemID uint, body string) (*models.Comment, error) {
	if _, err := s.requireItem(ctx, itemID); err != nil {
		return nil, err
	}
	c := &models.Comment{UserID: userID, ItemID: itemID, Body: body}
	if err := s.interactions.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("item.AddComment: %w", err)
	}
	return c, nil
}

func (s *ItemService) ListComments(ctx context.Context, itemID uint) ([]models.Comment, error) {
	if _, err := s.requireItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.interactions.ListComments(ctx, itemID)
}

func (s *ItemService) UpdateComment(ctx context.Context, id, authorID uint, body string) (*models.Comment, error) {
	c, err := s.interactions.FindOwnedComment(ctx, id, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("item.UpdateComment: %w", err)
	}
	c.Body = body
	if err := s.interactions.SaveComment(ctx, c); err != nil {
		return nil, fmt.Errorf("item.UpdateComment: %w", err)
	}
	return c, nil
}

func (s *ItemService) DeleteComment(ctx context.Context, id, authorID uint) error {
	c, err := s.interactions.FindOwnedComment(ctx, id, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("item.DeleteComment: %w", err)
	}
	if err := s.interactions.DeleteComment(ctx, c.ID); err != nil {
		return fmt.Errorf("item.DeleteComment: %w", err)
	}
	return nil
}
