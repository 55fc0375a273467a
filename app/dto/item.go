package dto

import (
	"time"

	"trove/app/models"
	"trove/app/upload"
)

type ItemResponse struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhotoPath   string    `json:"photo_path,omitempty"`
	PhotoSize   string    `json:"photo_size,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewItemResponse(it *models.Item) ItemResponse {
	resp := ItemResponse{
		ID: it.ID, UserID: it.UserID, Name: it.Name, Description: it.Description,
		CreatedAt: it.CreatedAt, UpdatedAt: it.UpdatedAt,
	}
	if it.PhotoPath != "" {
		resp.PhotoPath = it.PhotoPath
		resp.PhotoSize = upload.FormatSize(it.PhotoSize)
	}
	return resp
}

func NewItemList(items []models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewItemResponse(&items[i]))
	}
	return out
}

type CommentRequest struct {
	Comment string `json:"comment"`
}

type CommentResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	ItemID    uint      `json:"item_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID: c.ID, UserID: c.UserID, ItemID: c.ItemID, Comment: c.Body,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

type InteractionResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}
