package models

import "time"

type Item struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Name        string    `gorm:"size:191;not null" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	PhotoPath   string    `gorm:"size:255" json:"-"`
	PhotoSize   int64     `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Like and View carry a composite unique index so a (user, item) pair can
// hold at most one row each.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_like_user_item;not null" json:"user_id"`
	ItemID    uint      `gorm:"uniqueIndex:idx_like_user_item;not null" json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}

type View struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_view_user_item;not null" json:"user_id"`
	ItemID    uint      `gorm:"uniqueIndex:idx_view_user_item;not null" json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ItemID    uint      `gorm:"index;not null" json:"item_id"`
	Body      string    `gorm:"size:1024;not null" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
