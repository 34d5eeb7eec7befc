package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Post struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"not null"                 json:"title"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `gorm:"not null"                 json:"content"`
	Category  string    `gorm:"index"                    json:"category"`
	ImageURL  string    `json:"image_url"`
	Author    string    `json:"author"`
	CreatedAt time.Time `gorm:"index"                    json:"created_at"`
}

// At most one row per (post, user); the unique index is the backstop for
// concurrent toggles.
type Like struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                 json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint      `gorm:"index;not null"           json:"post_id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	Content   string    `gorm:"not null"                 json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
