package models

import "time"

// Модель поста
type Post struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Image     string    `json:"image,omitempty"`
	GroupID   *string   `json:"groupId"` // null, если пост вне сообщества
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}
