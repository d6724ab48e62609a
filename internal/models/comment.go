package models

import "time"

// Модель комментария к посту
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"` // ID поста, к которому прикреплён комментарий
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
