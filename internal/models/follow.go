package models

// Подписка: user читает author
type Follow struct {
	UserID   string `json:"userId"`
	AuthorID string `json:"authorId"`
}
