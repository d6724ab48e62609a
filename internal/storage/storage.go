package storage

import (
	"errors"

	"github.com/MosinFAM/blog-platform/internal/models"
)

// ErrNotFound возвращается, когда сущности нет в хранилище
var ErrNotFound = errors.New("not found")

// Storage - интерфейс для всех типов хранилищ (in-memory и PostgreSQL).
// Выборки постов всегда отсортированы по created_at DESC, id DESC.
type Storage interface {
	// Пользователи
	CreateUser(username, displayName, passwordHash string) (models.User, error)
	UserByUsername(username string) (*models.User, error)
	UserByID(id string) (*models.User, error)

	// Посты
	AddPost(authorID, text, image string, groupID *string) (models.Post, error)
	UpdatePost(id, text, image string, groupID *string) (*models.Post, error)
	PostByID(id string) (*models.Post, error)
	DeletePost(id string) error
	Posts(limit, offset int) ([]models.Post, error)
	CountPosts() (int, error)
	PostsByGroup(groupID string, limit, offset int) ([]models.Post, error)
	CountPostsByGroup(groupID string) (int, error)
	PostsByAuthor(authorID string, limit, offset int) ([]models.Post, error)
	CountPostsByAuthor(authorID string) (int, error)
	PostsByFollowed(userID string, limit, offset int) ([]models.Post, error)
	CountPostsByFollowed(userID string) (int, error)

	// Сообщества
	Groups() ([]models.Group, error)
	GroupBySlug(slug string) (*models.Group, error)
	AddGroup(title, slug, description string) (models.Group, error)
	DeleteGroup(id string) error

	// Комментарии
	AddComment(postID, authorID, text string) (*models.Comment, error)
	CommentsByPost(postID string) ([]models.Comment, error)

	// Подписки. AddFollow идемпотентен: повторная вставка - no-op
	AddFollow(userID, authorID string) error
	DeleteFollow(userID, authorID string) error
	IsFollowing(userID, authorID string) (bool, error)
}
