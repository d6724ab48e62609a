// Package feed собирает ленты постов: общую, по сообществу, по автору
// и по подпискам. Каждая лента - это счётчик по области видимости плюс
// одна страница из хранилища.
package feed

import (
	"github.com/MosinFAM/blog-platform/internal/models"
	"github.com/MosinFAM/blog-platform/internal/pagination"
	"github.com/MosinFAM/blog-platform/internal/storage"
)

type Service struct {
	store storage.Storage
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// Page - страница ленты. Total - размер всей области видимости,
// а не страницы (для счётчика постов в профиле)
type Page struct {
	Posts []models.Post   `json:"posts"`
	Page  pagination.Page `json:"page"`
	Total int             `json:"total"`
}

// Global возвращает страницу общей ленты
func (s *Service) Global(pageNum int) (*Page, error) {
	total, err := s.store.CountPosts()
	if err != nil {
		return nil, err
	}
	page := pagination.New(total, pagination.PerPage).Pick(pageNum)
	posts, err := s.store.Posts(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &Page{Posts: posts, Page: page, Total: total}, nil
}

// Group возвращает сообщество по slug и страницу его ленты.
// Неизвестный slug - storage.ErrNotFound
func (s *Service) Group(slug string, pageNum int) (*models.Group, *Page, error) {
	group, err := s.store.GroupBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.store.CountPostsByGroup(group.ID)
	if err != nil {
		return nil, nil, err
	}
	page := pagination.New(total, pagination.PerPage).Pick(pageNum)
	posts, err := s.store.PostsByGroup(group.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, nil, err
	}
	return group, &Page{Posts: posts, Page: page, Total: total}, nil
}

// Profile возвращает автора по username и страницу его постов.
// Неизвестный username - storage.ErrNotFound
func (s *Service) Profile(username string, pageNum int) (*models.User, *Page, error) {
	author, err := s.store.UserByUsername(username)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.store.CountPostsByAuthor(author.ID)
	if err != nil {
		return nil, nil, err
	}
	page := pagination.New(total, pagination.PerPage).Pick(pageNum)
	posts, err := s.store.PostsByAuthor(author.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, nil, err
	}
	return author, &Page{Posts: posts, Page: page, Total: total}, nil
}

// Following возвращает ленту подписок. Пустой список подписок - это
// пустая страница, а не ошибка
func (s *Service) Following(userID string, pageNum int) (*Page, error) {
	total, err := s.store.CountPostsByFollowed(userID)
	if err != nil {
		return nil, err
	}
	page := pagination.New(total, pagination.PerPage).Pick(pageNum)
	posts, err := s.store.PostsByFollowed(userID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &Page{Posts: posts, Page: page, Total: total}, nil
}
