package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/MosinFAM/blog-platform/internal/models"

	"github.com/google/uuid"
)

// MemoryStorage - хранилище в памяти. Используется в тестах
// и при запуске без PostgreSQL
type MemoryStorage struct {
	users    map[string]models.User
	posts    map[string]models.Post
	groups   map[string]models.Group
	comments map[string][]models.Comment // по postID
	follows  map[string]map[string]bool  // userID -> authorID
	mu       sync.RWMutex
}

// NewMemoryStorage создает новое in-memory хранилище
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:    make(map[string]models.User),
		posts:    make(map[string]models.Post),
		groups:   make(map[string]models.Group),
		comments: make(map[string][]models.Comment),
		follows:  make(map[string]map[string]bool),
	}
}

func (s *MemoryStorage) CreateUser(username, displayName, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return models.User{}, ErrAlreadyExists
		}
	}
	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryStorage) UserByUsername(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) UserByID(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &user, nil
}

// AddPost добавляет новый пост
func (s *MemoryStorage) AddPost(authorID, text, image string, groupID *string) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := models.Post{
		ID:        uuid.New().String(),
		Text:      text,
		Image:     image,
		GroupID:   groupID,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}
	s.posts[post.ID] = post
	return post, nil
}

func (s *MemoryStorage) UpdatePost(id, text, image string, groupID *string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, ErrNotFound
	}
	post.Text = text
	post.Image = image
	post.GroupID = groupID
	s.posts[id] = post
	return &post, nil
}

func (s *MemoryStorage) PostByID(id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &post, nil
}

// DeletePost удаляет пост вместе с его комментариями
func (s *MemoryStorage) DeletePost(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[id]; !exists {
		return ErrNotFound
	}
	delete(s.posts, id)
	delete(s.comments, id)
	return nil
}

func (s *MemoryStorage) Posts(limit, offset int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slicePosts(s.sortedPosts(func(models.Post) bool { return true }), limit, offset), nil
}

func (s *MemoryStorage) CountPosts() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts), nil
}

func (s *MemoryStorage) PostsByGroup(groupID string, limit, offset int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slicePosts(s.sortedPosts(func(p models.Post) bool {
		return p.GroupID != nil && *p.GroupID == groupID
	}), limit, offset), nil
}

func (s *MemoryStorage) CountPostsByGroup(groupID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.posts {
		if p.GroupID != nil && *p.GroupID == groupID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStorage) PostsByAuthor(authorID string, limit, offset int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slicePosts(s.sortedPosts(func(p models.Post) bool {
		return p.AuthorID == authorID
	}), limit, offset), nil
}

func (s *MemoryStorage) CountPostsByAuthor(authorID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStorage) PostsByFollowed(userID string, limit, offset int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	followed := s.follows[userID]
	return slicePosts(s.sortedPosts(func(p models.Post) bool {
		return followed[p.AuthorID]
	}), limit, offset), nil
}

func (s *MemoryStorage) CountPostsByFollowed(userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	followed := s.follows[userID]
	n := 0
	for _, p := range s.posts {
		if followed[p.AuthorID] {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStorage) Groups() ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups, nil
}

func (s *MemoryStorage) GroupBySlug(slug string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.groups {
		if g.Slug == slug {
			group := g
			return &group, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) AddGroup(title, slug, description string) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.Slug == slug {
			return models.Group{}, ErrAlreadyExists
		}
	}
	group := models.Group{
		ID:          uuid.New().String(),
		Title:       title,
		Slug:        slug,
		Description: description,
	}
	s.groups[group.ID] = group
	return group, nil
}

// DeleteGroup удаляет сообщество и обнуляет group_id у его постов.
// Сами посты не трогаем
func (s *MemoryStorage) DeleteGroup(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[id]; !exists {
		return ErrNotFound
	}
	delete(s.groups, id)
	for pid, p := range s.posts {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
			s.posts[pid] = p
		}
	}
	return nil
}

// AddComment добавляет комментарий в память
func (s *MemoryStorage) AddComment(postID, authorID, text string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[postID]; !exists {
		return nil, ErrNotFound
	}
	comment := models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.comments[postID] = append(s.comments[postID], comment)
	return &comment, nil
}

func (s *MemoryStorage) CommentsByPost(postID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.posts[postID]; !exists {
		return nil, ErrNotFound
	}
	comments := make([]models.Comment, len(s.comments[postID]))
	copy(comments, s.comments[postID])
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
	return comments, nil
}

// AddFollow создаёт подписку, повторная вставка - no-op. Проверка и
// вставка атомарны под мьютексом, как уникальный индекс в PostgreSQL
func (s *MemoryStorage) AddFollow(userID, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.follows[userID] == nil {
		s.follows[userID] = make(map[string]bool)
	}
	s.follows[userID][authorID] = true
	return nil
}

func (s *MemoryStorage) DeleteFollow(userID, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.follows[userID], authorID)
	return nil
}

func (s *MemoryStorage) IsFollowing(userID, authorID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.follows[userID][authorID], nil
}

// EdgeCount возвращает общее число подписок. Нужен тестам идемпотентности
func (s *MemoryStorage) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, authors := range s.follows {
		n += len(authors)
	}
	return n
}

// sortedPosts собирает посты по фильтру, новые сверху, при равном
// времени - по id по убыванию. Вызывать под RLock
func (s *MemoryStorage) sortedPosts(match func(models.Post) bool) []models.Post {
	var posts []models.Post
	for _, p := range s.posts {
		if match(p) {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts
}

func slicePosts(posts []models.Post, limit, offset int) []models.Post {
	if offset >= len(posts) {
		return []models.Post{}
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}
