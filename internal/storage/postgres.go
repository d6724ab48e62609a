package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/MosinFAM/blog-platform/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const postColumns = "id, text, image, group_id, author_id, created_at"

// ErrAlreadyExists возвращается при нарушении уникальности (username, slug)
var ErrAlreadyExists = errors.New("already exists")

// PostgresStorage - хранилище в PostgreSQL
type PostgresStorage struct {
	DB *sql.DB
}

// NewPostgresStorage создаёт экземпляр PostgreSQL-хранилища
func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{DB: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *PostgresStorage) CreateUser(username, displayName, passwordHash string) (models.User, error) {
	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	_, err := s.DB.Exec("INSERT INTO users (id, username, display_name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)",
		user.ID, user.Username, user.DisplayName, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrAlreadyExists
		}
		logrus.WithError(err).Error("Failed to insert user")
		return models.User{}, err
	}
	return user, nil
}

func (s *PostgresStorage) UserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.QueryRow("SELECT id, username, display_name, password_hash, created_at FROM users WHERE username=$1", username).
		Scan(&user.ID, &user.Username, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch user")
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStorage) UserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.QueryRow("SELECT id, username, display_name, password_hash, created_at FROM users WHERE id=$1", id).
		Scan(&user.ID, &user.Username, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch user")
		return nil, err
	}
	return &user, nil
}

// AddPost добавляет новый пост в БД
func (s *PostgresStorage) AddPost(authorID, text, image string, groupID *string) (models.Post, error) {
	post := models.Post{
		ID:        uuid.New().String(),
		Text:      text,
		Image:     image,
		GroupID:   groupID,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}
	_, err := s.DB.Exec("INSERT INTO posts (id, text, image, group_id, author_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		post.ID, post.Text, post.Image, post.GroupID, post.AuthorID, post.CreatedAt)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert post")
		return models.Post{}, err
	}
	return post, nil
}

// UpdatePost меняет text/image/group существующего поста. created_at и автор неизменяемы
func (s *PostgresStorage) UpdatePost(id, text, image string, groupID *string) (*models.Post, error) {
	post, err := scanPostRow(s.DB.QueryRow(
		"UPDATE posts SET text=$1, image=$2, group_id=$3 WHERE id=$4 RETURNING "+postColumns,
		text, image, groupID, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to update post")
		return nil, err
	}
	return post, nil
}

func (s *PostgresStorage) PostByID(id string) (*models.Post, error) {
	post, err := scanPostRow(s.DB.QueryRow("SELECT "+postColumns+" FROM posts WHERE id=$1", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch post")
		return nil, err
	}
	return post, nil
}

// DeletePost удаляет пост. Комментарии удаляются каскадом (FK)
func (s *PostgresStorage) DeletePost(id string) error {
	res, err := s.DB.Exec("DELETE FROM posts WHERE id=$1", id)
	if err != nil {
		logrus.WithError(err).Error("Failed to delete post")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) Posts(limit, offset int) ([]models.Post, error) {
	return s.queryPosts("SELECT "+postColumns+" FROM posts ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2",
		limit, offset)
}

func (s *PostgresStorage) CountPosts() (int, error) {
	return s.countRow("SELECT COUNT(*) FROM posts")
}

func (s *PostgresStorage) PostsByGroup(groupID string, limit, offset int) ([]models.Post, error) {
	return s.queryPosts("SELECT "+postColumns+" FROM posts WHERE group_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3",
		groupID, limit, offset)
}

func (s *PostgresStorage) CountPostsByGroup(groupID string) (int, error) {
	return s.countRow("SELECT COUNT(*) FROM posts WHERE group_id=$1", groupID)
}

func (s *PostgresStorage) PostsByAuthor(authorID string, limit, offset int) ([]models.Post, error) {
	return s.queryPosts("SELECT "+postColumns+" FROM posts WHERE author_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3",
		authorID, limit, offset)
}

func (s *PostgresStorage) CountPostsByAuthor(authorID string) (int, error) {
	return s.countRow("SELECT COUNT(*) FROM posts WHERE author_id=$1", authorID)
}

// PostsByFollowed возвращает посты авторов, на которых подписан userID
func (s *PostgresStorage) PostsByFollowed(userID string, limit, offset int) ([]models.Post, error) {
	return s.queryPosts(`SELECT p.id, p.text, p.image, p.group_id, p.author_id, p.created_at
		FROM posts p
		JOIN follows f ON f.author_id = p.author_id
		WHERE f.user_id = $1
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
}

func (s *PostgresStorage) CountPostsByFollowed(userID string) (int, error) {
	return s.countRow("SELECT COUNT(*) FROM posts p JOIN follows f ON f.author_id = p.author_id WHERE f.user_id=$1", userID)
}

func (s *PostgresStorage) Groups() ([]models.Group, error) {
	rows, err := s.DB.Query("SELECT id, title, slug, description FROM groups ORDER BY title")
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch groups")
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *PostgresStorage) GroupBySlug(slug string) (*models.Group, error) {
	var g models.Group
	err := s.DB.QueryRow("SELECT id, title, slug, description FROM groups WHERE slug=$1", slug).
		Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch group")
		return nil, err
	}
	return &g, nil
}

func (s *PostgresStorage) AddGroup(title, slug, description string) (models.Group, error) {
	group := models.Group{
		ID:          uuid.New().String(),
		Title:       title,
		Slug:        slug,
		Description: description,
	}
	_, err := s.DB.Exec("INSERT INTO groups (id, title, slug, description) VALUES ($1, $2, $3, $4)",
		group.ID, group.Title, group.Slug, group.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Group{}, ErrAlreadyExists
		}
		logrus.WithError(err).Error("Failed to insert group")
		return models.Group{}, err
	}
	return group, nil
}

// DeleteGroup удаляет сообщество. Посты остаются, их group_id
// обнуляется на уровне FK (ON DELETE SET NULL)
func (s *PostgresStorage) DeleteGroup(id string) error {
	res, err := s.DB.Exec("DELETE FROM groups WHERE id=$1", id)
	if err != nil {
		logrus.WithError(err).Error("Failed to delete group")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) AddComment(postID, authorID, text string) (*models.Comment, error) {
	if _, err := s.PostByID(postID); err != nil {
		return nil, err
	}
	comment := models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	_, err := s.DB.Exec("INSERT INTO comments (id, post_id, author_id, text, created_at) VALUES ($1, $2, $3, $4, $5)",
		comment.ID, comment.PostID, comment.AuthorID, comment.Text, comment.CreatedAt)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert comment")
		return nil, err
	}
	return &comment, nil
}

func (s *PostgresStorage) CommentsByPost(postID string) ([]models.Comment, error) {
	rows, err := s.DB.Query("SELECT id, post_id, author_id, text, created_at FROM comments WHERE post_id=$1 ORDER BY created_at DESC, id DESC",
		postID)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch comments")
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// AddFollow создаёт подписку. Уникальный индекс (user_id, author_id) -
// единственный источник истины: конфликт вставки это успешный no-op,
// а не ошибка (проверка-перед-вставкой гоночна)
func (s *PostgresStorage) AddFollow(userID, authorID string) error {
	_, err := s.DB.Exec("INSERT INTO follows (user_id, author_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		userID, authorID)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert follow")
	}
	return err
}

// DeleteFollow удаляет подписку. Отсутствие подписки - не ошибка
func (s *PostgresStorage) DeleteFollow(userID, authorID string) error {
	_, err := s.DB.Exec("DELETE FROM follows WHERE user_id=$1 AND author_id=$2", userID, authorID)
	if err != nil {
		logrus.WithError(err).Error("Failed to delete follow")
	}
	return err
}

func (s *PostgresStorage) IsFollowing(userID, authorID string) (bool, error) {
	var following bool
	err := s.DB.QueryRow("SELECT EXISTS (SELECT 1 FROM follows WHERE user_id=$1 AND author_id=$2)",
		userID, authorID).Scan(&following)
	if err != nil {
		logrus.WithError(err).Error("Failed to check follow")
		return false, err
	}
	return following, nil
}

func (s *PostgresStorage) queryPosts(query string, args ...interface{}) ([]models.Post, error) {
	rows, err := s.DB.Query(query, args...)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch posts")
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		var groupID sql.NullString
		if err := rows.Scan(&post.ID, &post.Text, &post.Image, &groupID, &post.AuthorID, &post.CreatedAt); err != nil {
			return nil, err
		}
		if groupID.Valid {
			g := groupID.String
			post.GroupID = &g
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func scanPostRow(row *sql.Row) (*models.Post, error) {
	var post models.Post
	var groupID sql.NullString
	if err := row.Scan(&post.ID, &post.Text, &post.Image, &groupID, &post.AuthorID, &post.CreatedAt); err != nil {
		return nil, err
	}
	if groupID.Valid {
		g := groupID.String
		post.GroupID = &g
	}
	return &post, nil
}

func (s *PostgresStorage) countRow(query string, args ...interface{}) (int, error) {
	var n int
	if err := s.DB.QueryRow(query, args...).Scan(&n); err != nil {
		logrus.WithError(err).Error("Failed to count rows")
		return 0, err
	}
	return n, nil
}
