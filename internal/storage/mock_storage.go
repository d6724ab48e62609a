package storage

import (
	"github.com/MosinFAM/blog-platform/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateUser(username, displayName, passwordHash string) (models.User, error) {
	args := m.Called(username, displayName, passwordHash)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStorage) UserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) UserByID(id string) (*models.User, error) {
	args := m.Called(id)
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) AddPost(authorID, text, image string, groupID *string) (models.Post, error) {
	args := m.Called(authorID, text, image, groupID)
	return args.Get(0).(models.Post), args.Error(1)
}

func (m *MockStorage) UpdatePost(id, text, image string, groupID *string) (*models.Post, error) {
	args := m.Called(id, text, image, groupID)
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockStorage) PostByID(id string) (*models.Post, error) {
	args := m.Called(id)
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockStorage) DeletePost(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) Posts(limit, offset int) ([]models.Post, error) {
	args := m.Called(limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockStorage) CountPosts() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) PostsByGroup(groupID string, limit, offset int) ([]models.Post, error) {
	args := m.Called(groupID, limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockStorage) CountPostsByGroup(groupID string) (int, error) {
	args := m.Called(groupID)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) PostsByAuthor(authorID string, limit, offset int) ([]models.Post, error) {
	args := m.Called(authorID, limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockStorage) CountPostsByAuthor(authorID string) (int, error) {
	args := m.Called(authorID)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) PostsByFollowed(userID string, limit, offset int) ([]models.Post, error) {
	args := m.Called(userID, limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockStorage) CountPostsByFollowed(userID string) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) Groups() ([]models.Group, error) {
	args := m.Called()
	return args.Get(0).([]models.Group), args.Error(1)
}

func (m *MockStorage) GroupBySlug(slug string) (*models.Group, error) {
	args := m.Called(slug)
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockStorage) AddGroup(title, slug, description string) (models.Group, error) {
	args := m.Called(title, slug, description)
	return args.Get(0).(models.Group), args.Error(1)
}

func (m *MockStorage) DeleteGroup(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) AddComment(postID, authorID, text string) (*models.Comment, error) {
	args := m.Called(postID, authorID, text)
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockStorage) CommentsByPost(postID string) ([]models.Comment, error) {
	args := m.Called(postID)
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockStorage) AddFollow(userID, authorID string) error {
	args := m.Called(userID, authorID)
	return args.Error(0)
}

func (m *MockStorage) DeleteFollow(userID, authorID string) error {
	args := m.Called(userID, authorID)
	return args.Error(0)
}

func (m *MockStorage) IsFollowing(userID, authorID string) (bool, error) {
	args := m.Called(userID, authorID)
	return args.Bool(0), args.Error(1)
}
