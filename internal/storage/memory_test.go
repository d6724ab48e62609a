package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addUser(t *testing.T, s *MemoryStorage, username string) string {
	t.Helper()
	user, err := s.CreateUser(username, username, "hash")
	require.NoError(t, err)
	return user.ID
}

func TestPosts_Empty(t *testing.T) {
	s := NewMemoryStorage()

	posts, err := s.Posts(10, 0)

	assert.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPosts_NewestFirst(t *testing.T) {
	s := NewMemoryStorage()
	author := addUser(t, s, "leo")

	first, err := s.AddPost(author, "first", "", nil)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second, err := s.AddPost(author, "second", "", nil)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	third, err := s.AddPost(author, "third", "", nil)
	require.NoError(t, err)

	posts, err := s.Posts(10, 0)

	// Assert новые посты сверху
	assert.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, third.ID, posts[0].ID)
	assert.Equal(t, second.ID, posts[1].ID)
	assert.Equal(t, first.ID, posts[2].ID)
}

func TestPosts_LimitOffset(t *testing.T) {
	s := NewMemoryStorage()
	author := addUser(t, s, "leo")

	for i := 0; i < 5; i++ {
		_, err := s.AddPost(author, "post", "", nil)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	page, err := s.Posts(2, 4)
	assert.NoError(t, err)
	assert.Len(t, page, 1)

	page, err = s.Posts(2, 10)
	assert.NoError(t, err)
	assert.Empty(t, page)
}

func TestPostByID_NotFound(t *testing.T) {
	s := NewMemoryStorage()

	post, err := s.PostByID("nonexistent-id")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, post)
}

func TestUpdatePost_KeepsCreatedAt(t *testing.T) {
	s := NewMemoryStorage()
	author := addUser(t, s, "leo")

	post, err := s.AddPost(author, "before", "", nil)
	require.NoError(t, err)

	updated, err := s.UpdatePost(post.ID, "after", "pic.png", nil)

	assert.NoError(t, err)
	assert.Equal(t, "after", updated.Text)
	assert.Equal(t, "pic.png", updated.Image)
	assert.Equal(t, post.CreatedAt, updated.CreatedAt)
	assert.Equal(t, post.AuthorID, updated.AuthorID)
}

func TestPostsByGroup_ScopeIsolation(t *testing.T) {
	s := NewMemoryStorage()
	author := addUser(t, s, "leo")

	g1, err := s.AddGroup("Cats", "cats", "")
	require.NoError(t, err)
	g2, err := s.AddGroup("Dogs", "dogs", "")
	require.NoError(t, err)

	_, err = s.AddPost(author, "about cats", "", &g1.ID)
	require.NoError(t, err)

	// Пост из g1 не должен попасть в выдачу g2
	posts, err := s.PostsByGroup(g2.ID, 10, 0)
	assert.NoError(t, err)
	assert.Empty(t, posts)

	posts, err = s.PostsByGroup(g1.ID, 10, 0)
	assert.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestDeleteGroup_KeepsPosts(t *testing.T) {
	s := NewMemoryStorage()
	author := addUser(t, s, "leo")

	group, err := s.AddGroup("Cats", "cats", "")
	require.NoError(t, err)
	post, err := s.AddPost(author, "about cats", "", &group.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteGroup(group.ID))

	// Пост жив, но ссылка на сообщество обнулена
	got, err := s.PostByID(post.ID)
	assert.NoError(t, err)
	assert.Nil(t, got.GroupID)
}

func TestAddGroup_DuplicateSlug(t *testing.T) {
	s := NewMemoryStorage()

	_, err := s.AddGroup("Cats", "cats", "")
	require.NoError(t, err)

	_, err = s.AddGroup("Other cats", "cats", "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestDeletePost_CascadesComments(t *testing.T) {
	s := NewMemoryStorage()
	author := addUser(t, s, "leo")

	post, err := s.AddPost(author, "text", "", nil)
	require.NoError(t, err)
	_, err = s.AddComment(post.ID, author, "nice")
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(post.ID))

	_, err = s.CommentsByPost(post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddComment_NoPost(t *testing.T) {
	s := NewMemoryStorage()

	comment, err := s.AddComment("nonexistent-post-id", "author", "hi")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, comment)
}

func TestCommentsByPost_NewestFirst(t *testing.T) {
	s := NewMemoryStorage()
	author := addUser(t, s, "leo")

	post, err := s.AddPost(author, "text", "", nil)
	require.NoError(t, err)

	first, err := s.AddComment(post.ID, author, "first")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second, err := s.AddComment(post.ID, author, "second")
	require.NoError(t, err)

	comments, err := s.CommentsByPost(post.ID)
	assert.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, second.ID, comments[0].ID)
	assert.Equal(t, first.ID, comments[1].ID)
}

func TestAddFollow_Idempotent(t *testing.T) {
	s := NewMemoryStorage()
	user := addUser(t, s, "leo")
	author := addUser(t, s, "anna")

	require.NoError(t, s.AddFollow(user, author))
	require.NoError(t, s.AddFollow(user, author))

	// Ровно одна подписка, повторная вставка - no-op
	assert.Equal(t, 1, s.EdgeCount())

	following, err := s.IsFollowing(user, author)
	assert.NoError(t, err)
	assert.True(t, following)
}

func TestDeleteFollow_Absent(t *testing.T) {
	s := NewMemoryStorage()
	user := addUser(t, s, "leo")
	author := addUser(t, s, "anna")

	// Удаление несуществующей подписки не должно падать
	assert.NoError(t, s.DeleteFollow(user, author))
	assert.Equal(t, 0, s.EdgeCount())
}

func TestPostsByFollowed(t *testing.T) {
	s := NewMemoryStorage()
	reader := addUser(t, s, "reader")
	followed := addUser(t, s, "followed")
	other := addUser(t, s, "other")

	_, err := s.AddPost(followed, "from followed", "", nil)
	require.NoError(t, err)
	_, err = s.AddPost(other, "from other", "", nil)
	require.NoError(t, err)

	require.NoError(t, s.AddFollow(reader, followed))

	posts, err := s.PostsByFollowed(reader, 10, 0)
	assert.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "from followed", posts[0].Text)

	total, err := s.CountPostsByFollowed(reader)
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCountPostsByAuthor(t *testing.T) {
	s := NewMemoryStorage()
	author := addUser(t, s, "leo")
	other := addUser(t, s, "anna")

	for i := 0; i < 13; i++ {
		_, err := s.AddPost(author, "post", "", nil)
		require.NoError(t, err)
	}
	_, err := s.AddPost(other, "post", "", nil)
	require.NoError(t, err)

	// Счётчик не зависит от размера страницы
	total, err := s.CountPostsByAuthor(author)
	assert.NoError(t, err)
	assert.Equal(t, 13, total)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := NewMemoryStorage()

	_, err := s.CreateUser("leo", "Leo", "hash")
	require.NoError(t, err)

	_, err = s.CreateUser("leo", "Another Leo", "hash")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}
