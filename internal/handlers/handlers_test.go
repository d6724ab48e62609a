package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MosinFAM/blog-platform/internal/auth"
	"github.com/MosinFAM/blog-platform/internal/cache"
	"github.com/MosinFAM/blog-platform/internal/metrics"
	"github.com/MosinFAM/blog-platform/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*gin.Engine, *storage.MemoryStorage, *cache.MemoryCache) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStorage()
	mc := cache.NewMemoryCache()
	sessions := auth.NewSessions([]byte("test-secret"), store)
	h := New(store, mc, sessions, metrics.InitMetrics())
	return h.Router(), store, mc
}

func doJSON(router *gin.Engine, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// signup регистрирует пользователя и возвращает его сессионную куку
func signup(t *testing.T, router *gin.Engine, username string) []*http.Cookie {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/auth/signup",
		`{"username":"`+username+`","password":"secret"}`, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestSignupLoginFlow(t *testing.T) {
	router, _, _ := newTestApp(t)

	cookies := signup(t, router, "leo")

	// под сессией можно писать
	w := doJSON(router, http.MethodPost, "/create", `{"text":"first"}`, cookies)
	assert.Equal(t, http.StatusCreated, w.Code)

	// неверный пароль
	w = doJSON(router, http.MethodPost, "/auth/login", `{"username":"leo","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// верный пароль
	w = doJSON(router, http.MethodPost, "/auth/login", `{"username":"leo","password":"secret"}`, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	router, _, _ := newTestApp(t)
	signup(t, router, "leo")

	w := doJSON(router, http.MethodPost, "/auth/signup", `{"username":"leo","password":"other"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already taken")
}

func TestRequireAuth_RedirectsToLogin(t *testing.T) {
	router, _, _ := newTestApp(t)

	w := doJSON(router, http.MethodPost, "/create", `{"text":"x"}`, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?next=%2Fcreate", w.Header().Get("Location"))

	w = doJSON(router, http.MethodGet, "/follow", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?next=%2Ffollow", w.Header().Get("Location"))
}

func TestIndex_CacheServesStalePage(t *testing.T) {
	router, store, mc := newTestApp(t)

	user, err := store.CreateUser("leo", "", "x")
	require.NoError(t, err)
	post, err := store.AddPost(user.ID, "cached text", "", nil)
	require.NoError(t, err)

	w := doJSON(router, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cached text")

	// пост удалён, но в пределах TTL лента отдаётся байт-в-байт прежней
	require.NoError(t, store.DeletePost(post.ID))
	w = doJSON(router, http.MethodGet, "/", "", nil)
	assert.Contains(t, w.Body.String(), "cached text")

	mc.Clear(context.Background())
	w = doJSON(router, http.MethodGet, "/", "", nil)
	assert.NotContains(t, w.Body.String(), "cached text")
}

func TestIndex_PagesCachedSeparately(t *testing.T) {
	router, store, _ := newTestApp(t)

	user, err := store.CreateUser("leo", "", "x")
	require.NoError(t, err)
	for i := 0; i < 11; i++ {
		_, err := store.AddPost(user.ID, "post", "", nil)
		require.NoError(t, err)
	}

	w := doJSON(router, http.MethodGet, "/?page=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var first struct {
		Page struct {
			Number int `json:"number"`
		} `json:"page"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, 1, first.Page.Number)

	w = doJSON(router, http.MethodGet, "/?page=2", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, 2, first.Page.Number)
}

func TestGroupFeed_NotFound(t *testing.T) {
	router, _, _ := newTestApp(t)

	w := doJSON(router, http.MethodGet, "/group/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfile_NotFound(t *testing.T) {
	router, _, _ := newTestApp(t)

	w := doJSON(router, http.MethodGet, "/profile/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostDetail_NotFound(t *testing.T) {
	router, _, _ := newTestApp(t)

	w := doJSON(router, http.MethodGet, "/posts/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePost_Validation(t *testing.T) {
	router, _, _ := newTestApp(t)
	cookies := signup(t, router, "leo")

	w := doJSON(router, http.MethodPost, "/create", `{"text":"   "}`, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "text")

	w = doJSON(router, http.MethodPost, "/create", `{"text":"ok","group":"no-such-group"}`, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown group")
}

func TestCreatePost_InGroup(t *testing.T) {
	router, store, _ := newTestApp(t)
	cookies := signup(t, router, "leo")

	group, err := store.AddGroup("Cats", "cats", "")
	require.NoError(t, err)

	w := doJSON(router, http.MethodPost, "/create", `{"text":"meow","group":"cats"}`, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/group/cats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "meow")
	assert.Contains(t, w.Body.String(), group.ID)
}

func TestEditPost_NonAuthorRedirects(t *testing.T) {
	router, store, _ := newTestApp(t)

	signup(t, router, "author")
	author, err := store.UserByUsername("author")
	require.NoError(t, err)
	post, err := store.AddPost(author.ID, "original", "", nil)
	require.NoError(t, err)

	other := signup(t, router, "other")
	w := doJSON(router, http.MethodPost, "/posts/"+post.ID+"/edit", `{"text":"hijacked"}`, other)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/"+post.ID, w.Header().Get("Location"))

	kept, err := store.PostByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", kept.Text)
}

func TestEditPost_Author(t *testing.T) {
	router, store, _ := newTestApp(t)
	cookies := signup(t, router, "leo")

	w := doJSON(router, http.MethodPost, "/create", `{"text":"before"}`, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	var post struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))

	w = doJSON(router, http.MethodPost, "/posts/"+post.ID+"/edit", `{"text":"after"}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	updated, err := store.PostByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Text)
}

func TestAddComment(t *testing.T) {
	router, store, _ := newTestApp(t)
	cookies := signup(t, router, "leo")

	user, err := store.UserByUsername("leo")
	require.NoError(t, err)
	post, err := store.AddPost(user.ID, "post", "", nil)
	require.NoError(t, err)

	w := doJSON(router, http.MethodPost, "/posts/"+post.ID+"/comment", `{"text":"nice"}`, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/posts/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nice")
}

func TestFollowUnfollowFlow(t *testing.T) {
	router, store, _ := newTestApp(t)

	signup(t, router, "author")
	author, err := store.UserByUsername("author")
	require.NoError(t, err)
	_, err = store.AddPost(author.ID, "from author", "", nil)
	require.NoError(t, err)

	reader := signup(t, router, "reader")

	w := doJSON(router, http.MethodPost, "/profile/author/follow", "", reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/author", w.Header().Get("Location"))

	// профиль автора глазами подписчика
	w = doJSON(router, http.MethodGet, "/profile/author", "", reader)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"following":true`)

	// лента подписок содержит пост автора
	w = doJSON(router, http.MethodGet, "/follow", "", reader)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "from author")

	w = doJSON(router, http.MethodPost, "/profile/author/unfollow", "", reader)
	assert.Equal(t, http.StatusFound, w.Code)

	w = doJSON(router, http.MethodGet, "/follow", "", reader)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "from author")
}

func TestFollow_SelfIsNoOp(t *testing.T) {
	router, store, _ := newTestApp(t)
	cookies := signup(t, router, "leo")

	w := doJSON(router, http.MethodPost, "/profile/leo/follow", "", cookies)
	assert.Equal(t, http.StatusFound, w.Code)

	user, err := store.UserByUsername("leo")
	require.NoError(t, err)
	ok, err := store.IsFollowing(user.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGroups_CreateListDelete(t *testing.T) {
	router, _, _ := newTestApp(t)
	cookies := signup(t, router, "leo")

	w := doJSON(router, http.MethodPost, "/groups", `{"title":"Cats","slug":"cats"}`, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/groups", `{"title":"Other","slug":"cats"}`, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/groups", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cats")

	w = doJSON(router, http.MethodDelete, "/group/cats", "", cookies)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodGet, "/group/cats", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
