package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/MosinFAM/blog-platform/internal/auth"
	"github.com/MosinFAM/blog-platform/internal/cache"
	"github.com/MosinFAM/blog-platform/internal/feed"
	"github.com/MosinFAM/blog-platform/internal/follow"
	"github.com/MosinFAM/blog-platform/internal/forms"
	"github.com/MosinFAM/blog-platform/internal/metrics"
	"github.com/MosinFAM/blog-platform/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Кэшируется только общая лента: отрендеренный ответ по ключу страницы.
// В пределах TTL страница может отдаваться устаревшей
const indexCacheTTL = 20 * time.Second

type Handler struct {
	store   storage.Storage
	feeds   *feed.Service
	follows *follow.Manager
	cache   cache.Cache
	auth    *auth.Sessions
	metrics *metrics.Metrics
}

func New(store storage.Storage, c cache.Cache, sessions *auth.Sessions, m *metrics.Metrics) *Handler {
	return &Handler{
		store:   store,
		feeds:   feed.NewService(store),
		follows: follow.NewManager(store),
		cache:   c,
		auth:    sessions,
		metrics: m,
	}
}

// Router собирает все маршруты приложения
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", h.Index)
	r.GET("/group/:slug", h.GroupFeed)
	r.GET("/groups", h.ListGroups)
	r.GET("/profile/:username", h.Profile)
	r.GET("/posts/:id", h.PostDetail)

	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)

	authed := r.Group("/", h.requireAuth)
	authed.GET("/follow", h.FollowFeed)
	authed.POST("/create", h.CreatePost)
	authed.POST("/posts/:id/edit", h.EditPost)
	authed.POST("/posts/:id/comment", h.AddComment)
	authed.POST("/profile/:username/follow", h.Follow)
	authed.POST("/profile/:username/unfollow", h.Unfollow)
	authed.POST("/groups", h.CreateGroup)
	authed.DELETE("/group/:slug", h.DeleteGroup)
	authed.POST("/internal/cache/clear", h.ClearCache)

	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found", "path": c.Request.URL.Path})
	})

	return r
}

// requireAuth пускает дальше только аутентифицированных, остальных
// отправляет на логин с сохранением целевого пути
func (h *Handler) requireAuth(c *gin.Context) {
	principal := h.auth.Current(c.Request)
	if !principal.IsAuthenticated {
		c.Redirect(http.StatusFound, "/auth/login?next="+url.QueryEscape(c.Request.URL.Path))
		c.Abort()
		return
	}
	c.Set("principal", principal)
	c.Next()
}

func principalFrom(c *gin.Context) auth.Principal {
	v, _ := c.Get("principal")
	principal, _ := v.(auth.Principal)
	return principal
}

// pageParam читает ?page=. Нечисловое значение - первая страница,
// выход за диапазон прижмёт пагинатор
func pageParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 1
	}
	return n
}

// Index отдаёт страницу общей ленты, на 20 секунд - из кэша
func (h *Handler) Index(c *gin.Context) {
	page := pageParam(c)
	key := fmt.Sprintf("index:page:%d", page)
	ctx := c.Request.Context()

	if body, ok := h.cache.Get(ctx, key); ok {
		h.metrics.CacheHits.WithLabelValues("index").Inc()
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}

	feedPage, err := h.feeds.Global(page)
	if err != nil {
		h.serverError(c, err)
		return
	}
	body, err := json.Marshal(feedPage)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.cache.Set(ctx, key, body, indexCacheTTL)
	h.metrics.SuccessfulRequests.WithLabelValues("index").Inc()
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *Handler) GroupFeed(c *gin.Context) {
	group, feedPage, err := h.feeds.Group(c.Param("slug"), pageParam(c))
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(c, "group not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group, "feed": feedPage})
}

func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.store.Groups()
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (h *Handler) CreateGroup(c *gin.Context) {
	var in forms.GroupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, gin.H{"error": "invalid request body"})
		return
	}
	if errs := forms.ValidateGroup(in); !errs.Valid() {
		h.badRequest(c, gin.H{"errors": errs})
		return
	}
	group, err := h.store.AddGroup(in.Title, in.Slug, in.Description)
	if errors.Is(err, storage.ErrAlreadyExists) {
		h.badRequest(c, gin.H{"errors": forms.Errors{"slug": "The slug is already taken"}})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.metrics.SuccessfulRequests.WithLabelValues("create_group").Inc()
	c.JSON(http.StatusCreated, group)
}

// DeleteGroup удаляет сообщество. Его посты остаются без группы
func (h *Handler) DeleteGroup(c *gin.Context) {
	group, err := h.store.GroupBySlug(c.Param("slug"))
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(c, "group not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	if err := h.store.DeleteGroup(group.ID); err != nil {
		h.serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Profile(c *gin.Context) {
	author, feedPage, err := h.feeds.Profile(c.Param("username"), pageParam(c))
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(c, "user not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	following := false
	if principal := h.auth.Current(c.Request); principal.IsAuthenticated {
		following = h.follows.IsFollowing(principal.ID, author.ID)
	}
	c.JSON(http.StatusOK, gin.H{
		"author":    author,
		"feed":      feedPage,
		"following": following,
	})
}

func (h *Handler) PostDetail(c *gin.Context) {
	post, err := h.store.PostByID(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(c, "post not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	comments, err := h.store.CommentsByPost(post.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	totalPosts, err := h.store.CountPostsByAuthor(post.AuthorID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"post":       post,
		"comments":   comments,
		"totalPosts": totalPosts,
	})
}

func (h *Handler) CreatePost(c *gin.Context) {
	principal := principalFrom(c)

	var in forms.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, gin.H{"error": "invalid request body"})
		return
	}
	if errs := forms.ValidatePost(in); !errs.Valid() {
		h.badRequest(c, gin.H{"errors": errs})
		return
	}
	groupID, ok := h.resolveGroup(c, in.Group)
	if !ok {
		return
	}
	post, err := h.store.AddPost(principal.ID, in.Text, in.Image, groupID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.metrics.PostsCreated.WithLabelValues("create").Inc()
	c.JSON(http.StatusCreated, post)
}

// EditPost меняет пост. Чужой пост не редактируется: не ошибка,
// а редирект на страницу поста
func (h *Handler) EditPost(c *gin.Context) {
	principal := principalFrom(c)

	post, err := h.store.PostByID(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(c, "post not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	if post.AuthorID != principal.ID {
		c.Redirect(http.StatusFound, "/posts/"+post.ID)
		return
	}

	var in forms.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, gin.H{"error": "invalid request body"})
		return
	}
	if errs := forms.ValidatePost(in); !errs.Valid() {
		h.badRequest(c, gin.H{"errors": errs})
		return
	}
	groupID, ok := h.resolveGroup(c, in.Group)
	if !ok {
		return
	}
	updated, err := h.store.UpdatePost(post.ID, in.Text, in.Image, groupID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) AddComment(c *gin.Context) {
	principal := principalFrom(c)

	var in forms.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, gin.H{"error": "invalid request body"})
		return
	}
	if errs := forms.ValidateComment(in); !errs.Valid() {
		h.badRequest(c, gin.H{"errors": errs})
		return
	}
	comment, err := h.store.AddComment(c.Param("id"), principal.ID, in.Text)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(c, "post not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.metrics.SuccessfulRequests.WithLabelValues("add_comment").Inc()
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) FollowFeed(c *gin.Context) {
	principal := principalFrom(c)

	feedPage, err := h.feeds.Following(principal.ID, pageParam(c))
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feed": feedPage})
}

func (h *Handler) Follow(c *gin.Context) {
	principal := principalFrom(c)

	author, err := h.store.UserByUsername(c.Param("username"))
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(c, "user not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	if err := h.follows.Follow(principal.ID, author.ID); err != nil {
		h.serverError(c, err)
		return
	}
	h.metrics.FollowRequests.WithLabelValues("follow").Inc()
	c.Redirect(http.StatusFound, "/profile/"+author.Username)
}

func (h *Handler) Unfollow(c *gin.Context) {
	principal := principalFrom(c)

	author, err := h.store.UserByUsername(c.Param("username"))
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(c, "user not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	if err := h.follows.Unfollow(principal.ID, author.ID); err != nil {
		h.serverError(c, err)
		return
	}
	h.metrics.UnfollowRequests.WithLabelValues("unfollow").Inc()
	c.Redirect(http.StatusFound, "/profile/"+author.Username)
}

func (h *Handler) Signup(c *gin.Context) {
	var in forms.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, gin.H{"error": "invalid request body"})
		return
	}
	if errs := forms.ValidateSignup(in); !errs.Valid() {
		h.badRequest(c, gin.H{"errors": errs})
		return
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		h.serverError(c, err)
		return
	}
	user, err := h.store.CreateUser(in.Username, in.DisplayName, hash)
	if errors.Is(err, storage.ErrAlreadyExists) {
		h.badRequest(c, gin.H{"errors": forms.Errors{"username": "The username is already taken"}})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	if err := h.auth.SignIn(c.Writer, c.Request, user.ID); err != nil {
		h.serverError(c, err)
		return
	}
	logrus.WithField("username", user.Username).Info("User registered successfully")
	h.metrics.SuccessfulRequests.WithLabelValues("signup").Inc()
	c.Status(http.StatusNoContent)
}

func (h *Handler) Login(c *gin.Context) {
	var in forms.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, gin.H{"error": "invalid request body"})
		return
	}
	if errs := forms.ValidateLogin(in); !errs.Valid() {
		h.badRequest(c, gin.H{"errors": errs})
		return
	}
	user, err := h.store.UserByUsername(in.Username)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !auth.CheckPassword(user.PasswordHash, in.Password)) {
		logrus.WithField("username", in.Username).Warn("Invalid login credentials")
		h.metrics.BadRequests.WithLabelValues("login").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	if err := h.auth.SignIn(c.Writer, c.Request, user.ID); err != nil {
		h.serverError(c, err)
		return
	}
	h.metrics.SuccessfulRequests.WithLabelValues("login").Inc()
	c.Status(http.StatusNoContent)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.auth.SignOut(c.Writer, c.Request); err != nil {
		h.serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearCache - административный/тестовый хук инвалидации
func (h *Handler) ClearCache(c *gin.Context) {
	h.cache.Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// resolveGroup превращает slug сообщества из формы в id.
// Пустой slug - пост вне сообщества
func (h *Handler) resolveGroup(c *gin.Context, slug string) (*string, bool) {
	if slug == "" {
		return nil, true
	}
	group, err := h.store.GroupBySlug(slug)
	if errors.Is(err, storage.ErrNotFound) {
		h.badRequest(c, gin.H{"errors": forms.Errors{"group": "Unknown group"}})
		return nil, false
	}
	if err != nil {
		h.serverError(c, err)
		return nil, false
	}
	return &group.ID, true
}

func (h *Handler) notFound(c *gin.Context, msg string) {
	h.metrics.BadRequests.WithLabelValues(c.FullPath()).Inc()
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}

func (h *Handler) badRequest(c *gin.Context, body gin.H) {
	h.metrics.BadRequests.WithLabelValues(c.FullPath()).Inc()
	c.JSON(http.StatusBadRequest, body)
}

func (h *Handler) serverError(c *gin.Context, err error) {
	logrus.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).WithError(err).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
