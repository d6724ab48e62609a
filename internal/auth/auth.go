// Package auth - сессионный identity provider. Ядру платформы от него
// нужен только Principal текущего запроса; механика аутентификации
// дальше этого пакета не распространяется.
package auth

import (
	"net/http"

	"github.com/MosinFAM/blog-platform/internal/storage"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const sessionName = "blog-session"

// Principal - текущий пользователь запроса
type Principal struct {
	ID              string
	Username        string
	DisplayName     string
	IsAuthenticated bool
}

type Sessions struct {
	store   *sessions.CookieStore
	storage storage.Storage
}

func NewSessions(secret []byte, st storage.Storage) *Sessions {
	cookieStore := sessions.NewCookieStore(secret)
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 16, // 16 hours
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	return &Sessions{store: cookieStore, storage: st}
}

// Current возвращает Principal запроса. Битая или устаревшая сессия -
// анонимный Principal, не ошибка
func (s *Sessions) Current(r *http.Request) Principal {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return Principal{}
	}
	userID, ok := session.Values["user_id"].(string)
	if !ok || userID == "" {
		return Principal{}
	}
	user, err := s.storage.UserByID(userID)
	if err != nil {
		return Principal{}
	}
	return Principal{
		ID:              user.ID,
		Username:        user.Username,
		DisplayName:     user.DisplayName,
		IsAuthenticated: true,
	}
}

func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values["user_id"] = userID
	return session.Save(r, w)
}

func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, "user_id")
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// HashPassword хэширует пароль bcrypt-ом
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
