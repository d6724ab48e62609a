// Package forms - явная валидация пользовательского ввода. Каждая
// функция возвращает карту ошибок по полям; пустая карта - ввод валиден.
// Рендеринг ошибок - забота презентационного слоя.
package forms

import (
	"regexp"
	"strings"
)

var slugRe = regexp.MustCompile(`^[a-z0-9-]+$`)
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Errors - ошибки валидации по полям
type Errors map[string]string

func (e Errors) Valid() bool {
	return len(e) == 0
}

type PostInput struct {
	Text  string `json:"text"`
	Image string `json:"image"`
	Group string `json:"group"` // slug сообщества, опционально
}

func ValidatePost(in PostInput) Errors {
	errs := Errors{}
	if strings.TrimSpace(in.Text) == "" {
		errs["text"] = "You have to enter a text"
	}
	return errs
}

type CommentInput struct {
	Text string `json:"text"`
}

func ValidateComment(in CommentInput) Errors {
	errs := Errors{}
	if strings.TrimSpace(in.Text) == "" {
		errs["text"] = "You have to enter a text"
	}
	return errs
}

type SignupInput struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

func ValidateSignup(in SignupInput) Errors {
	errs := Errors{}
	if in.Username == "" {
		errs["username"] = "You have to enter a username"
	} else if !usernameRe.MatchString(in.Username) {
		errs["username"] = "Username may only contain letters, digits and underscores"
	}
	if in.Password == "" {
		errs["password"] = "You have to enter a password"
	}
	return errs
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func ValidateLogin(in LoginInput) Errors {
	errs := Errors{}
	if in.Username == "" {
		errs["username"] = "You have to enter a username"
	}
	if in.Password == "" {
		errs["password"] = "You have to enter a password"
	}
	return errs
}

type GroupInput struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func ValidateGroup(in GroupInput) Errors {
	errs := Errors{}
	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "You have to enter a title"
	}
	if in.Slug == "" {
		errs["slug"] = "You have to enter a slug"
	} else if !slugRe.MatchString(in.Slug) {
		errs["slug"] = "Slug may only contain lowercase letters, digits and dashes"
	}
	return errs
}
