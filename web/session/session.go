// Package session keeps the authenticated user of a request in a
// server-side session referenced by a signed cookie.
package session

import (
	"github.com/sessiontodo/todo/database/model"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "todo-session"
	// MaxAge is the fixed session lifetime in seconds, counted from login.
	MaxAge = 2 * 24 * 60 * 60

	isAuthKey    = "IS_AUTH"
	loginUserKey = "LOGIN_USER"

	// regenerateKey asks the store to issue a new session id on save.
	regenerateKey = "REGENERATE"
)

// SetLoginUser marks the session authenticated for user and persists it
// under a new session id. Cookie options come from the store defaults.
func SetLoginUser(c *gin.Context, user model.UserSnapshot) error {
	s := sessions.Default(c)
	s.Set(regenerateKey, true)
	s.Set(isAuthKey, true)
	s.Set(loginUserKey, user)
	return s.Save()
}

// GetLoginUser returns the snapshot of an authenticated session, or nil.
func GetLoginUser(c *gin.Context) *model.UserSnapshot {
	s := sessions.Default(c)
	if auth, _ := s.Get(isAuthKey).(bool); !auth {
		return nil
	}
	if user, ok := s.Get(loginUserKey).(model.UserSnapshot); ok {
		return &user
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

// ClearSession destroys the server-side session and expires the cookie.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}
