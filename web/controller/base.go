// Package controller provides the HTTP handlers of the todo API. It handles
// routing, the login check and conversion of service errors to responses.
package controller

import (
	"net/http"

	"github.com/sessiontodo/todo/database/model"
	"github.com/sessiontodo/todo/web/locale"
	"github.com/sessiontodo/todo/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides common functionality for all controllers, including authentication checks.
type BaseController struct{}

// checkLogin aborts with 403 unless the session is authenticated.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		pureJsonMsg(c, http.StatusForbidden, I18nWeb(c, "auth.loginRequired"))
		c.Abort()
		return
	}
	c.Next()
}

// loginUser returns the session user. Only valid behind checkLogin.
func (a *BaseController) loginUser(c *gin.Context) *model.UserSnapshot {
	return session.GetLoginUser(c)
}

// I18nWeb retrieves an internationalized message for the request locale.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.I18n(locale.FromContext(c), name, params...)
}
