package controller

import (
	"net/http"

	"github.com/sessiontodo/todo/logger"
	"github.com/sessiontodo/todo/web/entity"
	"github.com/sessiontodo/todo/web/service"
	"github.com/sessiontodo/todo/web/session"

	"github.com/gin-gonic/gin"
)

// IndexController handles registration, login and logout.
type IndexController struct {
	BaseController

	userService    *service.UserService
	sessionService *service.SessionService
}

// NewIndexController creates a new IndexController and initializes its routes.
func NewIndexController(g *gin.RouterGroup, userService *service.UserService, sessionService *service.SessionService) *IndexController {
	a := &IndexController{
		userService:    userService,
		sessionService: sessionService,
	}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.POST("/register", a.register)
	g.POST("/login", a.login)

	auth := g.Group("", a.checkLogin)
	auth.GET("/is_authenticated", a.isAuthenticated)
	auth.GET("/logout", a.logout)
	auth.GET("/logout_from_all_devices", a.logoutFromAllDevices)
}

func (a *IndexController) index(c *gin.Context) {
	jsonMsg(c, http.StatusOK, "up")
}

func (a *IndexController) register(c *gin.Context) {
	var form entity.RegisterForm
	if err := bindForm(c, &form); err != nil {
		jsonErr(c, err)
		return
	}

	user, err := a.userService.Register(c.Request.Context(), &form)
	if err != nil {
		jsonErr(c, err)
		return
	}
	logger.Infof("user %q registered", user.Username)
	jsonMsg(c, http.StatusCreated, "auth.registered")
}

func (a *IndexController) login(c *gin.Context) {
	var form entity.LoginForm
	if err := bindForm(c, &form); err != nil {
		jsonErr(c, err)
		return
	}

	user, err := a.userService.CheckUser(c.Request.Context(), &form)
	if err != nil {
		if entity.IsKind(err, entity.KindValidation) {
			logger.Warningf("failed login for %q, IP: %q", form.LoginId, getRemoteIp(c))
		}
		jsonErr(c, err)
		return
	}

	if err := session.SetLoginUser(c, user.Snapshot()); err != nil {
		jsonErr(c, entity.WrapError(entity.KindStore, "errors.database", err))
		return
	}
	logger.Infof("%q logged in, IP: %q", user.Username, getRemoteIp(c))
	jsonMsg(c, http.StatusOK, "auth.loggedIn")
}

func (a *IndexController) isAuthenticated(c *gin.Context) {
	jsonMsg(c, http.StatusOK, "auth.welcome")
}

func (a *IndexController) logout(c *gin.Context) {
	user := a.loginUser(c)
	if err := session.ClearSession(c); err != nil {
		jsonErr(c, entity.WrapError(entity.KindStore, "errors.database", err))
		return
	}
	logger.Infof("%q logged out", user.Username)
	jsonMsg(c, http.StatusOK, "auth.loggedOut")
}

func (a *IndexController) logoutFromAllDevices(c *gin.Context) {
	user := a.loginUser(c)
	removed, err := a.sessionService.LogoutAll(c.Request.Context(), user.Username)
	if err != nil {
		jsonErr(c, err)
		return
	}
	// the current session row is already gone, this only expires the cookie
	if err := session.ClearSession(c); err != nil {
		logger.Warning("clear session failed:", err)
	}
	logger.Infof("%q logged out from %d sessions", user.Username, removed)
	jsonMsg(c, http.StatusOK, "auth.loggedOutAll")
}
