package middleware

import (
	"time"

	"github.com/sessiontodo/todo/logger"
	"github.com/sessiontodo/todo/web/entity"
	"github.com/sessiontodo/todo/web/locale"
	"github.com/sessiontodo/todo/web/service"
	"github.com/sessiontodo/todo/web/session"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	Limiter service.AccessLimiter
	// Now defaults to time.Now.
	Now func() time.Time
}

// RateLimitMiddleware admits at most one request per user per access window.
// It must run after the login check, since users are identified by their
// session.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		user := session.GetLoginUser(c)
		if user == nil {
			abort(c, entity.NewError(entity.KindAuth, "auth.loginRequired"))
			return
		}

		allowed, err := config.Limiter.Allow(c.Request.Context(), user.Id, now())
		if err != nil {
			logger.Warning("rate limit check failed:", err)
			abort(c, entity.WrapError(entity.KindStore, "errors.database", err))
			return
		}
		if !allowed {
			logger.Debugf("Rate limit exceeded for %s on %s", user.Username, c.Request.URL.Path)
			abort(c, entity.NewError(entity.KindThrottle, "todos.throttled"))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, e *entity.Error) {
	status := e.Kind.Status()
	c.AbortWithStatusJSON(status, entity.Msg{
		Status:  status,
		Message: locale.I18n(locale.FromContext(c), e.Key, e.Params...),
	})
}
