package controller

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/sessiontodo/todo/logger"
	"github.com/sessiontodo/todo/web/entity"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return strings.TrimSpace(ips[0])
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// bindForm decodes the request body into form. An empty body leaves the
// form zero so that the field checks report what is missing.
func bindForm(c *gin.Context, form any) error {
	if err := c.ShouldBind(form); err != nil && !errors.Is(err, io.EOF) {
		return entity.BindError(err)
	}
	return nil
}

// jsonMsg sends a localized message with the given status.
func jsonMsg(c *gin.Context, status int, key string) {
	jsonMsgObj(c, status, key, nil)
}

// jsonMsgObj sends a localized message and a payload with the given status.
func jsonMsgObj(c *gin.Context, status int, key string, obj any) {
	c.JSON(status, entity.Msg{
		Status:  status,
		Message: I18nWeb(c, key),
		Data:    obj,
	})
}

// jsonErr converts err to the response envelope. Server side failures are
// logged with their cause.
func jsonErr(c *gin.Context, err error) {
	e := entity.AsError(err)
	status := e.Kind.Status()
	if status >= http.StatusInternalServerError || e.Kind == entity.KindHash {
		logger.Warningf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		logger.Debugf("%s %s rejected: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	pureJsonMsg(c, status, I18nWeb(c, e.Key, e.Params...))
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, status int, msg string) {
	c.JSON(status, entity.Msg{
		Status:  status,
		Message: msg,
	})
}
