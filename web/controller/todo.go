package controller

import (
	"net/http"
	"strconv"

	"github.com/sessiontodo/todo/web/entity"
	"github.com/sessiontodo/todo/web/middleware"
	"github.com/sessiontodo/todo/web/service"

	"github.com/gin-gonic/gin"
)

// TodoController serves the task endpoints of the logged in user.
type TodoController struct {
	BaseController

	taskService *service.TaskService
	limiter     service.AccessLimiter
}

func NewTodoController(g *gin.RouterGroup, taskService *service.TaskService, limiter service.AccessLimiter) *TodoController {
	a := &TodoController{
		taskService: taskService,
		limiter:     limiter,
	}
	a.initRouter(g)
	return a
}

func (a *TodoController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/todos", a.checkLogin)

	g.GET("", a.list)
	g.GET("/paginated", a.listPage)
	g.POST("/create", middleware.RateLimitMiddleware(middleware.RateLimitConfig{Limiter: a.limiter}), a.create)
	g.POST("/updateState", a.toggleState)
	g.POST("/update", a.update)
	g.POST("/delete", a.delete)
}

func (a *TodoController) list(c *gin.Context) {
	tasks, err := a.taskService.List(c.Request.Context(), a.loginUser(c).Username)
	if err != nil {
		jsonErr(c, err)
		return
	}
	if len(tasks) == 0 {
		jsonMsg(c, http.StatusOK, "todos.empty")
		return
	}
	jsonMsgObj(c, http.StatusOK, "todos.fetched", tasks)
}

func (a *TodoController) listPage(c *gin.Context) {
	skip, err := strconv.Atoi(c.Query("skip"))
	if err != nil || skip < 0 {
		skip = 0
	}

	tasks, err := a.taskService.ListPage(c.Request.Context(), a.loginUser(c).Username, skip)
	if err != nil {
		jsonErr(c, err)
		return
	}
	if len(tasks) == 0 {
		jsonMsg(c, http.StatusOK, "todos.empty")
		return
	}
	jsonMsgObj(c, http.StatusOK, "todos.fetched", tasks)
}

func (a *TodoController) create(c *gin.Context) {
	var form entity.TaskForm
	if err := bindForm(c, &form); err != nil {
		jsonErr(c, err)
		return
	}

	task, err := a.taskService.Create(c.Request.Context(), a.loginUser(c).Username, &form)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsgObj(c, http.StatusOK, "todos.created", task)
}

func (a *TodoController) toggleState(c *gin.Context) {
	var form entity.TaskForm
	if err := bindForm(c, &form); err != nil {
		jsonErr(c, err)
		return
	}

	task, err := a.taskService.ToggleState(c.Request.Context(), form.Id, a.loginUser(c).Username)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsgObj(c, http.StatusOK, "todos.updated", task)
}

func (a *TodoController) update(c *gin.Context) {
	var form entity.TaskForm
	if err := bindForm(c, &form); err != nil {
		jsonErr(c, err)
		return
	}

	task, err := a.taskService.Rename(c.Request.Context(), &form, a.loginUser(c).Username)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsgObj(c, http.StatusOK, "todos.updated", task)
}

func (a *TodoController) delete(c *gin.Context) {
	var form entity.TaskForm
	if err := bindForm(c, &form); err != nil {
		jsonErr(c, err)
		return
	}

	if err := a.taskService.Delete(c.Request.Context(), form.Id, a.loginUser(c).Username); err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsg(c, http.StatusOK, "todos.deleted")
}
