// Package web provides the HTTP server of the todo API, including routing,
// session handling, HTTP/HTTPS serving and background job scheduling.
package web

import (
	"context"
	"crypto/tls"
	"embed"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sessiontodo/todo/config"
	"github.com/sessiontodo/todo/logger"
	"github.com/sessiontodo/todo/util/common"
	"github.com/sessiontodo/todo/util/random"
	"github.com/sessiontodo/todo/web/cache"
	"github.com/sessiontodo/todo/web/controller"
	"github.com/sessiontodo/todo/web/job"
	"github.com/sessiontodo/todo/web/locale"
	"github.com/sessiontodo/todo/web/network"
	"github.com/sessiontodo/todo/web/service"
	"github.com/sessiontodo/todo/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

//go:embed translation/*
var i18nFS embed.FS

const shutdownTimeout = 10 * time.Second

// Server represents the web server with its controllers, services and scheduled jobs.
type Server struct {
	cfg *config.Config
	db  *gorm.DB

	httpServer *http.Server
	listener   net.Listener
	redis      *cache.Redis

	index *controller.IndexController
	todo  *controller.TodoController

	userService    *service.UserService
	sessionService *service.SessionService
	taskService    *service.TaskService
	limiter        service.AccessLimiter

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance with a cancellable context.
func NewServer(cfg *config.Config, db *gorm.DB) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{cfg: cfg, db: db, ctx: ctx, cancel: cancel}
}

// initServices builds the services and the access limiter for the configured
// throttle store.
func (s *Server) initServices() error {
	s.userService = service.NewUserService(s.db, s.cfg.BcryptCost)
	s.sessionService = service.NewSessionService(s.db)
	s.taskService = service.NewTaskService(s.db, s.cfg.PageLimit)

	switch s.cfg.ThrottleStore {
	case config.ThrottleStoreRedis:
		r, err := cache.Open(s.ctx, s.cfg.RedisAddr)
		if err != nil {
			return err
		}
		s.redis = r
		if r.IsEmbedded() {
			logger.Warning("access records are kept in embedded Redis and are lost on restart")
		}
		s.limiter = service.NewRedisAccessLimiter(r.Client())
	default:
		s.limiter = service.NewAccessService(s.db)
	}
	return nil
}

func (s *Server) sessionSecret() []byte {
	if s.cfg.SessionSecret == "" {
		logger.Warning("TODO_SESSION_SECRET is not set, sessions will not survive a restart")
		s.cfg.SessionSecret = random.Seq(32)
	}
	return []byte(s.cfg.SessionSecret)
}

// initRouter initializes Gin, registers middleware and controllers and
// returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	if err := s.initServices(); err != nil {
		return nil, err
	}

	loc, err := locale.InitLocalizer(i18nFS)
	if err != nil {
		return nil, err
	}

	engine := gin.Default()
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	store := session.NewStore(s.db, s.sessionSecret())
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   session.MaxAge,
		HttpOnly: true,
		Secure:   s.tlsEnabled(),
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(session.CookieName, store))
	engine.Use(loc.LocalizerMiddleware())

	g := engine.Group("/")
	s.index = controller.NewIndexController(g, s.userService, s.sessionService)
	s.todo = controller.NewTodoController(g, s.taskService, s.limiter)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

func (s *Server) tlsEnabled() bool {
	return s.cfg.CertFile != "" && s.cfg.KeyFile != ""
}

// startTask schedules background jobs.
func (s *Server) startTask() {
	if _, err := s.cron.AddJob("@hourly", job.NewClearSessionsJob(s.sessionService)); err != nil {
		logger.Warning("add clear sessions job failed:", err)
	}
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New(cron.WithSeconds())
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(s.cfg.Listen, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	if s.tlsEnabled() {
		cert, err := tls.LoadX509KeyPair(s.cfg.CertFile, s.cfg.KeyFile)
		if err != nil {
			listener.Close()
			return err
		}
		cfg := &tls.Config{Certificates: []tls.Certificate{cert}}
		listener = tls.NewListener(network.NewRedirectListener(listener), cfg)
		logger.Info("Web server running HTTPS on", listener.Addr())
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("web server stopped:", err)
		}
	}()

	s.startTask()

	return nil
}

// Stop gracefully shuts down the web server, cron jobs and the Redis connection.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var errs []error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		errs = append(errs, s.httpServer.Shutdown(ctx))
	} else if s.listener != nil {
		errs = append(errs, s.listener.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	return common.Combine(errs...)
}

// Addr returns the address the server listens on, once started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
