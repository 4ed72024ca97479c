package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/lazorkit/lazordrop/config"
	"github.com/lazorkit/lazordrop/internal/airdrop"
	"github.com/lazorkit/lazordrop/internal/logging"
	"github.com/lazorkit/lazordrop/internal/metrics"
)

const HeaderDevnetWarning = "X-Devnet-Warning"

// AirdropService is what the API needs from the airdrop service.
type AirdropService interface {
	Airdrop(ctx context.Context, address string) (*airdrop.Result, error)
	Balance(ctx context.Context, address string) (*airdrop.Balance, error)
	Cooldown(ctx context.Context, address string) (time.Duration, error)
}

// TaskQueue is the asynq surface used for asynchronous airdrops.
type TaskQueue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskInspector reads back queued airdrop results.
type TaskInspector interface {
	GetTaskResult(taskID string) ([]byte, error)
}

type Server struct {
	cfg         config.ServerConfig
	svc         AirdropService
	queue       TaskQueue
	inspector   TaskInspector
	httpMetrics *metrics.HTTPMetrics
	logger      *logrus.Entry
	echo        *echo.Echo
}

// NewServer returns a new server. queue and inspector may be nil, in which
// case the async endpoints answer 503.
func NewServer(
	cfg config.ServerConfig,
	svc AirdropService,
	queue TaskQueue,
	inspector TaskInspector,
	httpMetrics *metrics.HTTPMetrics,
	logger *logrus.Logger,
) *Server {
	s := &Server{
		cfg:         cfg,
		svc:         svc,
		queue:       queue,
		inspector:   inspector,
		httpMetrics: httpMetrics,
		logger:      logger.WithField("pkg", "api"),
	}
	s.echo = s.routes()
	return s
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(logging.LoggerMiddleware(s.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("16K"))
	e.Use(middleware.CORS())
	e.Use(s.httpMetrics.Middleware())
	e.Use(devnetWarningMiddleware)

	if s.cfg.RateLimit > 0 {
		limiterStore := middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.cfg.RateLimit),
				Burst:     s.cfg.RateBurst,
				ExpiresIn: 5 * time.Minute,
			},
		)
		e.Use(middleware.RateLimiter(limiterStore))
	}

	e.Validator = &requestValidator{validator: validator.New()}

	e.GET("/ping", s.Ping)

	airdropGroup := e.Group("/airdrop")
	airdropGroup.POST("", s.RequestAirdrop)
	airdropGroup.POST("/async", s.RequestAirdropAsync)
	airdropGroup.GET("/tasks/:taskId", s.GetAirdropTask)

	e.GET("/balance/:address", s.GetBalance)
	e.GET("/cooldown/:address", s.GetCooldown)

	return e
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// StartServer serves until ctx is done.
func (s *Server) StartServer(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorf("server shutdown error: %v", err)
		}
	}()

	err := s.echo.Start(fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port))
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func devnetWarningMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(HeaderDevnetWarning, airdrop.DevnetWarning)
		return next(c)
	}
}

func (s *Server) Ping(c echo.Context) error {
	return c.String(http.StatusOK, "Airdrop server is running")
}
