package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	handlers "github.com/GriffinCanCode/AgentOS/webcore/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/browser"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
)

// Server wraps the control API router around a browser client
type Server struct {
	router *gin.Engine
	client *browser.Client
	logger *logging.Logger
	config *config.Config
	http   *http.Server
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, client *browser.Client) *Server {
	logger := client.Logger().Component("server")
	metrics := client.Metrics()

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	h := handlers.NewHandlers(client)

	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
	router.GET("/metrics/json", h.MetricsJSON)

	v1 := router.Group("/v1")
	v1.POST("/load", h.Load)
	v1.GET("/windows", h.ListWindows)
	v1.GET("/windows/:id", h.GetWindow)
	v1.DELETE("/windows/:id", h.CloseWindow)
	v1.POST("/windows/:id/back", h.Back)
	v1.POST("/windows/:id/forward", h.Forward)
	v1.POST("/downloads/apply", h.ApplyDownloads)
	v1.DELETE("/cache", h.ClearCache)

	return &Server{
		router: router,
		client: client,
		logger: logger,
		config: cfg,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router
func (s *Server) Handler() http.Handler { return s.router }

// Run serves the control API until Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.http.Shutdown(ctx)
}
