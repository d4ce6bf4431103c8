package server

import (
	"log/slog"
	"net/http"

	"anisong-quiz/internal/quiz"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type Server struct {
	svc      *quiz.Service
	logger   *slog.Logger
	metrics  *metrics
	registry *prometheus.Registry
	limiters *clientLimiters
}

type Option func(*Server)

// WithWriteRateLimit caps POST requests under /rooms at perSecond per client
// IP with the given burst. A zero rate leaves writes unlimited.
func WithWriteRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 || burst <= 0 {
			s.limiters = nil
			return
		}
		s.limiters = newClientLimiters(rate.Limit(perSecond), burst)
	}
}

// New wires the HTTP adapter. Request and game metrics are registered on
// registry, which /metrics also serves.
func New(svc *quiz.Service, logger *slog.Logger, registry *prometheus.Registry, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	registerValidators()
	s := &Server{
		svc:      svc,
		logger:   logger,
		metrics:  newMetrics(registry),
		registry: registry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(s.requestID(), s.observeRequests(), s.recoverPanics())

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	router.GET("/songs", s.handleListSongs)

	rooms := router.Group("/rooms", s.limitWrites())
	rooms.POST("", s.handleCreateRoom)
	rooms.GET("/:code", s.handleGetRoom)
	rooms.POST("/:code/join", s.handleJoinRoom)
	rooms.POST("/:code/start_round", s.handleStartRound)
	rooms.GET("/:code/rounds/current", s.handleCurrentRound)
	rooms.GET("/:code/rounds/:round_id", s.handleGetRound)
	rooms.POST("/:code/rounds/:round_id/guess", s.handleGuess)
	rooms.POST("/:code/rounds/:round_id/skip", s.handleSkip)
	rooms.GET("/:code/leaderboard", s.handleLeaderboard)
	rooms.GET("/:code/events", s.handleEvents)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
