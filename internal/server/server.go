package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulse-chat/config"
	"pulse-chat/internal/handler"
	"pulse-chat/internal/middleware"
	"pulse-chat/internal/redis"
	"pulse-chat/internal/services"
	"pulse-chat/internal/transport/httpdto"
	"pulse-chat/internal/websocket"
	"pulse-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
	Upload       *handler.UploadHandler
	Presence     *handler.PresenceHandler
	Health       *handler.HealthHandler
	WebSocket    *websocket.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// SetupRoutes mounts middleware and the API surface. limiter may be nil
// when Redis is disabled; the send route then runs unthrottled.
func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})
	s.engine.GET("/health", handlers.Health.Health)

	s.engine.GET("/ws", handlers.WebSocket.Connect)

	auth := middleware.AuthMiddleware(authService)

	conversations := s.engine.Group("/v1/conversations", auth)
	{
		conversations.POST("", handlers.Conversation.Create)
		conversations.GET("", handlers.Conversation.List)
		conversations.GET("/:id", handlers.Conversation.Get)
		conversations.POST("/:id/read", handlers.Conversation.MarkRead)

		sendHandlers := []gin.HandlerFunc{}
		if limiter != nil {
			sendHandlers = append(sendHandlers, middleware.MessageRateLimitMiddleware(limiter))
		}
		sendHandlers = append(sendHandlers, handlers.Message.Send)
		conversations.POST("/:id/messages", sendHandlers...)
		conversations.GET("/:id/messages", handlers.Message.List)
	}

	messages := s.engine.Group("/v1/messages", auth)
	{
		messages.POST("/:id/reactions", handlers.Message.ToggleReaction)
		messages.PATCH("/:id", handlers.Message.Edit)
		messages.DELETE("/:id", handlers.Message.Delete)
	}

	uploads := s.engine.Group("/v1/uploads", auth)
	{
		uploads.POST("", handlers.Upload.Upload)
	}

	users := s.engine.Group("/v1/users", auth)
	{
		users.GET("/:id/presence", handlers.Presence.Get)
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
