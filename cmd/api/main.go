package main

import (
	"context"
	"log"
	"time"

	"pulse-chat/config"
	"pulse-chat/internal/events"
	"pulse-chat/internal/handler"
	"pulse-chat/internal/proxy"
	"pulse-chat/internal/redis"
	"pulse-chat/internal/repository"
	"pulse-chat/internal/server"
	"pulse-chat/internal/services"
	"pulse-chat/internal/storage"
	"pulse-chat/internal/websocket"
	"pulse-chat/pkg/database"
	"pulse-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	defer l.Sync()
	logger.SetGlobalLogger(l)

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	conversationRepo := repository.NewConversationRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	txRunner := repository.NewTxRunner(pool)
	access := proxy.NewAccessControl(conversationRepo)
	dispatcher := events.NewDispatcher()

	hub := websocket.NewHub()

	// Redis is optional. With it, frames travel over pub/sub so every
	// instance delivers to its own sockets; without it, fan-out pushes
	// straight to the local hub.
	var (
		redisClient *goredis.Client
		publisher   services.ChannelPublisher
		cache       services.ParticipantCache
		presence    *redis.PresenceStore
		limiter     *redis.RateLimiter
	)
	if cfg.RedisEnabled {
		redisClient, err = redis.Connect(ctx, redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Fatalf("redis connect failed: %v", err)
		}
		defer redisClient.Close()

		publisher = redis.NewPublisher(redisClient)
		cache = redis.NewParticipantCache(redisClient, time.Hour)
		presence = redis.NewPresenceStore(redisClient, 5*time.Minute)
		limiter = redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())

		bridge := websocket.NewRedisBridge(redis.NewSubscriber(redisClient), hub)
		go func() {
			if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
				l.Errorf("redis bridge stopped: %v", err)
			}
		}()
	}

	fanout := services.NewFanoutService(conversationRepo, hub, publisher, cache, l)
	dispatcher.Subscribe(fanout)
	go fanout.Run(ctx)

	authService := services.NewAuthService(cfg.JWTSecret)
	conversationService := services.NewConversationService(conversationRepo, access, dispatcher, l)
	messageService := services.NewMessageService(messageRepo, conversationRepo, access, txRunner, dispatcher, l)

	var uploadHandler *handler.UploadHandler
	if cfg.S3Bucket != "" {
		blobStore, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
		})
		if err != nil {
			log.Fatalf("s3 client failed: %v", err)
		}
		uploadHandler = handler.NewUploadHandler(services.NewUploadService(blobStore, l))
	} else {
		uploadHandler = handler.NewUploadHandler(services.NewUploadService(nil, l))
	}

	checks := map[string]handler.HealthCheck{
		"postgres": func(c *gin.Context) error {
			return database.HealthCheck(c.Request.Context(), pool)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(c *gin.Context) error {
			return redis.HealthCheck(c.Request.Context(), redisClient)
		}
	}

	// The nil check inside the handler needs an untyped nil, so only
	// assign the store when Redis is up.
	var presenceReader handler.PresenceReader
	if presence != nil {
		presenceReader = presence
	}

	handlers := &server.Handlers{
		Conversation: handler.NewConversationHandler(conversationService),
		Message:      handler.NewMessageHandler(messageService),
		Upload:       uploadHandler,
		Presence:     handler.NewPresenceHandler(presenceReader),
		Health:       handler.NewHealthHandler(checks),
		WebSocket:    websocket.NewHandler(authService, hub, presence, limiter, l),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
