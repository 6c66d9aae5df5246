package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger-service/internal/auth"
	"messenger-service/internal/config"
	"messenger-service/internal/db"
	"messenger-service/internal/delivery"
	"messenger-service/internal/handlers"
	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
	"messenger-service/internal/profiles"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/registry"
	"messenger-service/internal/repositories"
	"messenger-service/internal/storage"
	"messenger-service/internal/telemetry"
	"messenger-service/internal/ws"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTLPEndpoint, "messenger-service")
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, "audit_log.messenger", "messenger-service", cfg.Environment)
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))

	if cfg.AMQPURL != "" {
		eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("ws event publishing disabled: %v", err)
		} else {
			observability.SetPublisher(eventPublisher)
			defer eventPublisher.Close()
		}
	}

	var uploader storage.Uploader
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket)
		if err != nil {
			log.Fatalf("failed to init object storage: %v", err)
		}
		uploader = s3Store
	}

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer cache.Close()
	}
	directory := profiles.NewHTTPDirectory(cfg.UserServiceURL, cache)

	verifier := auth.NewVerifier(cfg.JWTSecret)
	messageRepo := repositories.NewMessageRepo(database)
	connRegistry := registry.New()

	coordinator := delivery.NewCoordinator(messageRepo, connRegistry)
	propagator := delivery.NewPropagator(messageRepo, connRegistry)

	messageHandler := handlers.NewMessageHandler(messageRepo, directory, uploader, coordinator, propagator, auditEmitter)
	eventsWS := ws.NewEventsHandler(connRegistry, verifier)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("messenger-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.GET("/conversations", authMiddleware, messageHandler.ListConversations)
	router.GET("/conversations/:peer_id/messages", authMiddleware, messageHandler.GetHistory)
	router.POST("/conversations/:peer_id/messages", authMiddleware, messageHandler.SendMessage)
	router.POST("/conversations/:peer_id/read", authMiddleware, messageHandler.MarkConversationRead)

	router.GET("/ws/events", eventsWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
