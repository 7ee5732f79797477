package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/farmops-platform/block-service/pkg/cloudevents"
	"github.com/farmops-platform/block-service/pkg/kafka"
	"github.com/farmops-platform/block-service/pkg/logging"
	"github.com/farmops-platform/block-service/pkg/metrics"
	"github.com/farmops-platform/block-service/pkg/middleware"
	"github.com/farmops-platform/block-service/pkg/mongodb"
	"github.com/farmops-platform/block-service/pkg/tracing"

	"github.com/farmops-platform/block-service/internal/application"
	kafkaInfra "github.com/farmops-platform/block-service/internal/infrastructure/kafka"
	mongoRepo "github.com/farmops-platform/block-service/internal/infrastructure/mongodb"
)

const serviceName = "block-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting block-service API")

	config := loadConfig()
	ctx := context.Background()

	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	kafkaProducer := kafka.NewProducer(config.Kafka)
	guardedProducer := kafka.NewCircuitBreakerProducer(kafkaProducer, logger.Logger)
	defer guardedProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceBlockService)
	eventPublisher := kafkaInfra.NewEventPublisher(guardedProducer, eventFactory, logger)

	blockRepo := mongoRepo.NewBlockRepository(mongoClient.Database())
	templateRepo := mongoRepo.NewTemplateRepository(mongoClient.Database())

	blockService := application.NewBlockApplicationService(blockRepo, eventPublisher, logger)
	templateService := application.NewTemplateApplicationService(templateRepo, eventPublisher, logger)
	schedulingService := application.NewSchedulingApplicationService(blockRepo, templateRepo, eventPublisher, logger, m)

	router := gin.New()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"), ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Correlation-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-Correlation-ID"},
		AllowCredentials: true,
	}))

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middlewareConfig.EnableCORS = false
	middleware.Setup(router, middlewareConfig)

	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	apiV1 := router.Group("/api/v1")

	blocks := apiV1.Group("/blocks")
	{
		blocks.POST("", createBlockHandler(blockService, m, logger))
		blocks.GET("", listBlocksHandler(blockService, logger))
		blocks.GET("/:blockId", getBlockHandler(blockService, logger))
		blocks.DELETE("/:blockId", deleteBlockHandler(blockService, logger))
		blocks.GET("/status/:status", getBlocksByStatusHandler(blockService, logger))
		blocks.POST("/:blockId/assignments", assignPlantsHandler(blockService, logger))
		blocks.DELETE("/:blockId/assignments/:plantTypeId", removePlantsHandler(blockService, logger))
		blocks.POST("/:blockId/planting/confirm", confirmPlantingHandler(blockService, logger))
		blocks.POST("/:blockId/harvest/start", startHarvestHandler(blockService, logger))
		blocks.POST("/:blockId/alerts", openAlertHandler(blockService, logger))
		blocks.POST("/:blockId/alerts/resolve", resolveAlertHandler(blockService, logger))
		blocks.GET("/:blockId/history", getHistoryHandler(blockService, logger))
		blocks.POST("/:blockId/schedule", scheduleBlockHandler(schedulingService, logger))
	}

	templates := apiV1.Group("/templates")
	{
		templates.POST("", createTemplateHandler(templateService, logger))
		templates.GET("", listTemplatesHandler(templateService, logger))
		templates.GET("/:templateId", getTemplateHandler(templateService, logger))
		templates.POST("/:templateId/activate", activateTemplateHandler(templateService, logger))
		templates.POST("/:templateId/approve", approveTemplateHandler(templateService, logger))
		templates.POST("/:templateId/deprecate", deprecateTemplateHandler(templateService, logger))
		templates.POST("/:templateId/archive", archiveTemplateHandler(templateService, logger))
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "farmops"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
