package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron"

	"github.com/farmops-platform/block-service/pkg/cloudevents"
	"github.com/farmops-platform/block-service/pkg/kafka"
	"github.com/farmops-platform/block-service/pkg/logging"
	"github.com/farmops-platform/block-service/pkg/mongodb"

	"github.com/farmops-platform/block-service/internal/application"
	kafkaInfra "github.com/farmops-platform/block-service/internal/infrastructure/kafka"
	mongoRepo "github.com/farmops-platform/block-service/internal/infrastructure/mongodb"
)

const serviceName = "block-service-worker"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting block-service scheduling worker")

	config := loadConfig()
	ctx := context.Background()

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

	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceWorker)
	eventPublisher := kafkaInfra.NewEventPublisher(guardedProducer, eventFactory, logger)

	blockRepo := mongoRepo.NewBlockRepository(mongoClient.Database())
	templateRepo := mongoRepo.NewTemplateRepository(mongoClient.Database())

	schedulingService := application.NewSchedulingApplicationService(blockRepo, templateRepo, eventPublisher, logger, nil)

	tick := func() {
		tickCtx, cancel := context.WithTimeout(context.Background(), config.TickTimeout)
		defer cancel()

		start := time.Now()
		evaluated, err := schedulingService.EvaluateActiveBlocks(tickCtx, start)
		if err != nil {
			logger.WithError(err).Error("Scheduling sweep failed", "evaluated", evaluated)
			return
		}
		logger.Info("Scheduling sweep completed",
			"evaluated", evaluated,
			"duration", time.Since(start).String(),
		)
	}

	c := cron.New()
	if err := c.AddFunc(config.Schedule, tick); err != nil {
		logger.WithError(err).Error("Invalid schedule", "schedule", config.Schedule)
		os.Exit(1)
	}
	c.Start()
	logger.Info("Worker started", "schedule", config.Schedule)

	if config.RunOnStart {
		tick()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down worker...")

	c.Stop()
	logger.Info("Worker stopped")
}

// Config holds application configuration
type Config struct {
	Schedule    string
	RunOnStart  bool
	TickTimeout time.Duration
	MongoDB     *mongodb.Config
	Kafka       *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		Schedule:    getEnv("SCHEDULE_SPEC", "@every 15m"),
		RunOnStart:  getEnv("RUN_ON_START", "true") == "true",
		TickTimeout: 5 * time.Minute,
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
