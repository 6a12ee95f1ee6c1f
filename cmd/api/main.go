// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/library-backend/internal/config"
	"github.com/your-org/library-backend/internal/domain/book"
	"github.com/your-org/library-backend/internal/domain/notification"
	"github.com/your-org/library-backend/internal/domain/user"
	"github.com/your-org/library-backend/internal/domain/wishlist"
	"github.com/your-org/library-backend/internal/infrastructure/database"
	"github.com/your-org/library-backend/internal/infrastructure/database/redis"
	"github.com/your-org/library-backend/internal/infrastructure/messaging/rabbitmq"
	"github.com/your-org/library-backend/internal/interfaces/http"
	"github.com/your-org/library-backend/internal/interfaces/http/routes"
	"github.com/your-org/library-backend/internal/pkg/email"
	"github.com/your-org/library-backend/internal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Infof("Starting %s", cfg.App.Name)

	// Connect to database
	db, err := database.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	migration := database.NewMigration(db.GetDB(), log)

	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("Index creation failed")
	}

	// Seed initial data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			log.WithError(err).Warn("Data seeding failed")
		}
		if err := migration.GetTableInfo(); err != nil {
			log.WithError(err).Warn("Failed to read table info")
		}
	}

	// Connect to Redis
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewConnection(cfg, log)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	// Domain services. The pipeline reads through a book service without an
	// observer; the HTTP one reports status changes to the trigger.
	users := user.NewService(db.GetDB(), log)
	lookupBooks := book.NewService(db.GetDB(), nil, log)
	wishlists := wishlist.NewService(db.GetDB(), lookupBooks, users)

	notifier := email.NewEmailService(cfg.External.Email, log)
	log.WithField("provider", notifier.Provider()).Info("Email notifier configured")

	recorder, summaries := summaryStores(cfg, redisClient, log)
	pipeline := notification.NewPipeline(
		notification.NewStore(lookupBooks, users, wishlists),
		notifier,
		recorder,
		log,
		notification.PipelineConfig{
			FanOut:   cfg.Notification.FanOut,
			SiteName: cfg.External.Email.FromName,
		},
	)

	pool := notification.NewWorkerPool(pipeline, cfg.Notification.Workers, cfg.Notification.QueueSize, log)
	pool.Start()

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	var (
		dispatcher notification.Dispatcher = pool
		broker     *rabbitmq.Broker
		publisher  *rabbitmq.Publisher
	)
	if cfg.Notification.Dispatch == "amqp" {
		broker, err = rabbitmq.NewBroker(cfg.RabbitMQ, log)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer broker.Close()

		consumer := rabbitmq.NewConsumer(broker, cfg.RabbitMQ.Queue, cfg.RabbitMQ.RoutingKey, cfg.RabbitMQ.Prefetch, pool)
		if err := consumer.Start(consumerCtx); err != nil {
			log.Fatalf("Failed to start RabbitMQ consumer: %v", err)
		}

		publisher = rabbitmq.NewPublisher(broker, cfg.RabbitMQ.RoutingKey)
		dispatcher = publisher
	}

	books := book.NewService(db.GetDB(), notification.NewTrigger(dispatcher, log), log)

	deps := http.Dependencies{
		DB:     db,
		Logger: log,
		Services: routes.Services{
			Books:     books,
			Users:     users,
			Wishlist:  wishlists,
			Summaries: summaries,
		},
	}
	if redisClient != nil {
		deps.Redis = redisClient.GetClient()
	}

	server, err := http.NewServer(cfg, deps)
	if err != nil {
		log.Fatalf("Failed to create HTTP server: %v", err)
	}

	log.Info("All systems operational")

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	// Give in-flight work 30 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	if publisher != nil {
		if err := publisher.Wait(ctx); err != nil {
			log.WithError(err).Warn("Pending book.available events were not published")
		}
	}
	stopConsumer()

	if err := pool.Stop(ctx); err != nil {
		log.WithError(err).Warn("Notification runs still in flight at shutdown")
	}

	log.Info("Server shutdown completed")
}

// summaryStores picks where run summaries go. Redis keeps them across
// restarts; otherwise they live in memory.
func summaryStores(cfg *config.Config, redisClient *redis.Client, log logrus.FieldLogger) (notification.SummaryRecorder, notification.SummaryReader) {
	if redisClient != nil {
		store := redis.NewSummaryStore(redisClient, cfg.Redis.SummaryTTL)
		return notification.MultiRecorder{notification.NewLogRecorder(log), store}, store
	}

	store := notification.NewMemoryStore()
	return notification.MultiRecorder{notification.NewLogRecorder(log), store}, store
}
