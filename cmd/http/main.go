package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rafaelleal24/catalog/internal/adapters/config"
	"github.com/rafaelleal24/catalog/internal/adapters/http"
	"github.com/rafaelleal24/catalog/internal/adapters/http/controllers"
	"github.com/rafaelleal24/catalog/internal/adapters/http/middleware"
	"github.com/rafaelleal24/catalog/internal/adapters/mongo"
	"github.com/rafaelleal24/catalog/internal/adapters/mongo/repository"
	"github.com/rafaelleal24/catalog/internal/adapters/outbox"
	"github.com/rafaelleal24/catalog/internal/adapters/rabbitmq"
	"github.com/rafaelleal24/catalog/internal/adapters/redis"
	"github.com/rafaelleal24/catalog/internal/adapters/storage"
	"github.com/rafaelleal24/catalog/internal/core/logger"
	"github.com/rafaelleal24/catalog/internal/core/service"
	"github.com/rafaelleal24/catalog/internal/core/validation"
	"github.com/spf13/afero"
)

// @title       Catalog API
// @version     1.0
// @description Product catalog with image uploads

// @host     localhost:3000
// @BasePath /

//go:generate swag init -d ../.. -g cmd/http/main.go -o ../../docs --parseInternal

func main() {
	// initialize config and logger
	cfg := config.NewConfig()
	if err := logger.Initialize(cfg.Logger.Endpoint, cfg.Logger.ServiceName, cfg.Logger.Verbose); err != nil {
		// logger not available yet, fall back to stderr
		fmt.Fprintln(os.Stderr, "failed to initialize logger: "+err.Error())
		os.Exit(1)
	}

	// cancellable context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize database connection
	mongoClient, err := mongo.NewConnection(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal(ctx, "Failed to connect to MongoDB", err, nil)
	}
	defer mongo.Disconnect(mongoClient)
	logger.Info(ctx, "Connected to MongoDB", map[string]any{"database": cfg.Mongo.Database})

	database := mongoClient.Database(cfg.Mongo.Database)
	if err := mongo.EnsureIndexes(ctx, database); err != nil {
		logger.Fatal(ctx, "Failed to create MongoDB indexes", err, nil)
	}

	// upload directory
	imageStore, err := storage.NewDiskImageStore(afero.NewOsFs(), cfg.Upload)
	if err != nil {
		logger.Fatal(ctx, "Failed to prepare upload directory", err, nil)
	}
	logger.Info(ctx, "Upload directory ready", map[string]any{"dir": cfg.Upload.Dir, "max_bytes": cfg.Upload.MaxBytes})

	healthCheckers := []controllers.HealthChecker{
		{Name: "mongodb", Check: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
		{Name: "uploads", Check: imageStore.HealthCheck},
	}

	// optional rate limiter
	var rateLimiter middleware.RateLimiter
	if cfg.Redis.Enabled() {
		redisClient, err := redis.NewConnection(cfg.Redis)
		if err != nil {
			logger.Fatal(ctx, "Failed to connect to Redis", err, nil)
		}
		defer redisClient.Close()
		logger.Info(ctx, "Connected to Redis", map[string]any{
			"create_product_limit": cfg.RateLimit.CreateProductLimit,
			"window":               cfg.RateLimit.Window.String(),
		})

		rateLimiter = redis.NewRateLimiter(redisClient)
		healthCheckers = append(healthCheckers, controllers.HealthChecker{Name: "redis", Check: redisClient.Ping})
	}

	// optional event publishing through the outbox
	var outboxRepository outbox.Repository
	if cfg.RabbitMQ.Enabled() {
		broker, err := rabbitmq.NewRabbitMQAdapter(cfg.RabbitMQ)
		if err != nil {
			logger.Fatal(ctx, "Failed to connect to RabbitMQ", err, nil)
		}
		defer broker.Close()
		logger.Info(ctx, "Connected to RabbitMQ", nil)

		outboxRepository = repository.NewOutboxRepository(database)
		outboxHandler := outbox.NewHandler(outboxRepository, broker, cfg.Outbox)
		go outboxHandler.Start(ctx)
		logger.Info(ctx, "Outbox handler started", map[string]any{"interval": cfg.Outbox.Interval.String(), "batch_size": cfg.Outbox.BatchSize})

		healthCheckers = append(healthCheckers, controllers.HealthChecker{
			Name:  "rabbitmq",
			Check: func(context.Context) error { return broker.HealthCheck() },
		})
	}

	// repositories and services
	productRepository := repository.NewProductRepository(database, outboxRepository)
	validator := validation.NewValidator(cfg.Upload.AllowedTypes, cfg.Upload.MaxBytes)
	productService := service.NewProductService(productRepository, imageStore, validator)

	// controllers
	productController := controllers.NewProductController(productService)
	healthController := controllers.NewHealthController(healthCheckers)

	// router
	router := http.NewRouter(healthController, productController, imageStore, rateLimiter, cfg)

	// graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info(ctx, "Received shutdown signal", map[string]any{"signal": sig.String()})
		cancel()
	}()

	logger.Info(ctx, "Starting HTTP server", map[string]any{
		"addr":        cfg.HTTP.BindInterface + ":" + cfg.HTTP.Port,
		"environment": cfg.App.Environment,
	})
	if err := router.ListenAndServe(ctx, cfg.HTTP); err != nil {
		logger.Error(ctx, "HTTP server failed", err, nil)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := logger.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintln(os.Stderr, "logger shutdown error: "+err.Error())
	}
}
