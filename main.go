package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/handlers"
	"inventory/internal/metrics"
	"inventory/internal/middleware"
	"inventory/internal/prediction"
	"inventory/internal/repositories"
	"inventory/internal/services"
	"inventory/pkg/kafka"
	"inventory/pkg/rabbitmq"
)

// App is the wired HTTP server and the resources it owns.
type App struct {
	Fiber *fiber.App

	db       *gorm.DB
	closers  []func() error
	consumer func(ctx context.Context) error
	logger   *zap.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	app, err := NewApp(cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.consumer != nil {
		if err := app.consumer(ctx); err != nil {
			log.Error("Failed to start order event consumer", zap.Error(err))
		}
	}

	go func() {
		log.Info("Starting server", zap.String("addr", cfg.AppPort))
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	log.Info("Shutting down server")

	if err := app.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("Error during Fiber shutdown", zap.Error(err))
	}
	log.Info("Server gracefully stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

// NewApp opens the database, builds every service and registers the routes.
func NewApp(cfg *config.Config, log *zap.Logger, registerer prometheus.Registerer) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{db: db, logger: log}
	a.closers = append(a.closers, func() error { return database.Close(db) })

	repos := repositories.NewGORMRepositories(db)
	if cfg.Inventory.SeedDemoData {
		if _, err := database.SeedDemoProducts(context.Background(), repos.Products, log); err != nil {
			a.Close()
			return nil, err
		}
	}

	m := metrics.NewWithRegisterer(registerer)
	predictor := buildPredictor(cfg.Prediction, log)

	orderOpts := []services.OrderServiceOption{
		services.WithOrderMetrics(m),
		services.WithLowStockThreshold(cfg.Inventory.LowStockThreshold),
	}
	publisher, err := a.buildPublisher(cfg.Events, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	if publisher != nil {
		orderOpts = append(orderOpts, services.WithEventPublisher(publisher))
	}

	productService := services.NewProductService(repos.Products, log)
	orderService := services.NewOrderService(repositories.NewGORMUnitOfWork(db), repos.Orders, log, orderOpts...)
	authService := services.NewAuthService(repos.Users, cfg.JWTSecret, log)
	recService := services.NewRecommendationService(repos.Products, predictor, log,
		services.WithPredictionTimeout(cfg.Prediction.Timeout),
		services.WithPredictionConcurrency(cfg.Prediction.Concurrency),
		services.WithRecommendationMetrics(m))

	app := fiber.New(fiber.Config{AppName: "inventory"})
	app.Use(recover.New())
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")
	authRequired := middleware.AuthRequired(authService, log)

	handlers.NewAuthHandler(authService, log).RegisterRoutes(apiV1)
	handlers.NewRecommendationHandler(recService, cfg.Inventory.LowStockThreshold, log).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService, log).RegisterRoutes(apiV1, authRequired)
	handlers.NewOrderHandler(orderService, log).RegisterRoutes(apiV1, authRequired)
	handlers.NewPredictionHandler(predictor, log).RegisterRoutes(apiV1, authRequired)

	app.Get("/health", a.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	a.Fiber = app
	return a, nil
}

// buildPredictor selects the demand model. A missing script degrades to the heuristic.
func buildPredictor(cfg config.PredictionConfig, log *zap.Logger) prediction.Predictor {
	var p prediction.Predictor
	switch cfg.Mode {
	case "heuristic":
		return prediction.HeuristicPredictor{}
	case "http":
		p = prediction.NewHTTPPredictor(cfg.ServiceURL, cfg.Timeout, log)
	default:
		sp, err := prediction.NewScriptPredictor(prediction.ScriptConfig{
			Interpreter: cfg.PythonPath,
			ScriptPath:  cfg.ScriptPath,
			Timeout:     cfg.Timeout,
		}, log)
		if err != nil {
			log.Warn("Prediction script unavailable, using heuristic", zap.Error(err))
			return prediction.HeuristicPredictor{}
		}
		p = sp
	}
	if cfg.Fallback {
		p = prediction.WithFallback(p, log)
	}
	return p
}

// buildPublisher connects the configured broker. It returns nil when events are disabled.
func (a *App) buildPublisher(cfg config.EventsConfig, log *zap.Logger) (services.EventPublisher, error) {
	switch cfg.Broker {
	case "rabbitmq":
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
		if err != nil {
			return nil, fmt.Errorf("initialize RabbitMQ client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.consumer = func(ctx context.Context) error {
			return client.ConsumeOrderEvents(ctx, rabbitmq.LowStockAlerter(log))
		}
		return client, nil
	case "kafka":
		producer, err := kafka.NewProducer(kafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic}, log)
		if err != nil {
			return nil, fmt.Errorf("initialize Kafka producer: %w", err)
		}
		a.closers = append(a.closers, producer.Close)
		return producer, nil
	default:
		return nil, nil
	}
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		a.logger.Warn("Health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unhealthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "down",
		})
	}
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": "up",
	})
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("Error while releasing resources", zap.Error(err))
	}
	a.closers = nil
}
