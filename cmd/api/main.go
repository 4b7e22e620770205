package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/qmodel/backend/internal/api/handlers"
	"github.com/qmodel/backend/internal/evaluation"
	"github.com/qmodel/backend/internal/metrics"
	"github.com/qmodel/backend/internal/middleware/ratelimit"
	"github.com/qmodel/backend/internal/middleware/security"
	"github.com/qmodel/backend/internal/middleware/validation"
	"github.com/qmodel/backend/internal/simulation"
	mongostore "github.com/qmodel/backend/internal/storage/mongo"
	"github.com/qmodel/backend/pkg/config"
	appLogger "github.com/qmodel/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting quality model API server")

	metrics.Init()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := mongostore.NewClient(ctx, mongostore.Options{
		URI:               cfg.Mongo.URI,
		Host:              cfg.Mongo.Host,
		Port:              cfg.Mongo.Port,
		Database:          cfg.Mongo.Database,
		Username:          cfg.Mongo.Username,
		Password:          cfg.Mongo.Password,
		ConnectTimeoutSec: cfg.Mongo.ConnectTimeoutSec,
	})
	cancel()
	if err != nil {
		appLogger.Fatal("Failed to create mongo client", zap.Error(err))
	}
	defer store.Close(context.Background())

	engine := evaluation.NewEngine(store, evaluation.Limits{
		GroupLimit:         cfg.Query.GroupLimit,
		BucketLimit:        cfg.Query.BucketLimit,
		RelationLimit:      cfg.Query.RelationLimit,
		RelationWindowDays: cfg.Query.RelationWindowDays,
	})
	simulator := simulation.NewSimulator(engine)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}))

	limiter := ratelimit.New(ratelimit.Config{Logger: appLogger.GetLogger()})
	defer limiter.Stop()

	evaluationHandler := handlers.NewEvaluationHandler(engine)
	relationHandler := handlers.NewRelationHandler(engine)
	simulationHandler := handlers.NewSimulationHandler(simulator)

	app.Get("/metrics", metrics.MetricsHandler())

	api := app.Group("/api/v1")

	api.Get("/projects", evaluationHandler.ListProjects)

	api.Get("/metrics", evaluationHandler.ListMetrics)
	api.Get("/metrics/:id", evaluationHandler.GetMetric)
	api.Post("/metrics/:id/evaluations", limiter.Middleware(), evaluationHandler.CreateMetricEvaluation)
	api.Put("/metrics/:id/links", limiter.Middleware(), evaluationHandler.UpdateMetricLinks)

	api.Get("/factors", evaluationHandler.ListFactors)
	api.Get("/factors/metrics", evaluationHandler.ListFactorMetrics)
	api.Get("/factors/:id", evaluationHandler.GetFactor)
	api.Get("/factors/:id/metrics", evaluationHandler.GetFactorMetrics)
	api.Post("/factors/:id/evaluations", limiter.Middleware(), evaluationHandler.CreateFactorEvaluation)
	api.Put("/factors/:id/links", limiter.Middleware(), evaluationHandler.UpdateFactorLinks)

	api.Get("/strategic-indicators", evaluationHandler.ListStrategicIndicators)
	api.Get("/strategic-indicators/factors", evaluationHandler.ListStrategicIndicatorFactors)
	api.Get("/strategic-indicators/:id", evaluationHandler.GetStrategicIndicator)
	api.Get("/strategic-indicators/:id/factors", evaluationHandler.GetStrategicIndicatorFactors)
	api.Get("/strategic-indicators/:id/metrics", evaluationHandler.GetStrategicIndicatorMetrics)
	api.Post("/strategic-indicators/:id/evaluations", limiter.Middleware(), evaluationHandler.CreateStrategicIndicatorEvaluation)

	api.Post("/provision/factors", limiter.Middleware(), evaluationHandler.ProvisionFactors)
	api.Post("/provision/strategic-indicators", limiter.Middleware(), evaluationHandler.ProvisionStrategicIndicators)

	api.Get("/relations", relationHandler.ListRelations)
	api.Post("/relations/metric-factor", limiter.Middleware(), relationHandler.CreateMetricFactorRelations)
	api.Post("/relations/factor-indicator", limiter.Middleware(), relationHandler.CreateFactorIndicatorRelations)

	api.Post("/simulations", limiter.Middleware(), simulationHandler.CreateSession)
	api.Get("/simulations/:id/factors", simulationHandler.GetFactors)
	api.Post("/simulations/:id/overrides", simulationHandler.ApplyOverrides)
	api.Delete("/simulations/:id", simulationHandler.DeleteSession)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
