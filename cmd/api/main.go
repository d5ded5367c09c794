package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"carapi/internal/ai"
	"carapi/internal/auth"
	"carapi/internal/config"
	"carapi/internal/database"
	"carapi/internal/database/migration"
	handlers "carapi/internal/http/handler"
	"carapi/internal/http/middleware"
	"carapi/internal/otel"
	"carapi/internal/ratelimit"
	"carapi/internal/repository/postgres"
	"carapi/internal/service"
	"carapi/internal/storage"
	"carapi/internal/viewcache"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(os.Stderr).With().Str("service", "carapi").Logger()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer shutdownTracing(ctx)

	// PostgreSQL connection (pooled via database/sql, instrumented driver)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// S3-compatible object storage for listing images
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}
	imageStore := storage.NewImageStore(objStore, cfg.MinIO)

	// Redis backs the extraction rate limiter and the cached-view invalidation
	redisClient, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	limiter := ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit)
	views := viewcache.NewRedisInvalidator(redisClient)

	extractor, err := ai.NewGeminiExtractor(ctx, cfg.Gemini)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize extractor")
	}

	carRepo := postgres.NewCarPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	verifier := auth.NewVerifier(cfg.Auth, userRepo)

	carSvc := service.NewCarService(
		verifier,
		extractor,
		imageStore,
		carRepo,
		limiter,
		views,
		time.Duration(cfg.Gemini.TimeoutSec)*time.Second,
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    32 * 1024 * 1024, // listing uploads carry base64 images inline
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMw, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}
	app.Use(promMw.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, carSvc)

	addr := ":" + cfg.Port

	log.Info().Str("addr", addr).Msg("starting server")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
