package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"movie-roi-pipeline/internal/config"
	"movie-roi-pipeline/internal/database"
	"movie-roi-pipeline/internal/handlers"
	"movie-roi-pipeline/internal/models"
	"movie-roi-pipeline/internal/repository"
	"movie-roi-pipeline/internal/routes"
	"movie-roi-pipeline/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	loadEnvFile()

	log := setupLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	command := os.Args[1]

	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	// Load configuration
	cfg := config.Load()

	// Fatal configuration errors abort before any network or file I/O
	if err := cfg.Validate(command); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	switch command {
	case "extract":
		runPipeline(cfg, log, true, false)
	case "transform":
		runPipeline(cfg, log, false, true)
	case "run":
		runPipeline(cfg, log, true, true)
	case "serve":
		serve(cfg, log)
	default:
		printUsage()
		log.Fatalf("Unknown command %q", command)
	}
}

// runPipeline executes the requested stages in order. The transform stage
// only starts when the extract stage exited cleanly; an empty extract is a
// clean exit and the transform then short-circuits on its own.
func runPipeline(cfg *config.Config, log *logrus.Logger, doExtract, doTransform bool) {
	runs, closeRuns := openRunLogStore(cfg, log)
	defer closeRuns()

	runID := uuid.New().String()
	ctx := context.Background()

	if doExtract {
		tmdb := services.NewTMDBService(&cfg.TMDB, log)
		extractor := services.NewExtractService(tmdb, cfg, log)

		if err := runStage(ctx, runs, log, runID, models.StageExtract, extractor.Run); err != nil {
			log.Fatalf("Extract stage failed: %v", err)
		}
	}

	if doTransform {
		minioService := buildMinIOService(cfg, log)
		transformer := services.NewTransformService(cfg, minioService, log)

		if err := runStage(ctx, runs, log, runID, models.StageTransform, transformer.Run); err != nil {
			log.Fatalf("Transform stage failed: %v", err)
		}
	}
}

// runStage runs one stage and records its outcome in the run history when
// the store is enabled. Recording failures are logged, never fatal.
func runStage(ctx context.Context, runs repository.RunLogRepository, log *logrus.Logger, runID, stage string, fn func(context.Context) (int, error)) error {
	startedAt := time.Now().UTC()
	count, err := fn(ctx)

	entry := &models.RunLog{
		RunID:      runID,
		Stage:      stage,
		Status:     models.RunStatusSuccess,
		ItemCount:  count,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
	}
	if err != nil {
		entry.Status = models.RunStatusFailed
		entry.ErrorMessage = err.Error()
	}

	if runs != nil {
		if recordErr := runs.Create(ctx, entry); recordErr != nil {
			log.WithError(recordErr).Warn("Failed to record run log")
		}
	}

	return err
}

func serve(cfg *config.Config, log *logrus.Logger) {
	minioService := buildMinIOService(cfg, log)
	dashboardService := services.NewDashboardService(cfg, minioService, log)

	var db *database.Database
	var runs repository.RunLogRepository
	if cfg.Database.Enabled {
		var err error
		db, err = database.Connect(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Errorf("Error closing database connection: %v", err)
			}
		}()
		runs = repository.NewRunLogRepository(db)
	}

	dashboardHandler := handlers.NewDashboardHandler(dashboardService, runs, log)

	app := fiber.New(fiber.Config{
		AppName:      "Movie ROI Pipeline Dashboard",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler(log),
	})

	setupMiddleware(app)

	app.Get("/health", healthCheckHandler(cfg, db))

	routes.Setup(app, dashboardHandler)

	// Graceful shutdown
	go gracefulShutdown(app, log)

	log.Infof("Dashboard API starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start HTTP server: %v", err)
	}
}

// buildMinIOService creates the object-store client when the output
// destination needs one; local runs get nil.
func buildMinIOService(cfg *config.Config, log *logrus.Logger) *services.MinIOService {
	if cfg.Output.Destination != config.DestinationMinIO {
		return nil
	}

	minioService, err := services.NewMinIOService(&cfg.MinIO, log)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}
	return minioService
}

// openRunLogStore connects the optional run-history store. Connection
// failures degrade to running without run history.
func openRunLogStore(cfg *config.Config, log *logrus.Logger) (repository.RunLogRepository, func()) {
	if !cfg.Database.Enabled {
		return nil, func() {}
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.WithError(err).Warn("Run history unavailable, continuing without it")
		return nil, func() {}
	}

	return repository.NewRunLogRepository(db), func() {
		if err := db.Close(); err != nil {
			log.Errorf("Error closing database connection: %v", err)
		}
	}
}

func setupLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	if os.Getenv("GO_ENV") == "dev" || os.Getenv("GO_ENV") == "development" {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

func setupMiddleware(app *fiber.App) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Logger middleware
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// CORS middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET, OPTIONS",
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	}))
}

func healthCheckHandler(cfg *config.Config, db *database.Database) fiber.Handler {
	return func(c *fiber.Ctx) error {
		response := fiber.Map{
			"status":      "ok",
			"service":     "movie-roi-pipeline",
			"version":     "1.0.0",
			"destination": cfg.Output.Destination,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		}

		if db != nil {
			dbStatus := "healthy"
			if err := db.HealthCheck(); err != nil {
				dbStatus = "unhealthy"
			}
			response["database"] = dbStatus
		}

		return c.JSON(response)
	}
}

func customErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"status": code,
		}).Error("Request error")

		return c.Status(code).JSON(fiber.Map{
			"status":  "error",
			"code":    code,
			"message": err.Error(),
		})
	}
}

func gracefulShutdown(app *fiber.App, log *logrus.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Errorf("Error during shutdown: %v", err)
	}

	log.Info("Server shutdown complete")
}

func loadEnvFile() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{})
	log.SetOutput(os.Stdout)

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "dev"
	}

	execDir, err := os.Getwd()
	if err != nil {
		log.Warnf("Could not get working directory: %v", err)
		return
	}

	envFile := filepath.Join(execDir, "envs", ".env."+env)
	if err := godotenv.Load(envFile); err != nil {
		defaultEnvFile := filepath.Join(execDir, "envs", ".env")
		if err := godotenv.Load(defaultEnvFile); err == nil {
			log.Infof("Environment loaded from default file %s", defaultEnvFile)
		}
	} else {
		log.Infof("Environment loaded from file %s", envFile)
	}
}

func printUsage() {
	fmt.Println("movie-roi-pipeline: batch ETL for movie ROI data")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  movie-roi-pipeline extract     fetch top-revenue movies into the staging artifact")
	fmt.Println("  movie-roi-pipeline transform   flatten the staging artifact into the processed CSV")
	fmt.Println("  movie-roi-pipeline run         extract then transform")
	fmt.Println("  movie-roi-pipeline serve       start the dashboard API")
}
