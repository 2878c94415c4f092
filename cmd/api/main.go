package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"checklistapi/docs"
	"checklistapi/internal/config"
	"checklistapi/internal/database"
	"checklistapi/internal/database/migration"
	handlers "checklistapi/internal/http/handler"
	"checklistapi/internal/http/middleware"
	"checklistapi/internal/logging"
	"checklistapi/internal/otel"
	"checklistapi/internal/report"
	"checklistapi/internal/repository/postgres"
	"checklistapi/internal/service"
	"checklistapi/internal/storage"
)

// @title Checklist API
// @version 1.0
// @description Vehicle inspection checklists with photo storage and PDF export.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.NewStdout(config.Location(cfg.Timezone), cfg.LogLevel)
	log := logging.Component(logger, "main")

	if err := run(cfg, logger); err != nil {
		log.Error("server_stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg *config.AppConfig, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logging.Component(logger, "main")

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing_shutdown_failed", zap.Error(err))
		}
	}()

	db, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		return err
	}

	// S3-compatible object storage for checklist photos
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return err
	}

	repo := postgres.NewChecklistPostgres(db)
	svc := service.NewChecklistService(objStore, repo,
		service.WithLogger(logger),
		service.WithMaxMediaBytes(cfg.MaxMediaBytes),
	)

	rc := cfg.Report
	loader := report.NewImageLoader(objStore,
		report.WithFetchTimeout(time.Duration(rc.FetchTimeoutSec)*time.Second),
		report.WithConcurrency(rc.FetchConcurrency),
		report.WithMaxBytes(int64(rc.MaxImageBytes)),
		report.WithMaxPixels(rc.MaxImagePixels),
		report.WithLoaderLogger(logger),
	)
	gen := report.NewGenerator(loader, report.WithMaxPages(rc.MaxPages), report.WithLogger(logger))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(metrics.Handler())

	handlers.RegisterRoutes(app, svc, gen, reg)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Info("server_listening", zap.String("addr", addr), zap.String("public_host", cfg.AppHost))
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
