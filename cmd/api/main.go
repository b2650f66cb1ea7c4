package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"heroes/internal/config"
	"heroes/internal/database"
	"heroes/internal/database/migration"
	handlers "heroes/internal/http/handler"
	"heroes/internal/http/middleware"
	"heroes/internal/logger"
	"heroes/internal/model"
	"heroes/internal/otel"
	"heroes/internal/repository"
	"heroes/internal/repository/memory"
	"heroes/internal/repository/postgres"
	"heroes/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Configuration comes from the environment (.env auto-loaded if present)
	cfg := config.Load()

	lggr, err := logger.New(cfg.LogLevel, cfg.Location())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lggr.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, lggr)
	if err != nil {
		lggr.Fatal("failed to initialize tracing", zap.Error(err))
	}

	repo, db, err := openStore(ctx, cfg, lggr)
	if err != nil {
		lggr.Fatal("failed to open hero store", zap.String("store", cfg.Store), zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}
	heroSvc := service.NewHeroService(repo)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		lggr.Fatal("failed to register http metrics", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	app.Use(middleware.Logger(lggr))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, heroSvc, reg)

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			lggr.Error("server shutdown failed", zap.Error(err))
		}
		if err := shutdownTracing(sctx); err != nil {
			lggr.Error("tracing shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	lggr.Info("server_starting", zap.String("addr", addr), zap.String("store", cfg.Store))
	if err := app.Listen(addr); err != nil {
		lggr.Fatal("failed to start server", zap.Error(err))
	}
	lggr.Info("server_stopped")
}

// openStore returns the repository selected by HERO_STORE. The *sql.DB is
// non-nil only for the postgres store and must be closed by the caller.
func openStore(ctx context.Context, cfg *config.AppConfig, lggr *zap.Logger) (repository.HeroRepository, *sql.DB, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.NewHeroMemory(model.SeedHeroes()), nil, nil
	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := migration.EnsureMigrated(ctx, db, lggr, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewHeroPostgres(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown HERO_STORE %q", cfg.Store)
	}
}
