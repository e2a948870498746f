package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CatalogAPI/internal/catalog"
	"CatalogAPI/internal/config"
	"CatalogAPI/internal/db"
	"CatalogAPI/internal/handler"
	"CatalogAPI/internal/logger"
	"CatalogAPI/internal/model"
	"CatalogAPI/internal/router"
	"CatalogAPI/internal/store"
)

func main() {
	debugFlag := flag.Bool("d", false, "enable debug logging")
	migrateFlag := flag.Bool("migrate", false, "apply pending migrations before start")
	flag.Parse()

	cfg := config.LoadConfig()
	if err := logger.Init(cfg.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "log init failed: %v\n", err)
		os.Exit(1)
	}
	logger.SetDebug(*debugFlag)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *migrateFlag {
		if err := db.RunMigrations(cfg.MigrationsDir, cfg.PostgresDSN); err != nil {
			fatal("migrations_failed", err)
		}
	}

	if err := db.InitPostgres(ctx, cfg.PostgresDSN); err != nil {
		fatal("postgres_init_failed", err)
	}
	defer db.ClosePostgres()

	if err := db.InitRedis(ctx, cfg.Redis); err != nil {
		fatal("redis_init_failed", err)
	}
	defer func() { _ = db.CloseRedis() }()

	if err := model.InitRegistry(cfg.ModelsDir); err != nil {
		fatal("registry_init_failed", err)
	}
	logger.Info("models_initialized", map[string]any{"count": len(model.Registry)})

	catalogs, err := catalog.LoadCatalogsFromDir(cfg.CatalogsDir, model.Registry)
	if err != nil {
		fatal("catalogs_init_failed", err)
	}

	h := &handler.Handler{
		Catalogs: catalogs,
		DB:       db.Pool,
		Store:    store.NewRedisStore(db.RDB, cfg.Store.TTL),
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(h, cfg.CORS),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server_shutdown_failed", map[string]any{"error": err.Error()})
		}
	}()

	logger.Info("server_start", map[string]any{"port": cfg.Port, "catalogs": catalogs.Names()})
	log.Printf("Starting server on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal("server_error", err)
	}
	logger.Info("server_stopped", nil)
}

func fatal(event string, err error) {
	logger.Error(event, map[string]any{"error": err.Error()})
	fmt.Fprintf(os.Stderr, "%s: %v\n", event, err)
	os.Exit(1)
}
