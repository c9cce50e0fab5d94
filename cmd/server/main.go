package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/partspec/internal/config"
	"github.com/JonMunkholm/partspec/internal/core"
	_ "github.com/JonMunkholm/partspec/internal/core/profiles" // Register layouts
	"github.com/JonMunkholm/partspec/internal/logging"
	"github.com/JonMunkholm/partspec/internal/source"
	"github.com/JonMunkholm/partspec/internal/store"
	"github.com/JonMunkholm/partspec/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"sheet", cfg.Sheet.Path,
		"layout", cfg.Sheet.LayoutName,
		"publishing", cfg.Database.Enabled(),
	)

	if cfg.Sheet.Path == "" {
		slog.Error("SHEET_PATH is not set")
		os.Exit(1)
	}

	layout, err := cfg.Sheet.Layout()
	if err != nil {
		slog.Error("failed to resolve layout", "error", err)
		os.Exit(1)
	}
	slog.Debug("layouts registered", "count", core.LayoutCount(), "names", core.Names())

	ctx := context.Background()
	opts := source.OptionsFromConfig(cfg.Sheet)
	reload := func(ctx context.Context) (core.Workbook, error) {
		return source.Open(ctx, cfg.Sheet.Path, opts)
	}

	wb, err := reload(ctx)
	if err != nil {
		slog.Error("failed to read specification", "path", cfg.Sheet.Path, "error", err, "hint", core.FormatUserError(err))
		os.Exit(1)
	}

	service, err := core.NewService(wb, layout)
	if err != nil {
		slog.Error("failed to create service", "error", err, "hint", core.FormatUserError(err))
		os.Exit(1)
	}

	catalog := service.Catalog()
	seriesCount := 0
	for _, c := range catalog {
		seriesCount += len(c.Series)
	}
	slog.Info("specification loaded",
		"source", wb.Source,
		"rows", wb.Table.Len(),
		"classifications", len(catalog),
		"series", seriesCount,
	)

	serverOpts := []web.Option{web.WithReloader(reload)}

	// Publishing is optional: without a database the API is read-only.
	if cfg.Database.Enabled() {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		repo := store.New(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare schema", "error", err)
			os.Exit(1)
		}
		serverOpts = append(serverOpts, web.WithPartStore(repo))
	} else {
		slog.Warn("DATABASE_URL not set, publishing disabled")
	}

	server := web.NewServer(service, cfg, serverOpts...)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.WaitForWrites(shutdownCtx); err != nil {
			slog.Warn("writes did not complete in time", "error", err)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
