// Command server runs the web front end for the teacher transfer tool:
// an upload form that accepts a school list workbook and returns it ranked
// by category priority and distance.
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

	"github.com/kanishkseth/APTeachersTransfers/internal/adapter/geocache"
	"github.com/kanishkseth/APTeachersTransfers/internal/adapter/httpserver"
	"github.com/kanishkseth/APTeachersTransfers/internal/adapter/nominatim"
	"github.com/kanishkseth/APTeachersTransfers/internal/config"
	"github.com/kanishkseth/APTeachersTransfers/internal/observability"
	"github.com/kanishkseth/APTeachersTransfers/internal/pipeline"
	"github.com/kanishkseth/APTeachersTransfers/internal/resolver"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	cache, err := geocache.Load(cfg.CachePath)
	if err != nil {
		logger.Error("failed to load geocode cache", "error", err)
		os.Exit(1)
	}
	logger.Info("geocode cache loaded", "path", cfg.CachePath, "entries", cache.Len())

	geocoder := nominatim.NewClient(cfg.NominatimURL, cfg.UserAgent, cfg.GeocodeTimeout)
	pacer := resolver.NewPacer(cfg.GeocodeInterval, nil)
	res := resolver.New(geocoder, cache, pacer, logger, metrics)
	p := pipeline.New(res, cache, cfg.District, cfg.Region, logger, metrics)

	srv := httpserver.NewServer(p, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// Persist any lookups cached by runs that failed before their own save.
	if err := cache.Save(); err != nil {
		logger.Error("saving geocode cache failed", "error", err)
	}

	logger.Info("shutdown complete")
}
