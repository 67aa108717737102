// entry point of the application
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ytharvest/internal/config"
	"ytharvest/internal/cookiemgr"
	"ytharvest/internal/errs"
	"ytharvest/internal/extractor"
	"ytharvest/internal/fetch"
	"ytharvest/internal/hub"
	"ytharvest/internal/observability"
	"ytharvest/internal/processor"
	"ytharvest/internal/shard"
	httpserver "ytharvest/pkg/http/server"
	"ytharvest/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// A local .env is optional.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		slog.Error("config new", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Options{
		AddSource: true,
		Level:     cfg.App.LogLevel,
	})
	if err != nil {
		slog.WarnContext(ctx, "logger level invalid; defaulting to info", slog.Any("error", err))
	}

	if err := os.MkdirAll(cfg.Dir.Tmp, 0o755); err != nil {
		log.ErrorContext(ctx, "create tmp dir", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	metrics := observability.New()

	var metricsSrv *httpserver.Server
	if cfg.HTTP.MetricsAddr != "" {
		metricsSrv = httpserver.New(observability.Handler(), httpserver.Options{
			Addr:            cfg.HTTP.MetricsAddr,
			ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		})

		log.InfoContext(ctx, "metrics endpoint started", slog.String("addr", cfg.HTTP.MetricsAddr))
	}

	log.InfoContext(ctx, "checking if yt-dlp is installed. it may take some time...")

	extractor.Install(ctx)

	cookies := cookiemgr.New(log, cfg)

	var store hub.Store

	client, err := hub.New(log, cfg)

	switch {
	case err == nil:
		store = client

		log.InfoContext(ctx, "remote store initialized", slog.String("repo", cfg.Hub.Repo))
	case errors.Is(err, errs.ErrHubDisabled):
		log.WarnContext(ctx, "remote store disabled, persisting locally only")
	default:
		log.ErrorContext(ctx, "hub new", slog.Any("error", err))
	}

	gate := hub.NewGate(cfg.Harvest.UploadMinInterval)
	shards := shard.NewManager(log, cfg, store, gate, metrics)

	ext := extractor.NewYTdlp(log)
	captions := fetch.NewCaptionFetcher(log, ext, cfg.Dir.Tmp)
	pipeline := fetch.NewPipeline(log, cfg, ext, cookies, captions, metrics)

	proc := processor.New(log, cfg, pipeline, shards, store, gate, metrics)

	runErr := proc.Run(ctx)

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(); err != nil {
			log.Error(err.Error())
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.ErrorContext(ctx, "processor run", slog.Any("error", runErr))
		stop()
		os.Exit(1)
	}

	log.InfoContext(ctx, "ytharvest finished")
}
