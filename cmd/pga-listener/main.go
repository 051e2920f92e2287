package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pga/internal/config"
	"pga/internal/listener"
	"pga/internal/logging"
	"pga/internal/pipeline"
	"pga/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	must(err)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(ctx, cfg)
	must(err)
	defer store.Close()

	conn, err := listener.NewConnector(ctx, cfg, cfg.MailListenerProvider)
	must(err)

	processor := pipeline.NewProcessingService(store, pipeline.NewNormalizer(cfg.KnownInstitutions, logger), logger)
	must(listener.NewService(cfg, conn, processor, logger).Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
