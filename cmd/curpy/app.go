package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/seblin/curpy/internal/config"
	"github.com/seblin/curpy/internal/logging"
	"github.com/seblin/curpy/internal/rates"
	"github.com/seblin/curpy/internal/storage"
)

// app holds the wired components shared by every subcommand.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	policy rates.FreshnessPolicy
	store  storage.Storage
	svc    *rates.Service
}

func newApp(ctx context.Context, cfg config.Config, stderr io.Writer) (*app, error) {
	logger := logging.New(stderr, cfg.Log)
	slog.SetDefault(logger)

	policy, err := rates.ParseCutoff(cfg.Cutoff, cfg.PublisherTZ)
	if err != nil {
		return nil, err
	}

	st, err := storage.Open(ctx, storage.Config{
		Driver: cfg.Storage.Driver,
		DSN:    cfg.DSN,
		Path:   cfg.CacheFile,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	client := rates.NewHTTPClient(cfg.HTTPTimeout, cfg.SkipTLSVerify)
	source := rates.NewECBSource(cfg.URL, client, logger)
	repo := rates.NewRepository(st, source, policy, rates.WithLogger(logger))

	return &app{
		cfg:    cfg,
		logger: logger,
		policy: policy,
		store:  st,
		svc:    rates.NewService(repo),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
