package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/SirClappington/euclones/internal/config"
	"github.com/SirClappington/euclones/internal/metrics"
	"github.com/SirClappington/euclones/internal/render"
	"github.com/SirClappington/euclones/internal/services"
)

// app is the wired object graph shared by every command.
type app struct {
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	content  *services.ContentService
	renderer *render.Renderer
	closers  []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	store, images, err := a.newStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Content backend ready", zap.String("backend", store.Backend()))

	a.content = services.NewContentService(store, logger, a.metrics, cfg.Content.Timeout)
	a.renderer, err = render.New(images, render.WithBaseURL(cfg.Service.BaseURL))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return a, nil
}

func (a *app) newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.ContentStore, render.ImageURLBuilder, error) {
	switch cfg.Content.Backend {
	case config.BackendSanity:
		store := services.NewSanityStore(cfg.Sanity, cfg.Content.Timeout, logger)
		return store, services.NewSanityImageBuilder(cfg.Sanity.ProjectID, cfg.Sanity.Dataset), nil
	case config.BackendFirestore:
		store, err := services.NewFirestoreStore(ctx, cfg.Firestore, logger)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, services.DirectImageBuilder{}, nil
	case config.BackendSnapshot:
		store, err := services.LoadSnapshotStore(cfg.Content.SnapshotPath)
		if err != nil {
			return nil, nil, err
		}
		return store, services.DirectImageBuilder{}, nil
	}
	return nil, nil, fmt.Errorf("unknown content backend %q", cfg.Content.Backend)
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		_ = closeFn()
	}
}
