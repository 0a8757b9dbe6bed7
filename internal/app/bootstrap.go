package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/dutyrota/internal/adapters/repository"
	"github.com/okian/dutyrota/internal/config"
	"github.com/okian/dutyrota/pkg/logger"
)

// OpenStore opens the store selected by cfg.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	return repository.Open(ctx,
		repository.WithDriver(cfg.StoreDriver),
		repository.WithPath(cfg.StorePath),
		repository.WithNATS(cfg.NATSURL, cfg.NATSBucket),
		repository.WithNATSTimeout(time.Duration(cfg.NATSTimeoutMS)*time.Millisecond),
	)
}

// Open builds and starts a Service from cfg. The caller stops it.
func Open(ctx context.Context, cfg *config.Config, l logger.Logger) (*Service, error) {
	slots, err := cfg.SlotSet()
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	svc := New(
		WithStore(store),
		WithSlots(slots),
		WithIdempotencySize(cfg.IdempotencySize),
		WithLogger(l),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return svc, nil
}
