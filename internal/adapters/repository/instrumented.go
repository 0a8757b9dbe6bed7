package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/dutyrota/internal/domain/model"
	"github.com/okian/dutyrota/pkg/metrics"
)

type instrumented struct {
	next   Store
	driver string
}

// Instrument wraps s so every call is counted and timed.
func Instrument(s Store, driver string) Store {
	return &instrumented{next: s, driver: driver}
}

func (i *instrumented) Load(ctx context.Context) (model.State, error) {
	start := time.Now()
	st, err := i.next.Load(ctx)
	metrics.RecordStoreOperation(i.driver, "load", sinceMs(start), ignoreNotFound(err))
	return st, err
}

func (i *instrumented) Save(ctx context.Context, s model.State) error {
	start := time.Now()
	err := i.next.Save(ctx, s)
	metrics.RecordStoreOperation(i.driver, "save", sinceMs(start), err)
	return err
}

func (i *instrumented) Close() error {
	return i.next.Close()
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
