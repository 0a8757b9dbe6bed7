package repository

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Open builds the configured backend wrapped with metrics instrumentation.
func Open(ctx context.Context, opts ...Option) (Store, error) {
	s := settings{
		driver:      DriverMemory,
		natsBucket:  defaultBucket,
		natsTimeout: defaultNATSTimeout,
		maxRetries:  defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(&s)
	}

	var (
		st  Store
		err error
	)
	switch s.driver {
	case DriverMemory:
		st = NewMemoryStore()
	case DriverFile:
		st, err = NewFileStore(s.path)
	case DriverSQLite:
		st, err = NewSQLiteStore(ctx, s.path)
	case DriverNATS:
		st, err = openNATS(ctx, s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, s.driver)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(st, s.driver), nil
}

func openNATS(ctx context.Context, s settings) (Store, error) {
	url := s.natsURL
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("dutyrota"),
		nats.Timeout(s.natsTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	st, err := NewNATSStore(ctx, nc, s.natsBucket, WithOwnedConn(), WithBucketRetries(s.maxRetries))
	if err != nil {
		nc.Close()
		return nil, err
	}
	return st, nil
}
