package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/okian/dutyrota/internal/domain/model"
)

const stateKey = "state"

// NATSOption configures a NATSStore.
type NATSOption func(*NATSStore)

// WithOwnedConn makes Close also close the NATS connection.
func WithOwnedConn() NATSOption {
	return func(s *NATSStore) { s.ownsConn = true }
}

// WithBucketRetries sets how often bucket creation is attempted.
func WithBucketRetries(n int) NATSOption {
	return func(s *NATSStore) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// NATSStore keeps the state under a single key of a JetStream KV bucket.
//
// Writes are compare-and-set against the revision seen by the last Load or
// Save, so two processes sharing a bucket cannot silently overwrite each
// other: the loser gets ErrConflict and must reload.
type NATSStore struct {
	nc         *nats.Conn
	kv         jetstream.KeyValue
	ownsConn   bool
	maxRetries int

	mu       sync.Mutex
	revision uint64
}

// NewNATSStore opens or creates bucket on the JetStream server behind nc.
func NewNATSStore(ctx context.Context, nc *nats.Conn, bucket string, opts ...NATSOption) (*NATSStore, error) {
	s := &NATSStore{nc: nc, maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		opt(s)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("nats store: jetstream: %w", err)
	}
	kv, err := ensureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "duty rotation roster and history",
		History:     5,
		Storage:     jetstream.FileStorage,
	}, s.maxRetries)
	if err != nil {
		return nil, err
	}
	s.kv = kv
	return s, nil
}

// ensureBucket creates the bucket or opens it when another process won the race.
func ensureBucket(ctx context.Context, js jetstream.JetStream, cfg jetstream.KeyValueConfig, maxRetries int) (jetstream.KeyValue, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		kv, err := js.CreateKeyValue(ctx, cfg)
		if err == nil {
			return kv, nil
		}
		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err = js.KeyValue(ctx, cfg.Bucket)
			if err == nil {
				return kv, nil
			}
		}
		lastErr = err

		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is small
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return nil, fmt.Errorf("nats store: open bucket %s after %d attempts: %w", cfg.Bucket, maxRetries, lastErr)
}

// Load fetches the state and remembers its revision.
func (s *NATSStore) Load(ctx context.Context) (model.State, error) {
	entry, err := s.kv.Get(ctx, stateKey)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return model.State{}, ErrNotFound
	}
	if err != nil {
		return model.State{}, fmt.Errorf("nats store: get: %w", err)
	}

	var st model.State
	if err := json.Unmarshal(entry.Value(), &st); err != nil {
		return model.State{}, fmt.Errorf("nats store: decode revision %d: %w", entry.Revision(), err)
	}

	s.mu.Lock()
	s.revision = entry.Revision()
	s.mu.Unlock()
	return st, nil
}

// Save writes the state if nobody else wrote since our last Load or Save.
func (s *NATSStore) Save(ctx context.Context, st model.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("nats store: encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rev uint64
	if s.revision == 0 {
		rev, err = s.kv.Create(ctx, stateKey, raw)
	} else {
		rev, err = s.kv.Update(ctx, stateKey, raw, s.revision)
	}
	if err != nil {
		if isWrongRevision(err) {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return fmt.Errorf("nats store: put: %w", err)
	}
	s.revision = rev
	return nil
}

func isWrongRevision(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}
	var apiErr *jetstream.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}

// Close closes the connection when the store owns it.
func (s *NATSStore) Close() error {
	if s.ownsConn && s.nc != nil {
		s.nc.Close()
	}
	return nil
}
