// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the rotactl CLI.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/dutyrota/internal/adapters/repository"
	"github.com/okian/dutyrota/internal/domain/dedupe"
	"github.com/okian/dutyrota/internal/domain/model"
	"github.com/okian/dutyrota/internal/domain/rotation"
	"github.com/okian/dutyrota/internal/domain/types"
	"github.com/okian/dutyrota/pkg/logger"
	"github.com/okian/dutyrota/pkg/metrics"
)

// Service owns the roster and history and serializes every change to them.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	engine  *rotation.Engine
	replays dedupe.Cache[types.Allocation]

	// Configuration
	slots           model.Slots
	idempotencySize int
	now             func() time.Time

	// State
	state   model.State
	started bool
	runs    int64
	lastRun time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSlots sets the slot set in processing order.
func WithSlots(slots model.Slots) Option {
	return func(s *Service) {
		if len(slots) > 0 {
			s.slots = append(model.Slots(nil), slots...)
		}
	}
}

// WithIdempotencySize sets how many allocation request ids are remembered.
func WithIdempotencySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.idempotencySize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used to stamp allocation runs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		slots:           append(model.Slots(nil), model.DefaultSlots...),
		idempotencySize: 1024,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the persisted state, or starts from an empty roster when
// nothing was saved yet.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.store == nil {
		s.store = repository.Instrument(repository.NewMemoryStore(), repository.DriverMemory)
		s.logger.Info(ctx, "no store configured, using memory store")
	}

	s.engine = rotation.NewEngine(rotation.WithSlots(s.slots))
	s.replays = dedupe.NewInMemory[types.Allocation](dedupe.WithMaxSize(s.idempotencySize))

	if err := s.load(ctx); err != nil {
		return err
	}

	s.started = true
	s.logger.Info(ctx, "rotation service started",
		logger.Strings("slots", s.slots.Strings()),
		logger.Int("people", len(s.state.Roster)),
		logger.Int("idempotencySize", s.idempotencySize),
	)

	return nil
}

// Stop closes the store. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping rotation service...")
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "rotation service stopped")
}

// Slots returns the configured slot set in processing order.
func (s *Service) Slots() model.Slots {
	return append(model.Slots(nil), s.slots...)
}

// load replaces the in-memory state with the stored one and rebuilds the
// replay cache from it. Callers hold s.mu.
func (s *Service) load(ctx context.Context) error {
	state, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if s.started {
			return nil
		}
		state = model.NewState(s.slots)
		s.logger.Info(ctx, "no saved state, starting with an empty roster")
	case err != nil:
		return fmt.Errorf("load state: %w", err)
	}
	if err := state.Roster.Validate(s.slots); err != nil {
		return fmt.Errorf("%w: %v", ErrStateMismatch, err)
	}
	state.History = state.History.Normalize(s.slots)
	if n := len(state.Replays); n > s.idempotencySize {
		state.Replays = state.Replays[n-s.idempotencySize:]
	}

	s.state = state
	s.seedReplays(ctx)
	metrics.UpdateRosterSize(len(state.Roster))
	return nil
}

// refresh picks up writes made by other processes sharing the store before
// a read or a read-modify-write. Callers hold s.mu.
func (s *Service) refresh(ctx context.Context) error {
	if !s.started {
		return ErrNotStarted
	}
	return s.load(ctx)
}

func (s *Service) seedReplays(ctx context.Context) {
	s.replays.Reset(ctx)
	for _, r := range s.state.Replays {
		var alloc types.Allocation
		if err := json.Unmarshal(r.Result, &alloc); err != nil {
			s.logger.Warn(ctx, "dropping unreadable replay",
				logger.String("requestID", r.RequestID),
				logger.Error(err),
			)
			continue
		}
		s.replays.Record(ctx, r.RequestID, alloc)
	}
	metrics.UpdateIdempotencyEntries(s.replays.Size())
}

// commit persists next and makes it the current state. When another writer
// got there first the stored state is reloaded, so the caller can retry
// against it, and ErrConflict is returned. Callers hold s.mu.
func (s *Service) commit(ctx context.Context, next model.State) error {
	if err := s.store.Save(ctx, next); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			if lerr := s.load(ctx); lerr != nil {
				s.logger.Error(ctx, "reload after conflict failed", logger.Error(lerr))
			} else {
				s.logger.Warn(ctx, "state changed underneath, reloaded")
			}
		}
		return fmt.Errorf("save state: %w", err)
	}
	s.state = next
	metrics.UpdateRosterSize(len(next.Roster))
	return nil
}

// ResetHistory clears every slot history but keeps the roster.
func (s *Service) ResetHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(ctx); err != nil {
		return err
	}

	next := model.State{Roster: s.state.Roster.Clone(), History: model.NewHistory(s.slots)}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.seedReplays(ctx)
	s.logger.Info(ctx, "history reset")
	return nil
}

// ResetAll clears the roster and the history.
func (s *Service) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(ctx); err != nil {
		return err
	}

	if err := s.commit(ctx, model.NewState(s.slots)); err != nil {
		return err
	}
	s.seedReplays(ctx)
	s.runs = 0
	s.lastRun = time.Time{}
	metrics.RecordRosterChange("reset")
	s.logger.Info(ctx, "all data reset")
	return nil
}

// History returns a copy of the current history with an entry per slot.
func (s *Service) History(ctx context.Context) (model.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s.state.History.Normalize(s.slots), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := types.Stats{
		Started: s.started,
		Slots:   s.Slots(),
		Cycles:  make(map[model.SlotID]types.CycleProgress, len(s.slots)),
	}
	if !s.started {
		return st
	}

	st.People = len(s.state.Roster)
	st.Runs = s.runs
	st.IdempotencyEntries = s.replays.Size()
	if !s.lastRun.IsZero() {
		at := s.lastRun
		st.LastRunAt = &at
	}
	for _, slot := range s.slots {
		var p types.CycleProgress
		for _, person := range s.state.Roster {
			if person.CanWork(slot) {
				p.Eligible++
			}
		}
		p.Worked = len(s.state.History[slot].WorkedCycle)
		st.Cycles[slot] = p
	}
	return st
}
