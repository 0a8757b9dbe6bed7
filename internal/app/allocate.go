package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/dutyrota/internal/domain/model"
	"github.com/okian/dutyrota/internal/domain/rotation"
	"github.com/okian/dutyrota/internal/domain/types"
	"github.com/okian/dutyrota/pkg/logger"
	"github.com/okian/dutyrota/pkg/metrics"
)

// Allocation run outcomes reported to metrics.
const (
	outcomeApplied  = "applied"
	outcomeReplayed = "replayed"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// Allocate runs the rotation for today and persists the new history. A
// failed run leaves the stored state untouched.
func (s *Service) Allocate(ctx context.Context, req types.AllocateRequest) (types.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(ctx); err != nil {
		return types.Allocation{}, err
	}

	requestID := strings.TrimSpace(req.RequestID)
	if requestID != "" {
		if prev, ok := s.replays.Lookup(ctx, requestID); ok {
			metrics.RecordAllocationRun(outcomeReplayed)
			s.logger.Debug(ctx, "allocation replayed", logger.String("requestID", requestID))
			prev = prev.Clone()
			prev.Replayed = true
			return prev, nil
		}
	}

	start := time.Now()
	res, err := s.engine.Allocate(ctx, rotation.Input{
		Roster:  s.state.Roster,
		Absent:  req.Absent,
		History: s.state.History,
	})
	if err != nil {
		outcome := outcomeRejected
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = outcomeFailed
		}
		metrics.RecordAllocationRun(outcome)
		s.logger.Warn(ctx, "allocation rejected", logger.Error(err), logger.Strings("absent", req.Absent))
		return types.Allocation{}, err
	}

	alloc := types.Allocation{
		RunID:       uuid.NewString(),
		RequestID:   requestID,
		At:          s.now().UTC(),
		Absent:      append([]string{}, req.Absent...),
		Assignments: res.Assignments,
		Warnings:    res.Warnings,
		History:     res.History.Clone(),
	}

	next := s.state.Clone()
	next.History = res.History
	if requestID != "" {
		raw, err := json.Marshal(alloc)
		if err != nil {
			metrics.RecordAllocationRun(outcomeFailed)
			return types.Allocation{}, fmt.Errorf("encode replay: %w", err)
		}
		next = next.WithReplay(model.Replay{RequestID: requestID, Result: raw}, s.idempotencySize)
	}
	if err := s.commit(ctx, next); err != nil {
		metrics.RecordAllocationRun(outcomeFailed)
		s.logger.Error(ctx, "allocation not saved", logger.Error(err))
		return types.Allocation{}, err
	}
	s.runs++
	s.lastRun = alloc.At

	if requestID != "" {
		s.replays.Record(ctx, requestID, alloc.Clone())
		metrics.UpdateIdempotencyEntries(s.replays.Size())
	}

	metrics.RecordAllocationRun(outcomeApplied)
	metrics.RecordAllocationLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.UpdateLastAllocation(float64(alloc.At.Unix()))
	fields := make([]logger.Field, 0, len(res.Assignments)+2)
	fields = append(fields, logger.String("runID", alloc.RunID), logger.Int("warnings", len(res.Warnings)))
	for _, a := range res.Assignments {
		metrics.RecordSlotOutcome(string(a.Slot), string(a.Rule))
		fields = append(fields, logger.String("slot_"+string(a.Slot), describe(a)))
	}
	s.logger.Info(ctx, "allocation applied", fields...)

	return alloc, nil
}

func describe(a rotation.SlotAssignment) string {
	if a.Unfilled {
		return string(rotation.RuleUnfilled)
	}
	return a.Person + " (" + string(a.Rule) + ")"
}
