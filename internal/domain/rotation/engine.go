// Package rotation implements the fair rotation allocator.
//
// Each run fills the slots in their declared order. For every slot the
// engine prefers a present, eligible person who has not worked the slot in
// the current cycle; when everyone present and eligible already has, the
// cycle is reset. Ties are always broken by roster order.
package rotation

import (
	"context"
	"fmt"

	"github.com/okian/dutyrota/internal/domain/model"
)

const unfilledMessage = "no qualified person present"

// Input is the state snapshot an allocation run works on.
type Input struct {
	Roster  model.Roster
	Absent  []string
	History model.History
}

// Allocator assigns people to slots for one run.
type Allocator interface {
	// Allocate computes a run. It never mutates in; the updated history is
	// returned in the Result.
	Allocate(ctx context.Context, in Input) (Result, error)
}

// Engine is the default Allocator.
type Engine struct {
	slots model.Slots
}

// NewEngine creates an engine over model.DefaultSlots unless WithSlots says otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{slots: append(model.Slots(nil), model.DefaultSlots...)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Slots returns the slot set in processing order.
func (e *Engine) Slots() model.Slots {
	return append(model.Slots(nil), e.slots...)
}

// Allocate runs the rotation for one day.
//
// The run fails before touching anything when the roster is invalid, an
// absentee is unknown, or fewer people are present than there are slots.
// A slot with no eligible candidate left is reported as unfilled and its
// history is not changed.
func (e *Engine) Allocate(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	pool, err := e.presentPool(in)
	if err != nil {
		return Result{}, err
	}

	history := in.History.Normalize(e.slots)
	res := Result{
		Assignments: make([]SlotAssignment, 0, len(e.slots)),
		Warnings:    []Warning{},
	}
	assigned := make(map[string]struct{}, len(e.slots))

	for _, slot := range e.slots {
		sh := history[slot]

		var candidates []string
		var eligiblePresent []string
		for _, p := range pool {
			if !p.CanWork(slot) {
				continue
			}
			eligiblePresent = append(eligiblePresent, p.Name)
			if _, taken := assigned[p.Name]; !taken {
				candidates = append(candidates, p.Name)
			}
		}

		if len(candidates) == 0 {
			res.Assignments = append(res.Assignments, SlotAssignment{Slot: slot, Unfilled: true, Rule: RuleUnfilled})
			res.Warnings = append(res.Warnings, Warning{Slot: slot, Message: unfilledMessage})
			continue
		}

		pick, rule := choose(&sh, candidates, eligiblePresent)
		sh.Record(pick)
		history[slot] = sh
		assigned[pick] = struct{}{}
		res.Assignments = append(res.Assignments, SlotAssignment{Slot: slot, Person: pick, Rule: rule})
	}

	res.History = history
	return res, nil
}

// choose applies the selection rules in priority order. It may reset the
// cycle held by sh.
func choose(sh *model.SlotHistory, candidates, eligiblePresent []string) (string, Rule) {
	for _, name := range candidates {
		if !sh.HasWorked(name) {
			return name, RuleFresh
		}
	}
	if cycleComplete(*sh, eligiblePresent) {
		sh.ResetCycle()
		return candidates[0], RuleCycleReset
	}
	// Everyone left has worked the slot, but some fresher people were
	// taken by earlier slots today. Slot order wins over cross-slot fairness.
	return candidates[0], RuleFallback
}

// cycleComplete reports whether every present, eligible person has worked
// the slot since the last reset. Absent people never block completion.
func cycleComplete(sh model.SlotHistory, eligiblePresent []string) bool {
	if len(eligiblePresent) == 0 {
		return false
	}
	for _, name := range eligiblePresent {
		if !sh.HasWorked(name) {
			return false
		}
	}
	return true
}

// presentPool validates the input and returns the present people in roster order.
func (e *Engine) presentPool(in Input) (model.Roster, error) {
	if len(in.Roster) == 0 {
		return nil, ErrEmptyRoster
	}
	if err := in.Roster.Validate(e.slots); err != nil {
		return nil, err
	}

	absent := make(map[string]struct{}, len(in.Absent))
	for _, name := range in.Absent {
		if in.Roster.Index(name) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAbsentee, name)
		}
		absent[name] = struct{}{}
	}

	pool := make(model.Roster, 0, len(in.Roster))
	for _, p := range in.Roster {
		if _, out := absent[p.Name]; !out {
			pool = append(pool, p)
		}
	}
	if len(pool) < len(e.slots) {
		return nil, fmt.Errorf("%w: %d available, %d slots", ErrInsufficientHeadcount, len(pool), len(e.slots))
	}
	return pool, nil
}
