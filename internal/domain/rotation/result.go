package rotation

import "github.com/okian/dutyrota/internal/domain/model"

// Rule names the selection rule that decided a slot.
type Rule string

// Selection rules in priority order, plus the unfilled outcome.
const (
	// RuleFresh picked someone who has not worked the slot this cycle.
	RuleFresh Rule = "fresh"
	// RuleCycleReset cleared a completed cycle and started a new one.
	RuleCycleReset Rule = "cycle_reset"
	// RuleFallback picked a repeat because no fresh candidate was left but
	// the cycle was not complete either.
	RuleFallback Rule = "fallback"
	// RuleUnfilled means nobody eligible was left for the slot.
	RuleUnfilled Rule = "unfilled"
)

// SlotAssignment is the outcome for one slot.
type SlotAssignment struct {
	Slot     model.SlotID `json:"slot"`
	Person   string       `json:"person,omitempty"`
	Unfilled bool         `json:"unfilled"`
	Rule     Rule         `json:"rule"`
}

// Warning reports a slot that could not be filled.
type Warning struct {
	Slot    model.SlotID `json:"slot"`
	Message string       `json:"message"`
}

// Result is the outcome of one allocation run.
type Result struct {
	// Assignments has one entry per slot in declared slot order.
	Assignments []SlotAssignment `json:"assignments"`
	// History is the updated history to persist.
	History  model.History `json:"history"`
	Warnings []Warning     `json:"warnings"`
}

// Assigned returns the person assigned to slot, if any.
func (r Result) Assigned(slot model.SlotID) (string, bool) {
	for _, a := range r.Assignments {
		if a.Slot == slot {
			return a.Person, !a.Unfilled
		}
	}
	return "", false
}

// Unfilled returns the slots left without an assignee.
func (r Result) Unfilled() []model.SlotID {
	var out []model.SlotID
	for _, a := range r.Assignments {
		if a.Unfilled {
			out = append(out, a.Slot)
		}
	}
	return out
}
