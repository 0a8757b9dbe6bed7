package model

import "encoding/json"

// State is the persisted unit: the roster, the per-slot history and the
// results of recent idempotent runs.
type State struct {
	Roster  Roster   `json:"roster"`
	History History  `json:"history"`
	Replays []Replay `json:"replays,omitempty"`
}

// Replay is the recorded result of a run that carried a request id, oldest
// first in State.Replays. Result is opaque to the model.
type Replay struct {
	RequestID string          `json:"request_id"`
	Result    json.RawMessage `json:"result"`
}

// NewState returns an empty state for slots.
func NewState(slots Slots) State {
	return State{Roster: Roster{}, History: NewHistory(slots)}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	return State{Roster: s.Roster.Clone(), History: s.History.Clone(), Replays: cloneReplays(s.Replays)}
}

// WithReplay returns a copy of s that also remembers r, keeping at most
// limit replays. A limit of zero or less keeps all of them.
func (s State) WithReplay(r Replay, limit int) State {
	out := s.Clone()
	kept := out.Replays[:0]
	for _, prev := range out.Replays {
		if prev.RequestID != r.RequestID {
			kept = append(kept, prev)
		}
	}
	kept = append(kept, Replay{RequestID: r.RequestID, Result: append(json.RawMessage(nil), r.Result...)})
	if limit > 0 && len(kept) > limit {
		kept = kept[len(kept)-limit:]
	}
	out.Replays = kept
	return out
}

func cloneReplays(in []Replay) []Replay {
	if in == nil {
		return nil
	}
	out := make([]Replay, len(in))
	for i, r := range in {
		out[i] = Replay{RequestID: r.RequestID, Result: append(json.RawMessage(nil), r.Result...)}
	}
	return out
}
