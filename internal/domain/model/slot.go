// Package model contains the roster, slot and history types shared by the
// allocation engine, the service and the persistence adapters.
package model

import (
	"fmt"
	"strings"
)

// SlotID identifies a duty slot, e.g. "A".
type SlotID string

// DefaultSlots is the slot set used when none is configured.
var DefaultSlots = Slots{"A", "B", "C"} //nolint:gochecknoglobals // read-only default

// Slots is the ordered, duplicate-free set of slots filled on every run.
// Order matters: slots are processed in this order and earlier slots get
// first pick of the available people.
type Slots []SlotID

// NewSlots validates and builds a slot set from raw names.
func NewSlots(names ...string) (Slots, error) {
	if len(names) == 0 {
		return nil, ErrNoSlots
	}
	out := make(Slots, 0, len(names))
	seen := make(map[SlotID]struct{}, len(names))
	for _, n := range names {
		id := SlotID(strings.TrimSpace(n))
		if id == "" {
			return nil, fmt.Errorf("%w: empty slot id", ErrNoSlots)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSlot, id)
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// Contains reports whether id is part of the set.
func (s Slots) Contains(id SlotID) bool {
	return s.Index(id) >= 0
}

// Index returns the position of id in the declared order, or -1.
func (s Slots) Index(id SlotID) int {
	for i, v := range s {
		if v == id {
			return i
		}
	}
	return -1
}

// Strings returns the slot ids as plain strings.
func (s Slots) Strings() []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = string(v)
	}
	return out
}
