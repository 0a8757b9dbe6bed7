package model

// RecentLimit bounds SlotHistory.LastAssigned.
const RecentLimit = 2

// SlotHistory is the rotation memory of a single slot.
//
// WorkedCycle lists who has worked the slot since the last cycle reset, in
// assignment order and without duplicates. LastAssigned holds the most
// recent assignees, most recent first, at most RecentLimit entries.
type SlotHistory struct {
	WorkedCycle  []string `json:"workedCycle"`
	LastAssigned []string `json:"lastAssigned"`
}

// Clone returns a deep copy with non-nil sequences so that JSON output
// always carries [] rather than null.
func (h SlotHistory) Clone() SlotHistory {
	return SlotHistory{
		WorkedCycle:  append(make([]string, 0, len(h.WorkedCycle)), h.WorkedCycle...),
		LastAssigned: append(make([]string, 0, len(h.LastAssigned)), h.LastAssigned...),
	}
}

// HasWorked reports whether name is in the current cycle.
func (h SlotHistory) HasWorked(name string) bool {
	return contains(h.WorkedCycle, name)
}

// Record notes that name was assigned to the slot.
func (h *SlotHistory) Record(name string) {
	if !contains(h.WorkedCycle, name) {
		h.WorkedCycle = append(h.WorkedCycle, name)
	}
	recent := make([]string, 0, RecentLimit)
	recent = append(recent, name)
	for _, n := range h.LastAssigned {
		if len(recent) == RecentLimit {
			break
		}
		recent = append(recent, n)
	}
	h.LastAssigned = recent
}

// ResetCycle starts a new rotation for the slot.
func (h *SlotHistory) ResetCycle() {
	h.WorkedCycle = []string{}
}

// History is the per-slot rotation memory, keyed by slot id. Slots are
// independent of each other.
type History map[SlotID]SlotHistory

// NewHistory returns an empty history with an entry for every slot.
func NewHistory(slots Slots) History {
	h := make(History, len(slots))
	for _, id := range slots {
		h[id] = SlotHistory{WorkedCycle: []string{}, LastAssigned: []string{}}
	}
	return h
}

// Clone returns a deep copy.
func (h History) Clone() History {
	out := make(History, len(h))
	for id, sh := range h {
		out[id] = sh.Clone()
	}
	return out
}

// Normalize returns a copy that has an entry for every slot. Entries for
// slots outside the set are kept untouched.
func (h History) Normalize(slots Slots) History {
	out := h.Clone()
	for _, id := range slots {
		if _, ok := out[id]; !ok {
			out[id] = SlotHistory{WorkedCycle: []string{}, LastAssigned: []string{}}
		}
	}
	return out
}

// Rename returns a copy in which every occurrence of oldName is replaced
// by newName. Positions and counts are preserved.
func (h History) Rename(oldName, newName string) History {
	return h.mapNames(func(seq []string) []string {
		out := make([]string, len(seq))
		for i, n := range seq {
			if n == oldName {
				n = newName
			}
			out[i] = n
		}
		return out
	})
}

// Remove returns a copy without any occurrence of name. The relative order
// of the remaining entries is preserved.
func (h History) Remove(name string) History {
	return h.mapNames(func(seq []string) []string { return without(seq, name) })
}

// Forget returns a copy in which name is dropped from the current cycle of
// slot. LastAssigned is left alone.
func (h History) Forget(slot SlotID, name string) History {
	out := h.Clone()
	sh, ok := out[slot]
	if !ok {
		return out
	}
	sh.WorkedCycle = without(sh.WorkedCycle, name)
	out[slot] = sh
	return out
}

func (h History) mapNames(fn func([]string) []string) History {
	out := make(History, len(h))
	for id, sh := range h {
		out[id] = SlotHistory{
			WorkedCycle:  fn(sh.WorkedCycle),
			LastAssigned: fn(sh.LastAssigned),
		}
	}
	return out
}

func contains(seq []string, name string) bool {
	for _, n := range seq {
		if n == name {
			return true
		}
	}
	return false
}

func without(seq []string, name string) []string {
	out := make([]string, 0, len(seq))
	for _, n := range seq {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
