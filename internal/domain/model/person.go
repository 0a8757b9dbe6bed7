package model

import (
	"fmt"
	"sort"
	"strings"
)

// Person is a roster member and the slots they are qualified for.
// Eligibility is kept in declared slot order without duplicates.
type Person struct {
	Name        string   `json:"name"`
	Eligibility []SlotID `json:"eligibility"`
}

// NewPerson validates name and eligibility against slots and returns a
// normalized Person.
func NewPerson(slots Slots, name string, eligibility ...SlotID) (Person, error) {
	p := Person{Name: name, Eligibility: eligibility}
	if err := p.normalize(slots); err != nil {
		return Person{}, err
	}
	return p, nil
}

func (p *Person) normalize(slots Slots) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return ErrEmptyName
	}
	if len(p.Eligibility) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyEligibility, p.Name)
	}
	seen := make(map[SlotID]struct{}, len(p.Eligibility))
	out := make([]SlotID, 0, len(p.Eligibility))
	for _, id := range p.Eligibility {
		if !slots.Contains(id) {
			return fmt.Errorf("%w: %s (person %s)", ErrUnknownSlot, id, p.Name)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.SliceStable(out, func(i, j int) bool { return slots.Index(out[i]) < slots.Index(out[j]) })
	p.Eligibility = out
	return nil
}

// CanWork reports whether the person is eligible for slot.
func (p Person) CanWork(slot SlotID) bool {
	for _, id := range p.Eligibility {
		if id == slot {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (p Person) Clone() Person {
	return Person{Name: p.Name, Eligibility: append([]SlotID(nil), p.Eligibility...)}
}

// Roster is the ordered list of people. Roster order is the tie-break used
// by the allocation engine: among equally suitable candidates, the one
// added earliest wins.
type Roster []Person

// Validate checks the roster invariants: unique non-empty names and
// non-empty eligibility restricted to slots.
func (r Roster) Validate(slots Slots) error {
	seen := make(map[string]struct{}, len(r))
	for i := range r {
		p := r[i].Clone()
		if err := p.normalize(slots); err != nil {
			return err
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// Index returns the position of name in the roster, or -1.
func (r Roster) Index(name string) int {
	for i, p := range r {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the names in roster order.
func (r Roster) Names() []string {
	out := make([]string, len(r))
	for i, p := range r {
		out[i] = p.Name
	}
	return out
}

// Clone returns a deep copy.
func (r Roster) Clone() Roster {
	if r == nil {
		return Roster{}
	}
	out := make(Roster, len(r))
	for i, p := range r {
		out[i] = p.Clone()
	}
	return out
}
