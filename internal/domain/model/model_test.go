package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dutyrota/internal/domain/model"
)

func TestSlots(t *testing.T) {
	Convey("Given raw slot names", t, func() {
		Convey("When they are valid", func() {
			slots, err := model.NewSlots("A", " B ", "C")

			Convey("Then order is kept and names are trimmed", func() {
				So(err, ShouldBeNil)
				So(slots.Strings(), ShouldResemble, []string{"A", "B", "C"})
				So(slots.Index("B"), ShouldEqual, 1)
				So(slots.Contains("D"), ShouldBeFalse)
			})
		})

		Convey("When a slot repeats", func() {
			_, err := model.NewSlots("A", "A")
			So(errors.Is(err, model.ErrDuplicateSlot), ShouldBeTrue)
		})

		Convey("When no slots are given", func() {
			_, err := model.NewSlots()
			So(errors.Is(err, model.ErrNoSlots), ShouldBeTrue)
		})
	})
}

func TestNewPerson(t *testing.T) {
	slots := model.DefaultSlots

	Convey("Given person input", t, func() {
		Convey("When eligibility is out of order and repeated", func() {
			p, err := model.NewPerson(slots, "  Carol ", "C", "B", "C")

			Convey("Then it is normalized to declared slot order", func() {
				So(err, ShouldBeNil)
				So(p.Name, ShouldEqual, "Carol")
				So(p.Eligibility, ShouldResemble, []model.SlotID{"B", "C"})
				So(p.CanWork("B"), ShouldBeTrue)
				So(p.CanWork("A"), ShouldBeFalse)
			})
		})

		Convey("When the name is blank", func() {
			_, err := model.NewPerson(slots, "   ", "A")
			So(errors.Is(err, model.ErrEmptyName), ShouldBeTrue)
		})

		Convey("When no slot is selected", func() {
			_, err := model.NewPerson(slots, "Dave")
			So(errors.Is(err, model.ErrEmptyEligibility), ShouldBeTrue)
		})

		Convey("When a slot is unknown", func() {
			_, err := model.NewPerson(slots, "Dave", "Z")
			So(errors.Is(err, model.ErrUnknownSlot), ShouldBeTrue)
		})
	})
}

func TestRosterValidate(t *testing.T) {
	Convey("Given a roster with a duplicate name", t, func() {
		r := model.Roster{
			{Name: "Alice", Eligibility: []model.SlotID{"A"}},
			{Name: "Alice", Eligibility: []model.SlotID{"B"}},
		}

		Convey("Then validation reports it", func() {
			So(errors.Is(r.Validate(model.DefaultSlots), model.ErrDuplicateName), ShouldBeTrue)
		})
	})

	Convey("Given a roster with a person without slots", t, func() {
		r := model.Roster{{Name: "Bob"}}
		So(errors.Is(r.Validate(model.DefaultSlots), model.ErrEmptyEligibility), ShouldBeTrue)
	})
}

func TestSlotHistoryRecord(t *testing.T) {
	Convey("Given an empty slot history", t, func() {
		var h model.SlotHistory

		Convey("When the same people are recorded repeatedly", func() {
			for _, n := range []string{"Alice", "Bob", "Alice", "Carol", "Bob"} {
				h.Record(n)
			}

			Convey("Then the cycle has each name once in first-assignment order", func() {
				So(h.WorkedCycle, ShouldResemble, []string{"Alice", "Bob", "Carol"})
			})

			Convey("And the recent list is most-recent-first and bounded", func() {
				So(h.LastAssigned, ShouldResemble, []string{"Bob", "Carol"})
			})
		})

		Convey("When the cycle is reset", func() {
			h.Record("Alice")
			h.ResetCycle()
			So(h.WorkedCycle, ShouldBeEmpty)
			So(h.LastAssigned, ShouldResemble, []string{"Alice"})
		})
	})
}

func TestHistoryCascades(t *testing.T) {
	Convey("Given history that mentions Alice in several places", t, func() {
		h := model.History{
			"A": {WorkedCycle: []string{"Bob", "Alice", "Carol"}, LastAssigned: []string{"Alice", "Alice"}},
			"B": {WorkedCycle: []string{"Alice"}, LastAssigned: []string{"Carol", "Alice"}},
			"C": {WorkedCycle: []string{}, LastAssigned: []string{}},
		}

		Convey("When Alice is renamed", func() {
			out := h.Rename("Alice", "Alicia")

			Convey("Then every occurrence moves, in place", func() {
				So(out["A"].WorkedCycle, ShouldResemble, []string{"Bob", "Alicia", "Carol"})
				So(out["A"].LastAssigned, ShouldResemble, []string{"Alicia", "Alicia"})
				So(out["B"].LastAssigned, ShouldResemble, []string{"Carol", "Alicia"})
			})

			Convey("And the input is untouched", func() {
				So(h["A"].WorkedCycle[1], ShouldEqual, "Alice")
			})
		})

		Convey("When Alice is removed", func() {
			out := h.Remove("Alice")

			Convey("Then all occurrences go and the rest keep their order", func() {
				So(out["A"].WorkedCycle, ShouldResemble, []string{"Bob", "Carol"})
				So(out["A"].LastAssigned, ShouldBeEmpty)
				So(out["B"].WorkedCycle, ShouldBeEmpty)
				So(out["B"].LastAssigned, ShouldResemble, []string{"Carol"})
			})
		})

		Convey("When Alice is forgotten for slot B only", func() {
			out := h.Forget("B", "Alice")
			So(out["B"].WorkedCycle, ShouldBeEmpty)
			So(out["B"].LastAssigned, ShouldResemble, []string{"Carol", "Alice"})
			So(out["A"].WorkedCycle, ShouldContain, "Alice")
		})
	})
}

func TestStateJSON(t *testing.T) {
	Convey("Given a fresh state", t, func() {
		s := model.NewState(model.DefaultSlots)
		s.Roster = append(s.Roster, model.Person{Name: "Alice", Eligibility: []model.SlotID{"A", "B"}})

		Convey("When it is encoded", func() {
			raw, err := json.Marshal(s)
			So(err, ShouldBeNil)

			Convey("Then empty sequences are arrays and the shape survives decoding", func() {
				So(string(raw), ShouldContainSubstring, `"C":{"workedCycle":[],"lastAssigned":[]}`)
				So(string(raw), ShouldContainSubstring, `{"name":"Alice","eligibility":["A","B"]}`)

				var back model.State
				So(json.Unmarshal(raw, &back), ShouldBeNil)
				So(back, ShouldResemble, s)
			})
		})
	})
}

func TestStateReplays(t *testing.T) {
	Convey("Given a state with no recorded replays", t, func() {
		s := model.NewState(model.DefaultSlots)
		result := func(id string) json.RawMessage { return json.RawMessage(`{"run_id":"` + id + `"}`) }

		Convey("When three replays are recorded with room for two", func() {
			out := s.WithReplay(model.Replay{RequestID: "day-1", Result: result("1")}, 2)
			out = out.WithReplay(model.Replay{RequestID: "day-2", Result: result("2")}, 2)
			out = out.WithReplay(model.Replay{RequestID: "day-3", Result: result("3")}, 2)

			Convey("Then only the newest two are kept, oldest first", func() {
				So(out.Replays, ShouldHaveLength, 2)
				So(out.Replays[0].RequestID, ShouldEqual, "day-2")
				So(out.Replays[1].RequestID, ShouldEqual, "day-3")
			})

			Convey("And the original state is untouched", func() {
				So(s.Replays, ShouldBeEmpty)
			})
		})

		Convey("When the same request id is recorded twice", func() {
			out := s.WithReplay(model.Replay{RequestID: "day-1", Result: result("1")}, 0)
			out = out.WithReplay(model.Replay{RequestID: "day-1", Result: result("2")}, 0)

			Convey("Then it is stored once with the latest result", func() {
				So(out.Replays, ShouldHaveLength, 1)
				So(string(out.Replays[0].Result), ShouldEqual, `{"run_id":"2"}`)
			})
		})

		Convey("When a state with replays is cloned and the clone is changed", func() {
			out := s.WithReplay(model.Replay{RequestID: "day-1", Result: result("1")}, 0)
			c := out.Clone()
			c.Replays[0].Result[2] = 'X'

			Convey("Then the source keeps its bytes", func() {
				So(string(out.Replays[0].Result), ShouldEqual, `{"run_id":"1"}`)
			})
		})

		Convey("When it is encoded", func() {
			raw, err := json.Marshal(s)
			So(err, ShouldBeNil)

			Convey("Then the replays key is omitted", func() {
				So(string(raw), ShouldNotContainSubstring, "replays")
			})
		})
	})
}
