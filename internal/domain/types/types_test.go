package types_test

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dutyrota/internal/domain/model"
	"github.com/okian/dutyrota/internal/domain/rotation"
	types "github.com/okian/dutyrota/internal/domain/types"
)

func TestAllocation(t *testing.T) {
	Convey("Given an allocation", t, func() {
		a := types.Allocation{
			RunID:       "run-1",
			Absent:      []string{"Zoe"},
			Assignments: []rotation.SlotAssignment{{Slot: "A", Person: "Bob", Rule: rotation.RuleFresh}},
			Warnings:    []rotation.Warning{},
			History: model.History{
				"A": {WorkedCycle: []string{"Bob"}, LastAssigned: []string{"Bob"}},
			},
		}

		Convey("When it is cloned and the clone is changed", func() {
			c := a.Clone()
			c.Absent[0] = "Ann"
			c.Assignments[0].Person = "Ann"
			sh := c.History["A"]
			sh.WorkedCycle[0] = "Ann"

			Convey("Then the original is untouched", func() {
				So(a.Absent, ShouldResemble, []string{"Zoe"})
				So(a.Assignments[0].Person, ShouldEqual, "Bob")
				So(a.History["A"].WorkedCycle, ShouldResemble, []string{"Bob"})
			})
		})

		Convey("When it is encoded", func() {
			b, err := json.Marshal(a)
			So(err, ShouldBeNil)
			var raw map[string]any
			So(json.Unmarshal(b, &raw), ShouldBeNil)

			Convey("Then it uses the wire field names", func() {
				So(raw["run_id"], ShouldEqual, "run-1")
				So(raw, ShouldNotContainKey, "request_id")
				So(raw["warnings"], ShouldResemble, []any{})
				So(raw["replayed"], ShouldEqual, false)
				hist := raw["history"].(map[string]any)["A"].(map[string]any)
				So(hist["workedCycle"], ShouldResemble, []any{"Bob"})
			})
		})
	})
}

func TestAllocateRequest(t *testing.T) {
	Convey("Given a JSON allocate request", t, func() {
		var req types.AllocateRequest
		err := json.Unmarshal([]byte(`{"absent":["Carol"],"request_id":"mon-1"}`), &req)

		Convey("Then both fields decode", func() {
			So(err, ShouldBeNil)
			So(req.Absent, ShouldResemble, []string{"Carol"})
			So(req.RequestID, ShouldEqual, "mon-1")
		})
	})
}
