package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dutyrota/internal/domain/model"
	"github.com/okian/dutyrota/internal/domain/types"
)

// rotactl runs one command line against the store at path.
func rotactl(path string, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	full := append([]string{"--store", "file", "--store-path", path}, args...)
	err := run(context.Background(), full, &out, &errOut)
	return out.String(), err
}

func TestRotactl(t *testing.T) {
	Convey("Given an empty file store", t, func() {
		path := filepath.Join(t.TempDir(), "state.json")

		Convey("When the roster is listed", func() {
			out, err := rotactl(path, "people", "list")

			Convey("Then it reports an empty roster", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "roster is empty")
			})
		})

		Convey("When three people are added and an allocation runs", func() {
			for _, args := range [][]string{
				{"people", "add", "Bob", "--slots", "A"},
				{"people", "add", "Alice", "--slots", "A,B"},
				{"people", "add", "Carol", "--slots", "B,C"},
			} {
				_, err := rotactl(path, args...)
				So(err, ShouldBeNil)
			}
			out, err := rotactl(path, "allocate", "--json")
			So(err, ShouldBeNil)

			Convey("Then the allocation is printed as JSON", func() {
				var alloc types.Allocation
				So(json.Unmarshal([]byte(out), &alloc), ShouldBeNil)
				So(alloc.Assignments, ShouldHaveLength, 3)
				So(alloc.Assignments[0].Person, ShouldEqual, "Bob")
				So(alloc.Assignments[2].Person, ShouldEqual, "Carol")
			})

			Convey("And the history survives between invocations", func() {
				out, err := rotactl(path, "history", "show", "--json")
				So(err, ShouldBeNil)
				var h model.History
				So(json.Unmarshal([]byte(out), &h), ShouldBeNil)
				So(h["B"].WorkedCycle, ShouldResemble, []string{"Alice"})
			})

			Convey("And the text history shows cycles per slot", func() {
				out, err := rotactl(path, "history", "show")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "HISTORY")
				So(out, ShouldContainSubstring, "Carol")
			})

			Convey("And a rename is carried into the history", func() {
				_, err := rotactl(path, "people", "edit", "Alice", "--name", "Alicia")
				So(err, ShouldBeNil)
				out, err := rotactl(path, "history", "show", "--json")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "Alicia")
				So(out, ShouldNotContainSubstring, `"Alice"`)
			})

			Convey("And an edit without --slots keeps the eligibility", func() {
				out, err := rotactl(path, "people", "edit", "Carol", "--name", "Caro")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "[B,C]")
			})

			Convey("And a delete purges the person", func() {
				_, err := rotactl(path, "people", "delete", "Carol")
				So(err, ShouldBeNil)
				out, err := rotactl(path, "people", "list", "--json")
				So(err, ShouldBeNil)
				So(out, ShouldNotContainSubstring, "Carol")
			})

			Convey("And the text allocation output names the rule", func() {
				out, err := rotactl(path, "allocate", "--absent", "Carol")
				So(err, ShouldNotBeNil)
				So(out, ShouldBeEmpty)
				out, err = rotactl(path, "allocate")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "ALLOCATION")
				So(out, ShouldContainSubstring, "Alice")
				So(out, ShouldContainSubstring, "unfilled")
				So(out, ShouldContainSubstring, "warning: slot C")
			})

			Convey("And a reset requires confirmation", func() {
				_, err := rotactl(path, "reset")
				So(err, ShouldEqual, errConfirm)
				_, err = rotactl(path, "reset", "--yes")
				So(err, ShouldBeNil)
				out, err := rotactl(path, "people", "list")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "roster is empty")
			})

			Convey("And a history reset keeps the roster", func() {
				_, err := rotactl(path, "history", "reset", "-y")
				So(err, ShouldBeNil)
				out, err := rotactl(path, "people", "list", "--json")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "Carol")
			})
		})

		Convey("When the same request id is allocated by two invocations", func() {
			for _, args := range [][]string{
				{"people", "add", "Alice", "--slots", "A,B"},
				{"people", "add", "Bob", "--slots", "A"},
				{"people", "add", "Carol", "--slots", "B,C"},
				{"people", "add", "Dan", "--slots", "C"},
			} {
				_, err := rotactl(path, args...)
				So(err, ShouldBeNil)
			}
			first, err := rotactl(path, "allocate", "--request-id", "day-1")
			So(err, ShouldBeNil)
			second, err := rotactl(path, "allocate", "--request-id", "day-1")
			So(err, ShouldBeNil)

			Convey("Then the second prints the first run as a replay", func() {
				So(first, ShouldNotContainSubstring, "(replayed)")
				So(second, ShouldContainSubstring, "(replayed)")
			})

			Convey("And the rotation advanced only once", func() {
				out, err := rotactl(path, "history", "show", "--json")
				So(err, ShouldBeNil)
				var h model.History
				So(json.Unmarshal([]byte(out), &h), ShouldBeNil)
				So(h["A"].WorkedCycle, ShouldResemble, []string{"Alice"})
				So(h["B"].WorkedCycle, ShouldResemble, []string{"Carol"})
				So(h["C"].WorkedCycle, ShouldResemble, []string{"Dan"})
			})

			Convey("And a new id runs again", func() {
				out, err := rotactl(path, "allocate", "--request-id", "day-2", "--json")
				So(err, ShouldBeNil)
				var alloc types.Allocation
				So(json.Unmarshal([]byte(out), &alloc), ShouldBeNil)
				So(alloc.Replayed, ShouldBeFalse)
			})
		})

		Convey("When a roster file is imported", func() {
			file := filepath.Join(t.TempDir(), "roster.yaml")
			So(os.WriteFile(file, []byte(`
people:
  - name: Dana
    eligibility: [C, A]
  - name: Eli
    eligibility: [B]
`), 0o600), ShouldBeNil)

			out, err := rotactl(path, "people", "import", file)

			Convey("Then the people are appended in file order", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "imported 2 people")
				list, err := rotactl(path, "people", "list", "--json")
				So(err, ShouldBeNil)
				var people []model.Person
				So(json.Unmarshal([]byte(list), &people), ShouldBeNil)
				So(people[0].Name, ShouldEqual, "Dana")
				So(people[0].Eligibility, ShouldResemble, []model.SlotID{"A", "C"})
			})
		})

		Convey("When an import contains a duplicate", func() {
			file := filepath.Join(t.TempDir(), "roster.yaml")
			So(os.WriteFile(file, []byte("people:\n  - {name: Dana, eligibility: [A]}\n  - {name: Dana, eligibility: [B]}\n"), 0o600), ShouldBeNil)

			_, err := rotactl(path, "people", "import", file)

			Convey("Then it stops at that entry", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "entry 2")
			})
		})

		Convey("When the slots are printed", func() {
			out, err := rotactl(path, "slots")

			Convey("Then they come in processing order", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "A B C\n")
			})
		})
	})

	Convey("Given an unknown store driver", t, func() {
		_, err := rotactl("", "--store", "redis", "slots")

		Convey("Then the command fails before touching anything", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
