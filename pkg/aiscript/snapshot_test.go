package aiscript

import (
	"bytes"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// Snapshot-tests a handful of representative programs end to end through
// Engine.Compile/Run, grounded on go-dws's internal/interp/fixture_test.go
// use of snaps.MatchSnapshot for fixtures with no hand-written expected
// output file — here scaled down to inline source strings rather than a
// .ai fixture corpus, since no such corpus was carried over from the
// teacher or original_source.
func TestEngineSnapshots(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{
			name: "closures_and_arithmetic",
			source: `
				fn make_counter() {
					let n = 0
					fn increment() {
						n = n + 1
						return n
					}
					return increment
				}
				let counter = make_counter()
				print(counter())
				print(counter())
				print(counter())
			`,
		},
		{
			name: "class_instance_and_method",
			source: `
				class Point {
					x = 0
					y = 0

					fn init(x, y) {
						self.x = x
						self.y = y
					}

					fn sum() {
						return self.x + self.y
					}
				}
				let p = Point(3, 4)
				print(p.sum())
			`,
		},
		{
			name: "question_mark_passes_nil_through",
			source: `
				fn lookup() {
					return {}.get("missing")?
				}
				fn caller() {
					let v = lookup()?
					return v
				}
				print(caller())
			`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var out bytes.Buffer
			e := New(WithOutput(&out))
			id, err := e.Compile(c.source)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if _, err := e.Run(id); err != nil {
				t.Fatalf("Run: %v", err)
			}
			snaps.MatchSnapshot(t, out.String())
		})
	}
}
