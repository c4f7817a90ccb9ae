package layout

import (
	"math"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestLayoutInvariants checks, over generated graphs, the properties every
// layout must satisfy regardless of how well it converged.
func TestLayoutInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	if testing.Short() {
		parameters.MinSuccessfulTests = 10
	}

	properties := gopter.NewProperties(parameters)

	properties.Property("positions cover exactly the input nodes", prop.ForAll(
		func(n, extra int, seed uint64) bool {
			in := randomInput(n, extra, seed)
			res, err := Run(in, WithSchedule(quickSchedule))
			if err != nil {
				return false
			}
			if len(res.Positions) != len(in.Nodes) {
				return false
			}
			for _, node := range in.Nodes {
				if _, ok := res.Positions[node.ID]; !ok {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 40),
		gen.IntRange(0, 60),
		gen.UInt64(),
	))

	properties.Property("center is pinned to the viewport center", prop.ForAll(
		func(n int, w, h float64) bool {
			in := starInput(n, w, h)
			res, err := Run(in, WithSchedule(quickSchedule))
			if err != nil {
				return false
			}
			return res.Positions["center"] == Point{X: w / 2, Y: h / 2}
		},
		gen.IntRange(0, 40),
		gen.Float64Range(50, 2000),
		gen.Float64Range(50, 2000),
	))

	properties.Property("coordinates are finite", prop.ForAll(
		func(n, extra int, seed uint64) bool {
			res, err := Run(randomInput(n, extra, seed), WithSchedule(quickSchedule))
			if err != nil {
				return false
			}
			for _, p := range res.Positions {
				if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 40),
		gen.IntRange(0, 60),
		gen.UInt64(),
	))

	properties.Property("initial placement is a pure function of the input", prop.ForAll(
		func(n int, w, h float64) bool {
			in := starInput(n, w, h)
			a, errA := InitialPlacement(in)
			b, errB := InitialPlacement(in)
			return errA == nil && errB == nil && reflect.DeepEqual(a, b)
		},
		gen.IntRange(0, 100),
		gen.Float64Range(50, 2000),
		gen.Float64Range(50, 2000),
	))

	properties.TestingRun(t)
}
