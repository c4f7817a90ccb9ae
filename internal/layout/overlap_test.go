package layout

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

// clusteredPositions packs n nodes plus a center into a tight spiral.
func clusteredPositions(n int) []r2.Vec {
	pos := make([]r2.Vec, n+1)
	pos[0] = r2.Vec{X: 500, Y: 500}
	for i := 1; i <= n; i++ {
		a := float64(i) * 0.7
		r := 2 * math.Sqrt(float64(i))
		pos[i] = r2.Vec{X: 500 + r*math.Cos(a), Y: 500 + r*math.Sin(a)}
	}
	return pos
}

func TestResolveOverlaps_Reduces(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		wantGrid bool
	}{
		{"brute force", 30, false},
		{"spatial grid", 300, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustCompile(t, starInput(tt.n, 1000, 1000))
			pos := clusteredPositions(tt.n)
			center := pos[0]
			opts := OverlapOptionsFor(g.len())

			report := resolveOverlaps(g, pos, opts)

			if report.Before == 0 {
				t.Fatal("fixture has no overlaps")
			}
			if report.After != 0 && report.After >= report.Before {
				t.Errorf("overlaps went from %d to %d", report.Before, report.After)
			}
			if report.After != 0 && report.Iterations != opts.MaxIterations {
				t.Errorf("overlaps remain (%d) but only %d of %d iterations used",
					report.After, report.Iterations, opts.MaxIterations)
			}
			if report.UsedGrid != tt.wantGrid {
				t.Errorf("UsedGrid = %v, want %v", report.UsedGrid, tt.wantGrid)
			}
			if pos[0] != center {
				t.Errorf("center moved from %+v to %+v", center, pos[0])
			}
			if got := countOverlaps(g, pos, opts.MinDistance); got != report.After {
				t.Errorf("countOverlaps() = %d, report says %d", got, report.After)
			}
		})
	}
}

func TestResolveOverlaps_NoMovementStopsEarly(t *testing.T) {
	g := mustCompile(t, starInput(3, 1000, 1000))
	pos := []r2.Vec{{X: 500, Y: 500}, {X: 100, Y: 100}, {X: 900, Y: 100}, {X: 100, Y: 900}}

	report := resolveOverlaps(g, pos, OverlapOptionsFor(4))
	if report.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1 for an overlap-free layout", report.Iterations)
	}
	if report.Before != 0 || report.After != 0 {
		t.Errorf("report = %+v, want no overlaps", report)
	}
}

func TestSeparate_CenterAbsorbsNothing(t *testing.T) {
	g := mustCompile(t, starInput(1, 400, 400))
	pos := []r2.Vec{{X: 200, Y: 200}, {X: 205, Y: 200}}

	if !separate(g, pos, 0, 1, 5) {
		t.Fatal("separate() reported no overlap")
	}
	if pos[0] != (r2.Vec{X: 200, Y: 200}) {
		t.Errorf("center moved to %+v", pos[0])
	}
	need := (g.sizes[0]+g.sizes[1])/2 + 5
	if d := r2.Norm(r2.Sub(pos[1], pos[0])); math.Abs(d-need) > 1e-9 {
		t.Errorf("distance after push = %v, want %v", d, need)
	}
}

func TestSeparate_Symmetric(t *testing.T) {
	in := Input{Width: 400, Height: 400, Nodes: []NodeSpec{{ID: "a"}, {ID: "b"}}}
	g := mustCompile(t, in)
	pos := []r2.Vec{{X: 100, Y: 100}, {X: 110, Y: 100}}

	separate(g, pos, 0, 1, 5)

	// need = 15 + 5 = 20, overlap 10, each moves 5.
	if pos[0] != (r2.Vec{X: 95, Y: 100}) || pos[1] != (r2.Vec{X: 115, Y: 100}) {
		t.Errorf("positions after push = %+v", pos)
	}
}

func TestSeparate_Coincident(t *testing.T) {
	in := Input{Width: 400, Height: 400, Nodes: []NodeSpec{{ID: "a"}, {ID: "b"}}}
	g := mustCompile(t, in)
	pos := []r2.Vec{{X: 100, Y: 100}, {X: 100, Y: 100}}

	separate(g, pos, 0, 1, 5)

	d := r2.Norm(r2.Sub(pos[1], pos[0]))
	if math.Abs(d-20) > 1e-9 {
		t.Errorf("coincident nodes separated to %v, want 20", d)
	}
}

func TestSpatialGrid_Near(t *testing.T) {
	pos := []r2.Vec{{X: 0, Y: 0}, {X: 9, Y: 9}, {X: 15, Y: 0}, {X: 35, Y: 35}, {X: -5, Y: -5}}
	sg := newSpatialGrid(10)
	sg.rebuild(pos)

	got := sg.near(r2.Vec{X: 1, Y: 1}, nil)
	sort.Ints(got)
	want := []int{0, 1, 2, 4}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("near() = %v, want %v", got, want)
	}

	// A rebuild after movement re-buckets.
	pos[3] = r2.Vec{X: 2, Y: 2}
	sg.rebuild(pos)
	got = sg.near(r2.Vec{X: 1, Y: 1}, nil)
	if len(got) != 5 {
		t.Errorf("near() after rebuild = %v, want all 5 nodes", got)
	}
}
