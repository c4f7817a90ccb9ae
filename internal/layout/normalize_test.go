package layout

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func mustCompile(t *testing.T, in Input) *graph {
	t.Helper()
	g, err := compile(in)
	if err != nil {
		t.Fatalf("compile() error = %v", err)
	}
	return g
}

func TestNormalize_FitsViewport(t *testing.T) {
	g := mustCompile(t, starInput(3, 400, 300))
	pos := []r2.Vec{{X: 0, Y: 0}, {X: -100, Y: -10}, {X: 100, Y: 10}, {X: 0, Y: 50}}

	out := normalize(g, pos)

	if out[0] != (r2.Vec{X: 200, Y: 150}) {
		t.Errorf("center at %+v, want (200,150)", out[0])
	}
	for i, p := range out[1:] {
		if p.X < Padding-1e-9 || p.X > 400-Padding+1e-9 || p.Y < Padding-1e-9 || p.Y > 300-Padding+1e-9 {
			t.Errorf("node %d at %+v lies outside the padded viewport", i+1, p)
		}
	}

	// Width 200 -> 240 available, height 60 -> 140 available: x limits scale.
	wantScale := 240.0 / 200.0
	gotScale := (out[2].X - out[1].X) / 200
	if math.Abs(gotScale-wantScale) > 1e-9 {
		t.Errorf("scale = %v, want %v", gotScale, wantScale)
	}
	if math.Abs((out[2].Y-out[1].Y)-20*wantScale) > 1e-9 {
		t.Error("aspect ratio not preserved")
	}
}

func TestNormalize_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		pos  []r2.Vec
	}{
		{
			name: "all coincident",
			in:   starInput(3, 400, 400),
			pos:  []r2.Vec{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}},
		},
		{
			name: "horizontal line",
			in:   starInput(2, 400, 400),
			pos:  []r2.Vec{{X: 0, Y: 0}, {X: -10, Y: 0}, {X: 10, Y: 0}},
		},
		{
			name: "viewport smaller than padding",
			in:   starInput(2, 100, 100),
			pos:  []r2.Vec{{X: 0, Y: 0}, {X: -10, Y: 3}, {X: 10, Y: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustCompile(t, tt.in)
			for i, p := range normalize(g, tt.pos) {
				if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
					t.Errorf("node %d normalized to %+v", i, p)
				}
			}
		})
	}
}

func TestNormalize_NoCenter(t *testing.T) {
	in := Input{
		Width:  300,
		Height: 300,
		Nodes:  []NodeSpec{{ID: "a"}, {ID: "b"}},
	}
	g := mustCompile(t, in)
	out := normalize(g, []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 10}})
	if out[0] != (r2.Vec{X: Padding, Y: Padding}) {
		t.Errorf("first node at %+v, want (%v,%v)", out[0], Padding, Padding)
	}
	if out[1] != (r2.Vec{X: 300 - Padding, Y: 300 - Padding}) {
		t.Errorf("second node at %+v", out[1])
	}
}
