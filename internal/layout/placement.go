package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// seeded returns the fractional part of sin(x)*10000, a cheap deterministic
// value in [0, 1).
func seeded(x float64) float64 {
	v := math.Sin(x) * 10000
	return v - math.Floor(v)
}

// place returns the starting simulation coordinates. The center sits at the
// origin; node i lands in a disc of radius 0.4*min(width, height) at an angle
// and distance derived from i alone, so identical inputs start identically.
func place(g *graph) []r2.Vec {
	pos := make([]r2.Vec, g.len())
	radius := 0.4 * math.Min(g.width, g.height)
	for i := range pos {
		if g.isFixed(i) {
			continue
		}
		fi := float64(i)
		angle := 2 * math.Pi * seeded(fi*13.37)
		dist := radius * (0.1 + 0.9*seeded(fi*42.42+100))
		pos[i] = r2.Vec{X: dist * math.Cos(angle), Y: dist * math.Sin(angle)}
	}
	return pos
}

// InitialPlacement returns the simulation-space starting coordinates for in.
func InitialPlacement(in Input) (Positions, error) {
	g, err := compile(in)
	if err != nil {
		return nil, err
	}
	out := make(Positions, g.len())
	for i, p := range place(g) {
		out[g.ids[i]] = Point{X: p.X, Y: p.Y}
	}
	return out, nil
}
