package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Padding is the margin kept between the layout and the viewport edge.
const Padding = 80

// normalize maps simulation coordinates into the viewport. A single uniform
// scale preserves the aspect ratio; the scaled bounding box is centered. The
// center node is set to the exact viewport center.
func normalize(g *graph, pos []r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(pos))
	mid := r2.Vec{X: g.width / 2, Y: g.height / 2}
	if len(pos) == 0 {
		return out
	}

	box := bounds(pos)
	w := box.Max.X - box.Min.X
	h := box.Max.Y - box.Min.Y

	availW := math.Max(g.width-2*Padding, 0)
	availH := math.Max(g.height-2*Padding, 0)
	scale := math.Min(availW/denominator(w), availH/denominator(h))

	offset := r2.Vec{
		X: (g.width - w*scale) / 2,
		Y: (g.height - h*scale) / 2,
	}
	for i, p := range pos {
		if g.isFixed(i) {
			out[i] = mid
			continue
		}
		out[i] = r2.Add(r2.Scale(scale, r2.Sub(p, box.Min)), offset)
	}
	return out
}

// denominator guards a zero extent.
func denominator(extent float64) float64 {
	if extent > 0 {
		return extent
	}
	return 1
}

func bounds(pos []r2.Vec) r2.Box {
	box := r2.Box{Min: pos[0], Max: pos[0]}
	for _, p := range pos[1:] {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
	}
	return box
}
