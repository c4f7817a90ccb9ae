package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

type cellKey struct{ x, y int }

// spatialGrid buckets node indices by square cell. A query returns the nodes
// in the 3x3 block of cells around a point, which covers every node closer
// than one cell size.
type spatialGrid struct {
	size  float64
	cells map[cellKey][]int
}

func newSpatialGrid(size float64) *spatialGrid {
	if !(size > 0) {
		size = 1
	}
	return &spatialGrid{size: size, cells: make(map[cellKey][]int)}
}

func (sg *spatialGrid) key(p r2.Vec) cellKey {
	return cellKey{x: int(math.Floor(p.X / sg.size)), y: int(math.Floor(p.Y / sg.size))}
}

// rebuild re-indexes every position.
func (sg *spatialGrid) rebuild(pos []r2.Vec) {
	for k, ids := range sg.cells {
		sg.cells[k] = ids[:0]
	}
	for i, p := range pos {
		k := sg.key(p)
		sg.cells[k] = append(sg.cells[k], i)
	}
}

// near appends to buf the indices bucketed around p.
func (sg *spatialGrid) near(p r2.Vec, buf []int) []int {
	c := sg.key(p)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			buf = append(buf, sg.cells[cellKey{x: c.x + dx, y: c.y + dy}]...)
		}
	}
	return buf
}
