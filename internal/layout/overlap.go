package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// OverlapOptions bounds the overlap resolver.
type OverlapOptions struct {
	// MinDistance is the gap required between two node outlines.
	MinDistance float64

	// MaxIterations is the pass budget. The resolver is best effort.
	MaxIterations int

	// GridThreshold is the node count above which candidates come from the
	// spatial grid instead of all pairs.
	GridThreshold int

	// RebuildEvery is how many passes reuse one grid before re-indexing.
	RebuildEvery int
}

// OverlapOptionsFor returns the resolver options for a graph of n nodes.
func OverlapOptionsFor(n int) OverlapOptions {
	opts := OverlapOptions{
		MinDistance:   5,
		MaxIterations: 100,
		GridThreshold: smallGraph,
		RebuildEvery:  5,
	}
	switch {
	case n > largeGraph:
		opts.MaxIterations = 30
	case n > mediumGraph:
		opts.MaxIterations = 50
	}
	return opts
}

// OverlapReport describes a resolver run. Before and After count overlapping
// pairs that do not involve the center node.
type OverlapReport struct {
	Iterations int  `json:"iterations"`
	Before     int  `json:"before"`
	After      int  `json:"after"`
	UsedGrid   bool `json:"usedGrid"`
}

// resolveOverlaps pushes overlapping nodes apart in place. The center node
// never moves; its partner absorbs the whole correction.
func resolveOverlaps(g *graph, pos []r2.Vec, opts OverlapOptions) OverlapReport {
	report := OverlapReport{Before: countOverlaps(g, pos, opts.MinDistance)}
	n := len(pos)
	if n < 2 || opts.MaxIterations <= 0 {
		report.After = report.Before
		return report
	}

	var grid *spatialGrid
	if n > opts.GridThreshold {
		maxSize := 0.0
		for _, s := range g.sizes {
			maxSize = math.Max(maxSize, s)
		}
		grid = newSpatialGrid(maxSize + opts.MinDistance)
		report.UsedGrid = true
	}
	rebuild := max(opts.RebuildEvery, 1)

	var buf []int
	stale := false
	for it := 0; it < opts.MaxIterations; it++ {
		moved := false
		if grid != nil {
			fresh := it%rebuild == 0 || stale
			if fresh {
				grid.rebuild(pos)
				stale = false
			}
			for i := range pos {
				buf = grid.near(pos[i], buf[:0])
				for _, j := range buf {
					if j > i && separate(g, pos, i, j, opts.MinDistance) {
						moved = true
					}
				}
			}
			// A quiet pass over a stale grid proves nothing; re-index first.
			if !moved && !fresh {
				stale = true
				report.Iterations++
				continue
			}
		} else {
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j++ {
					if separate(g, pos, i, j, opts.MinDistance) {
						moved = true
					}
				}
			}
		}
		report.Iterations++
		if !moved {
			break
		}
	}

	report.After = countOverlaps(g, pos, opts.MinDistance)
	return report
}

// overlapEpsilon absorbs floating point noise after a push.
const overlapEpsilon = 1e-9

// separate moves i and j apart if they overlap and reports whether it did.
func separate(g *graph, pos []r2.Vec, i, j int, minDist float64) bool {
	need := (g.sizes[i]+g.sizes[j])/2 + minDist
	d := r2.Sub(pos[j], pos[i])
	dist := r2.Norm(d)
	if dist >= need-overlapEpsilon {
		return false
	}

	var dir r2.Vec
	if dist == 0 {
		angle := seeded(float64(i)*13.37+float64(j)) * 2 * math.Pi
		dir = r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
	} else {
		dir = r2.Scale(1/dist, d)
	}
	overlap := need - dist

	switch {
	case g.isFixed(i):
		pos[j] = r2.Add(pos[j], r2.Scale(overlap, dir))
	case g.isFixed(j):
		pos[i] = r2.Sub(pos[i], r2.Scale(overlap, dir))
	default:
		half := r2.Scale(overlap/2, dir)
		pos[i] = r2.Sub(pos[i], half)
		pos[j] = r2.Add(pos[j], half)
	}
	return true
}

// countOverlaps counts non-center pairs closer than their required distance.
func countOverlaps(g *graph, pos []r2.Vec, minDist float64) int {
	count := 0
	for i := range pos {
		if g.isFixed(i) {
			continue
		}
		for j := i + 1; j < len(pos); j++ {
			if g.isFixed(j) {
				continue
			}
			need := (g.sizes[i]+g.sizes[j])/2 + minDist
			if r2.Norm(r2.Sub(pos[j], pos[i])) < need-overlapEpsilon {
				count++
			}
		}
	}
	return count
}
