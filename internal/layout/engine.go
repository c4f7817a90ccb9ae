package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Result is the output of one layout run.
type Result struct {
	Positions    Positions     `json:"positions"`
	Convergence  Convergence   `json:"convergence"`
	Overlap      OverlapReport `json:"overlap"`
	SkippedEdges int           `json:"skippedEdges,omitempty"`
}

// Option overrides a tuning value that is otherwise derived from graph size.
type Option func(*tuning)

type tuning struct {
	settings *Settings
	schedule *Schedule
	overlap  *OverlapOptions
}

// WithSettings replaces the size-derived simulation settings.
func WithSettings(s Settings) Option {
	return func(t *tuning) { t.settings = &s }
}

// WithSchedule replaces the size-derived convergence schedule.
func WithSchedule(s Schedule) Option {
	return func(t *tuning) { t.schedule = &s }
}

// WithOverlapOptions replaces the size-derived overlap resolver options.
func WithOverlapOptions(o OverlapOptions) Option {
	return func(t *tuning) { t.overlap = &o }
}

// Run computes positions for in: deterministic placement, force simulation
// until convergence, normalization into the viewport, overlap removal.
func Run(in Input, opts ...Option) (*Result, error) {
	g, err := compile(in)
	if err != nil {
		return nil, err
	}

	n := g.len()
	t := tuning{}
	for _, opt := range opts {
		opt(&t)
	}
	if t.settings == nil {
		s := ForSize(n)
		t.settings = &s
	}
	if t.schedule == nil {
		s := ScheduleFor(n)
		t.schedule = &s
	}
	if t.overlap == nil {
		o := OverlapOptionsFor(n)
		t.overlap = &o
	}

	res := &Result{Positions: make(Positions, n), SkippedEdges: g.skipped}
	switch n {
	case 0:
		return res, nil
	case 1:
		res.Positions[g.ids[0]] = Point{X: g.width / 2, Y: g.height / 2}
		return res, nil
	}

	sim := newSimulation(g, place(g), *t.settings)
	res.Convergence = converge(sim, *t.schedule)

	pos := normalize(g, sim.Positions())
	res.Overlap = resolveOverlaps(g, pos, *t.overlap)

	mid := Point{X: g.width / 2, Y: g.height / 2}
	for i, p := range pos {
		res.Positions[g.ids[i]] = finite(p, mid)
	}
	if g.center >= 0 {
		res.Positions[g.ids[g.center]] = mid
	}
	return res, nil
}

// finite returns p, or fallback if either coordinate is NaN or infinite.
func finite(p r2.Vec, fallback Point) Point {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return fallback
	}
	return Point{X: p.X, Y: p.Y}
}
