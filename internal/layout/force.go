package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// maxStep caps a single node displacement, so that contact repulsion cannot
// fling a node across the layout. Settings.Cooling shrinks the cap over time.
const maxStep = 10

// contactRepulsion multiplies repulsion between touching nodes.
const contactRepulsion = 100

// Global speed limits.
const (
	minSpeedEfficiency = 0.05
	maxSpeed           = 1000
	maxSpeedRise       = 0.5
)

// particle is a simulated node. It satisfies barneshut.Particle2.
type particle struct {
	index  int
	pos    r2.Vec
	mass   float64
	radius float64
}

func (p *particle) Coord2() r2.Vec { return p.pos }
func (p *particle) Mass() float64  { return p.mass }

// simulation holds the mutable state of one force layout run.
type simulation struct {
	g        *graph
	settings Settings

	nodes     []*particle
	particles []barneshut.Particle2
	plane     *barneshut.Plane

	force    []r2.Vec
	oldForce []r2.Vec

	speed           float64
	speedEfficiency float64
	stepCap         float64

	iterations int
}

func newSimulation(g *graph, start []r2.Vec, s Settings) *simulation {
	n := g.len()
	sim := &simulation{
		g:               g,
		settings:        s,
		nodes:           make([]*particle, n),
		particles:       make([]barneshut.Particle2, n),
		force:           make([]r2.Vec, n),
		oldForce:        make([]r2.Vec, n),
		speed:           1,
		speedEfficiency: 1,
		stepCap:         maxStep,
	}
	for i := range sim.nodes {
		p := &particle{index: i, pos: start[i], mass: g.mass[i], radius: g.sizes[i] / 2}
		sim.nodes[i] = p
		sim.particles[i] = p
	}
	if sim.settings.SlowDown <= 0 {
		sim.settings.SlowDown = 1
	}
	if sim.settings.JitterTolerance <= 0 {
		sim.settings.JitterTolerance = 1
	}
	if !(sim.settings.Cooling > 0 && sim.settings.Cooling < 1) {
		sim.settings.Cooling = 1
	}
	return sim
}

// Step advances the simulation by the given number of iterations.
func (s *simulation) Step(iterations int) {
	for i := 0; i < iterations; i++ {
		s.step()
	}
}

// Iterations returns the number of iterations applied so far.
func (s *simulation) Iterations() int { return s.iterations }

// Positions returns a copy of the current simulation coordinates.
func (s *simulation) Positions() []r2.Vec {
	out := make([]r2.Vec, len(s.nodes))
	for i, p := range s.nodes {
		out[i] = p.pos
	}
	return out
}

func (s *simulation) step() {
	s.iterations++
	if len(s.nodes) < 2 {
		return
	}

	s.force, s.oldForce = s.oldForce, s.force
	for i := range s.force {
		s.force[i] = r2.Vec{}
	}

	s.applyRepulsion()
	s.applyGravity()
	s.applyAttraction()
	s.adjustSpeed()
	s.move()
	if s.iterations > s.settings.CoolingDelay {
		s.stepCap *= s.settings.Cooling
	}
}

// applyRepulsion uses the Barnes-Hut plane when enabled, falling back to
// exact pairwise repulsion if the plane cannot be built.
func (s *simulation) applyRepulsion() {
	if s.settings.BarnesHut && s.buildPlane() {
		for i, p := range s.particles {
			s.force[i] = r2.Add(s.force[i], s.plane.ForceOn(p, s.settings.Theta, s.repulse))
		}
		return
	}
	for i, p := range s.nodes {
		for j, q := range s.nodes {
			if i == j {
				continue
			}
			s.force[i] = r2.Add(s.force[i], s.repulse(p, q, p.mass, q.mass, r2.Sub(q.pos, p.pos)))
		}
	}
}

// buildPlane (re)builds the quadtree. The plane cannot hold two particles at
// the same point, so a failed build spreads coincident nodes and retries once.
func (s *simulation) buildPlane() bool {
	for attempt := 0; attempt < 2; attempt++ {
		if s.plane == nil {
			plane, err := barneshut.NewPlane(s.particles)
			if err == nil {
				s.plane = plane
				return true
			}
		} else if err := s.plane.Reset(); err == nil {
			return true
		}
		s.plane = nil
		if s.spreadCoincident() == 0 {
			return false
		}
	}
	return false
}

// coincidentCell is the grid size under which two nodes count as coincident.
const coincidentCell = 1e-6

// spreadCoincident moves every node that shares a position with an earlier
// node by a unit step in a direction derived from its index. It returns the
// number of nodes moved.
func (s *simulation) spreadCoincident() int {
	type cell struct{ x, y float64 }
	seen := make(map[cell]int, len(s.nodes))
	moved := 0
	for i, p := range s.nodes {
		c := cell{math.Floor(p.pos.X / coincidentCell), math.Floor(p.pos.Y / coincidentCell)}
		j, dup := seen[c]
		if !dup {
			seen[c] = i
			continue
		}
		// Never move the pinned node; move its twin instead.
		if s.g.isFixed(i) {
			seen[c] = i
			i, j = j, i
			p = s.nodes[i]
		}
		p.pos = r2.Add(p.pos, pairDirection(j, i))
		moved++
	}
	return moved
}

// pairDirection returns a unit vector for the pair (i, j) that depends only on
// the two indices. pairDirection(j, i) is its negation.
func pairDirection(i, j int) r2.Vec {
	lo, hi := min(i, j), max(i, j)
	angle := 2 * math.Pi * seeded(float64(lo)*12.9898+float64(hi)*78.233)
	v := r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
	if i > j {
		return r2.Scale(-1, v)
	}
	return v
}

// repulse is a barneshut.Force2. v points from p1 to p2 (or to the center of
// mass of an aggregated cell, in which case p2 is nil). The result is the
// force on p1.
func (s *simulation) repulse(p1, p2 barneshut.Particle2, m1, m2 float64, v r2.Vec) r2.Vec {
	k := s.settings.ScalingRatio * m1 * m2
	d2 := r2.Norm2(v)
	if d2 == 0 {
		a, okA := p1.(*particle)
		b, okB := p2.(*particle)
		if !okA || !okB || a == b {
			return r2.Vec{}
		}
		// Coincident nodes push apart along a fixed per-pair direction.
		if s.settings.AdjustSizes {
			k *= contactRepulsion
		}
		return r2.Scale(-k, pairDirection(a.index, b.index))
	}

	if s.settings.AdjustSizes && p2 != nil {
		a, okA := p1.(*particle)
		b, okB := p2.(*particle)
		if okA && okB {
			gap := math.Sqrt(d2) - a.radius - b.radius
			if gap <= 0 {
				return r2.Scale(-contactRepulsion*k/math.Sqrt(d2), v)
			}
			return r2.Scale(-k/(gap*gap), v)
		}
	}
	return r2.Scale(-k/d2, v)
}

func (s *simulation) applyGravity() {
	g := s.settings.Gravity
	if g == 0 {
		return
	}
	for i, p := range s.nodes {
		d := r2.Norm(p.pos)
		if d == 0 {
			continue
		}
		factor := p.mass * g / d
		if s.settings.StrongGravity {
			factor = p.mass * g
		}
		s.force[i] = r2.Sub(s.force[i], r2.Scale(factor, p.pos))
	}
}

func (s *simulation) applyAttraction() {
	for _, l := range s.g.links {
		a, b := s.nodes[l.a], s.nodes[l.b]
		v := r2.Sub(a.pos, b.pos)
		d := r2.Norm(v)
		if s.settings.AdjustSizes {
			d -= a.radius + b.radius
			if d <= 0 {
				continue
			}
		}

		w := l.strength
		if s.settings.EdgeWeightInfluence != 1 {
			w = math.Pow(w, s.settings.EdgeWeightInfluence)
		}

		factor := -w
		if s.settings.LinLog && d > 0 {
			factor = -w * math.Log1p(d) / d
		}
		f := r2.Scale(factor, v)
		s.force[l.a] = r2.Add(s.force[l.a], f)
		s.force[l.b] = r2.Sub(s.force[l.b], f)
	}
}

// adjustSpeed updates the global speed from the total swinging (forces that
// flip direction between iterations) and the total traction (forces that
// persist). The speed rises while the layout moves coherently and falls as
// soon as it starts to jitter.
func (s *simulation) adjustSpeed() {
	var swinging, traction float64
	for i, p := range s.nodes {
		if s.g.isFixed(i) {
			continue
		}
		swinging += p.mass * r2.Norm(r2.Sub(s.oldForce[i], s.force[i]))
		traction += p.mass * r2.Norm(r2.Add(s.oldForce[i], s.force[i])) / 2
	}
	if !(swinging > 0) || !(traction > 0) || math.IsInf(swinging, 0) || math.IsInf(traction, 0) {
		return
	}

	n := float64(len(s.nodes))
	estimated := 0.05 * math.Sqrt(n)
	jitter := s.settings.JitterTolerance * math.Max(math.Sqrt(estimated), math.Min(10, estimated*traction/(n*n)))
	if swinging/traction > 2 {
		if s.speedEfficiency > minSpeedEfficiency {
			s.speedEfficiency *= 0.5
		}
		jitter = math.Max(jitter, s.settings.JitterTolerance)
	}

	target := jitter * s.speedEfficiency * traction / swinging
	if swinging > jitter*traction {
		if s.speedEfficiency > minSpeedEfficiency {
			s.speedEfficiency *= 0.7
		}
	} else if s.speed < maxSpeed {
		s.speedEfficiency *= 1.3
	}
	s.speed += math.Min(target-s.speed, maxSpeedRise*s.speed)
}

// move displaces every free node along its force. Nodes whose own force
// swings get a smaller share of the global speed. The displacement is divided
// by SlowDown and capped by the cooling step cap.
func (s *simulation) move() {
	for i, p := range s.nodes {
		if s.g.isFixed(i) {
			continue
		}
		f := s.force[i]
		if math.IsNaN(f.X) || math.IsNaN(f.Y) {
			continue
		}
		swinging := p.mass * r2.Norm(r2.Sub(s.oldForce[i], f))
		factor := s.speed / (1 + math.Sqrt(s.speed*swinging))
		if s.settings.AdjustSizes {
			factor *= 0.1
		}

		step := r2.Scale(factor/s.settings.SlowDown, f)
		if n := r2.Norm(step); n > s.stepCap {
			step = r2.Scale(s.stepCap/n, step)
		}
		if math.IsNaN(step.X) || math.IsNaN(step.Y) {
			continue
		}
		p.pos = r2.Add(p.pos, step)
	}
}
