package layout

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// stepper is the part of the simulation the convergence controller drives.
type stepper interface {
	Step(iterations int)
	Positions() []r2.Vec
}

// Convergence reports how a simulation run ended.
type Convergence struct {
	Iterations   int     `json:"iterations"`
	Batches      int     `json:"batches"`
	Converged    bool    `json:"converged"`
	Displacement float64 `json:"displacement"` // total movement in the last batch
}

// converge runs sim in batches until the movement over one batch falls below
// the schedule threshold or the iteration ceiling is reached. It never runs
// past the ceiling; an unconverged result is still a result.
func converge(sim stepper, sched Schedule) Convergence {
	var c Convergence
	if sched.BatchSize <= 0 || sched.MaxIterations <= 0 {
		return c
	}

	prev := sim.Positions()
	for c.Iterations < sched.MaxIterations {
		batch := min(sched.BatchSize, sched.MaxIterations-c.Iterations)
		sim.Step(batch)
		c.Iterations += batch
		c.Batches++

		cur := sim.Positions()
		c.Displacement = displacement(prev, cur)
		prev = cur

		if c.Displacement < sched.Threshold {
			c.Converged = true
			break
		}
	}
	return c
}

// displacement sums the Euclidean distance each node moved between a and b.
func displacement(a, b []r2.Vec) float64 {
	var total float64
	for i := range a {
		total += r2.Norm(r2.Sub(b[i], a[i]))
	}
	return total
}
