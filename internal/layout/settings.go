package layout

// Settings tunes the force simulation. The values are tunable, not contractual;
// ForSize picks a tier by node count.
type Settings struct {
	// Theta is the Barnes-Hut accuracy parameter. Larger is coarser.
	Theta float64

	// BarnesHut enables the quadtree approximation for repulsion.
	BarnesHut bool

	// SlowDown damps every displacement.
	SlowDown float64

	// ScalingRatio scales repulsion.
	ScalingRatio float64

	// Gravity pulls nodes toward the origin.
	Gravity float64

	// StrongGravity makes gravity grow linearly with distance.
	StrongGravity bool

	// LinLog uses log(1+d) instead of d for attraction.
	LinLog bool

	// AdjustSizes accounts for node sizes in repulsion and attraction.
	AdjustSizes bool

	// EdgeWeightInfluence is the exponent applied to edge strength.
	EdgeWeightInfluence float64

	// JitterTolerance is how much swinging the global speed tolerates
	// before it slows down. Zero means 1.
	JitterTolerance float64

	// Cooling multiplies the per-node step cap after every iteration past
	// CoolingDelay. Values outside (0, 1) disable cooling.
	Cooling      float64
	CoolingDelay int
}

// Schedule drives the convergence controller.
type Schedule struct {
	BatchSize     int
	MaxIterations int

	// Threshold is the total displacement per batch below which the
	// simulation is considered settled.
	Threshold float64
}

// Node-count tier boundaries.
const (
	smallGraph  = 200
	mediumGraph = 500
	largeGraph  = 1000

	// barnesHutMinNodes is the size below which exact repulsion is used.
	barnesHutMinNodes = 50
)

// ForSize returns the simulation settings for a graph of n nodes.
func ForSize(n int) Settings {
	s := Settings{
		Theta:               0.5,
		BarnesHut:           n >= barnesHutMinNodes,
		SlowDown:            1,
		ScalingRatio:        10,
		Gravity:             1,
		StrongGravity:       true,
		LinLog:              true,
		AdjustSizes:         true,
		EdgeWeightInfluence: 1,
		JitterTolerance:     1,
		Cooling:             0.99,
		CoolingDelay:        500,
	}
	switch {
	case n > largeGraph:
		s.Theta = 1.0
		s.SlowDown = 5
		s.ScalingRatio = 40
		s.Gravity = 0.5
		s.Cooling = 0.985
		s.CoolingDelay = 800
	case n > mediumGraph:
		s.Theta = 0.8
		s.SlowDown = 3
		s.ScalingRatio = 20
		s.CoolingDelay = 600
	case n > smallGraph:
		s.Theta = 0.6
		s.SlowDown = 2
	}
	return s
}

// ScheduleFor returns the convergence schedule for a graph of n nodes.
func ScheduleFor(n int) Schedule {
	switch {
	case n > largeGraph:
		return Schedule{BatchSize: 150, MaxIterations: 1500, Threshold: float64(n) * 2}
	case n > mediumGraph:
		return Schedule{BatchSize: 150, MaxIterations: 2000, Threshold: float64(n) * 2}
	default:
		return Schedule{BatchSize: 100, MaxIterations: 3000, Threshold: float64(n) * 0.5}
	}
}
