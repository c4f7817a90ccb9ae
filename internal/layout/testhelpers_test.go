package layout

import (
	"fmt"
	"math/rand/v2"
)

// starInput builds a center node with n coauthors, each linked to the center.
func starInput(n int, width, height float64) Input {
	in := Input{Width: width, Height: height, CenterID: "center"}
	in.Nodes = append(in.Nodes, NodeSpec{ID: "center", IsCenter: true, PaperCount: 40})
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("a%d", i)
		in.Nodes = append(in.Nodes, NodeSpec{ID: id, PaperCount: i%7 + 1})
		in.Edges = append(in.Edges, EdgeSpec{Source: "center", Target: id, Weight: float64(i%3 + 1)})
	}
	return in
}

// randomInput builds a star plus extra coauthor-coauthor edges chosen by seed.
func randomInput(n, extra int, seed uint64) Input {
	in := starInput(n, 800, 600)
	if n < 2 {
		return in
	}
	r := rand.New(rand.NewPCG(seed, 7))
	for k := 0; k < extra; k++ {
		a, b := r.IntN(n), r.IntN(n)
		if a == b {
			continue
		}
		in.Edges = append(in.Edges, EdgeSpec{
			Source: fmt.Sprintf("a%d", a),
			Target: fmt.Sprintf("a%d", b),
			Weight: float64(r.IntN(4) + 1),
		})
	}
	return in
}

// quickSchedule keeps property tests fast.
var quickSchedule = Schedule{BatchSize: 20, MaxIterations: 60, Threshold: 0}
