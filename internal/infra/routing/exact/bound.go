package exact

import (
	"math"

	"evroute/internal/infra/routing/costmodel"
)

// BoundMode selects the spanning-tree lower bound
type BoundMode string

const (
	// BoundAnchored spans the unvisited nodes together with the current node and
	// the depot. Any completion is a spanning path of that set, so the bound
	// never exceeds the true completion cost.
	BoundAnchored BoundMode = "anchored"

	// BoundUnvisited spans the unvisited nodes alone and adds the direct edge
	// from the current node back to the depot. It prunes harder but can exceed
	// the true completion cost, e.g. when the remaining nodes lie between the
	// current node and the depot.
	BoundUnvisited BoundMode = "unvisited"
)

// prim returns the weight of a minimum spanning tree over nodes, grown greedily
// from nodes[0] by attaching the cheapest edge to an unattached node.
// scratch must have room for len(nodes) entries.
func prim(model *costmodel.Model, nodes []int, scratch []float64) float64 {
	k := len(nodes)
	if k <= 1 {
		return 0
	}

	// scratch[i] holds the cheapest edge from the tree to nodes[i]; -1 marks attached
	best := scratch[:k]
	root := nodes[0]
	best[0] = -1
	for i := 1; i < k; i++ {
		best[i] = model.Distance(root, nodes[i])
	}

	total := 0.0
	for attached := 1; attached < k; attached++ {
		pick, pickCost := -1, math.Inf(1)
		for i := 1; i < k; i++ {
			if best[i] >= 0 && best[i] < pickCost {
				pick, pickCost = i, best[i]
			}
		}

		total += pickCost
		best[pick] = -1

		for i := 1; i < k; i++ {
			if best[i] < 0 {
				continue
			}
			if d := model.Distance(nodes[pick], nodes[i]); d < best[i] {
				best[i] = d
			}
		}
	}

	return total
}
