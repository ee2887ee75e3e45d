// Package savings implements the Clarke-Wright savings heuristic for one or
// several depots.
package savings

import (
	"log/slog"
	"sort"

	"evroute/internal/infra/routing/costmodel"
)

// saving is the distance saved by serving i and j on one route instead of two
type saving struct {
	value float64
	i, j  int
}

// cluster is one depot together with the customers and vehicle limits it serves
type cluster struct {
	depot     int
	customers []int
	capacity  float64
	battery   float64
}

// clarkeWright runs the parallel savings procedure on one cluster and returns
// closed routes as node indexes, in the order their first customer appears in
// c.customers. Customers that cannot be served even alone are dropped and
// returned separately.
func clarkeWright(model *costmodel.Model, c cluster, logger *slog.Logger) (routes [][]int, dropped []int) {
	served := make([]int, 0, len(c.customers))
	for _, i := range c.customers {
		single := []int{c.depot, i, c.depot}
		if model.Node(i).Demand > c.capacity || model.RouteEnergy(single) > c.battery {
			dropped = append(dropped, i)

			continue
		}
		served = append(served, i)
	}

	// owner[i] is the key of the route holding customer i; keys are the
	// route's first customer at creation time
	owner := make(map[int]int, len(served))
	byKey := make(map[int][]int, len(served))
	loads := make(map[int]float64, len(served))
	for _, i := range served {
		owner[i] = i
		byKey[i] = []int{c.depot, i, c.depot}
		loads[i] = model.Node(i).Demand
	}

	pairs := make([]saving, 0, len(served)*(len(served)-1)/2)
	for a := 0; a < len(served); a++ {
		for b := a + 1; b < len(served); b++ {
			i, j := served[a], served[b]
			pairs = append(pairs, saving{
				value: model.Distance(i, c.depot) + model.Distance(c.depot, j) - model.Distance(i, j),
				i:     i,
				j:     j,
			})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].value > pairs[b].value })

	merges := 0
	for _, s := range pairs {
		ki, kj := owner[s.i], owner[s.j]
		if ki == kj {
			continue
		}

		ri, rj := byKey[ki], byKey[kj]
		if ri[len(ri)-2] != s.i || rj[1] != s.j {
			continue
		}

		load := loads[ki] + loads[kj]
		if load > c.capacity {
			continue
		}

		merged := make([]int, 0, len(ri)+len(rj)-2)
		merged = append(merged, ri[:len(ri)-1]...)
		merged = append(merged, rj[1:]...)
		if model.RouteEnergy(merged) > c.battery {
			continue
		}

		byKey[ki] = merged
		loads[ki] = load
		for _, k := range rj[1 : len(rj)-1] {
			owner[k] = ki
		}
		delete(byKey, kj)
		delete(loads, kj)
		merges++
	}

	for _, i := range served {
		if r, ok := byKey[i]; ok {
			routes = append(routes, r)
		}
	}

	logger.Debug("Savings cluster done",
		slog.Int("depot", c.depot),
		slog.Int("pairs", len(pairs)),
		slog.Int("merges", merges),
		slog.Int("routes", len(routes)))

	return routes, dropped
}
