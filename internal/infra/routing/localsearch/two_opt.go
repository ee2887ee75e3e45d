// Package localsearch holds route improvement moves shared by the constructive
// and metaheuristic solvers.
package localsearch

// Epsilon is the minimum improvement a move must achieve to be applied
const Epsilon = 1e-6

// DistanceMatrix is the read-only view of pairwise distances the moves need
type DistanceMatrix interface {
	Distance(i, j int) float64
}

// TwoOpt improves a closed route (first and last entries are the depot) by
// segment reversal until a full scan finds no improving move. The input slice
// is not modified. The result is a local optimum, so TwoOpt(TwoOpt(r)) == TwoOpt(r).
func TwoOpt(route []int, dist DistanceMatrix) []int {
	out := make([]int, len(route))
	copy(out, route)

	if len(out) < 5 {
		return out
	}

	for improveOnce(out, dist) {
	}

	return out
}

// improveOnce applies the first improving reversal it finds and reports whether it did.
func improveOnce(route []int, dist DistanceMatrix) bool {
	n := len(route)
	for i := 1; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			if j-i == 1 {
				continue
			}

			a, b := route[i-1], route[i]
			c, d := route[j], route[j+1]
			delta := dist.Distance(a, c) + dist.Distance(b, d) - dist.Distance(a, b) - dist.Distance(c, d)
			if delta < -Epsilon {
				reverse(route, i, j)

				return true
			}
		}
	}

	return false
}

// reverse reverses route[i..j] in place
func reverse(route []int, i, j int) {
	for i < j {
		route[i], route[j] = route[j], route[i]
		i++
		j--
	}
}

// Length returns the total distance of a route
func Length(route []int, dist DistanceMatrix) float64 {
	total := 0.0
	for k := 0; k+1 < len(route); k++ {
		total += dist.Distance(route[k], route[k+1])
	}

	return total
}
