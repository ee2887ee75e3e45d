package tabu

import (
	"math"
	"math/rand/v2"

	"evroute/internal/infra/routing/costmodel"
	"evroute/internal/infra/routing/localsearch"
)

// tabuKey forbids moving client back into route
type tabuKey struct {
	client int
	route  int
}

// move relocates routes[from][idx] to position pos of routes[to]
type move struct {
	client    int
	from, idx int
	to, pos   int
	cost      float64
}

type stepOutcome int

const (
	stepMoved stepOutcome = iota
	stepAllTabu
	stepNoMoves
)

// search is the state of one tabu run over a fixed number of routes
type search struct {
	model      *costmodel.Model
	tenure     int
	aspiration bool

	routes [][]int
	cost   float64
	it     int

	// tabu[k] is the first iteration at which k is allowed again
	tabu map[tabuKey]int

	best     [][]int
	bestCost float64
}

// newSearch partitions the shuffled customers round-robin over k routes
func newSearch(model *costmodel.Model, depot int, customers []int, k, tenure int, aspiration bool, rng *rand.Rand) *search {
	shuffled := make([]int, len(customers))
	copy(shuffled, customers)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	routes := make([][]int, k)
	for r := range routes {
		routes[r] = []int{depot}
		for i := r; i < len(shuffled); i += k {
			routes[r] = append(routes[r], shuffled[i])
		}
		routes[r] = append(routes[r], depot)
	}

	s := &search{
		model:      model,
		tenure:     tenure,
		aspiration: aspiration,
		routes:     routes,
		tabu:       make(map[tabuKey]int),
	}
	s.cost = s.total()
	s.best, s.bestCost = cloneRoutes(routes), s.cost

	return s
}

func (s *search) isTabu(client, route int) bool {
	return s.tabu[tabuKey{client, route}] > s.it
}

// step runs one iteration: evaluate every relocation, apply the cheapest
// allowed one even if it makes the solution worse, and forbid the reverse
// move for tenure iterations.
func (s *search) step() stepOutcome {
	s.it++

	chosen, found, evaluated := move{cost: math.Inf(1)}, false, false
	for from, r := range s.routes {
		for idx := 1; idx < len(r)-1; idx++ {
			client := r[idx]
			removal := s.model.Distance(r[idx-1], r[idx+1]) -
				s.model.Distance(r[idx-1], client) - s.model.Distance(client, r[idx+1])

			for to, rr := range s.routes {
				if to == from {
					continue
				}
				for pos := 1; pos < len(rr); pos++ {
					evaluated = true
					insertion := s.model.Distance(rr[pos-1], client) + s.model.Distance(client, rr[pos]) -
						s.model.Distance(rr[pos-1], rr[pos])
					cost := s.cost + removal + insertion
					if cost >= chosen.cost {
						continue
					}
					if s.isTabu(client, to) && !(s.aspiration && cost < s.bestCost-localsearch.Epsilon) {
						continue
					}
					chosen, found = move{client: client, from: from, idx: idx, to: to, pos: pos, cost: cost}, true
				}
			}
		}
	}

	if !evaluated {
		return stepNoMoves
	}
	if !found {
		return stepAllTabu
	}

	s.apply(chosen)

	return stepMoved
}

func (s *search) apply(m move) {
	from := s.routes[m.from]
	client := from[m.idx]
	s.routes[m.from] = append(from[:m.idx:m.idx], from[m.idx+1:]...)

	to := s.routes[m.to]
	inserted := make([]int, 0, len(to)+1)
	inserted = append(inserted, to[:m.pos]...)
	inserted = append(inserted, client)
	inserted = append(inserted, to[m.pos:]...)
	s.routes[m.to] = inserted

	s.tabu[tabuKey{client, m.from}] = s.it + s.tenure

	// recomputed rather than taken from m.cost so rounding does not accumulate
	s.cost = s.total()
	if s.cost < s.bestCost {
		s.best, s.bestCost = cloneRoutes(s.routes), s.cost
	}
}

func (s *search) total() float64 {
	total := 0.0
	for _, r := range s.routes {
		total += s.model.RouteDistance(r)
	}

	return total
}

func cloneRoutes(routes [][]int) [][]int {
	out := make([][]int, len(routes))
	for i, r := range routes {
		out[i] = append([]int(nil), r...)
	}

	return out
}
