// Package evpath finds energy-feasible shortest paths over (node, state-of-charge) states.
package evpath

import (
	"container/heap"
	"context"
	"math"

	domainerrors "evroute/internal/domain/errors"
	"evroute/internal/infra/routing/costmodel"
)

// socBuckets is the rounding applied to state of charge when deduplicating
// states: one decimal place. Two states whose charge rounds to the same
// bucket are treated as identical, which bounds the search space at the cost
// of occasionally missing a cheaper path.
const socBuckets = 10.0

// cancelCheckInterval is the number of pops between context checks
const cancelCheckInterval = 1024

// Path is a feasible route between two nodes
type Path struct {
	Nodes     []int   // Node indexes from start to end
	Cost      float64 // Search objective: travel time when supplied, else distance
	Distance  float64 // Total distance
	Energy    float64 // Energy drawn along the path, recharges not subtracted
	Recharges []int   // Node indexes where the vehicle recharged to full
	FinalSoC  float64 // State of charge on arrival
}

// Pathfinder runs the energy-aware search on a cost model
type Pathfinder struct {
	model *costmodel.Model
}

// NewPathfinder creates a pathfinder for the given model
func NewPathfinder(model *costmodel.Model) *Pathfinder {
	return &Pathfinder{model: model}
}

// searchState represents a (node, soc) state in the priority queue
type searchState struct {
	node      int
	soc       float64
	cost      float64
	distance  float64
	energy    float64
	recharged bool // the vehicle recharged at parent.node before this leg
	parent    *searchState
	seq       int // insertion order, breaks cost ties
	index     int // Index in the heap
}

// priorityQueue implements heap.Interface ordered by cost, then insertion order
type priorityQueue []*searchState

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].cost == pq[j].cost {
		return pq[i].seq < pq[j].seq
	}

	return pq[i].cost < pq[j].cost
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	state := x.(*searchState)
	state.index = n
	*pq = append(*pq, state)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	state := old[n-1]
	old[n-1] = nil
	state.index = -1
	*pq = old[0 : n-1]

	return state
}

type stateKey struct {
	node   int
	bucket int64
}

func keyOf(s *searchState) stateKey {
	return stateKey{node: s.node, bucket: int64(math.Round(s.soc * socBuckets))}
}

// FindPath searches from start to end with a vehicle that leaves start fully
// charged with the given battery capacity. It returns an Infeasible error when
// no path satisfies the battery constraint.
func (pf *Pathfinder) FindPath(ctx context.Context, start, end int, battery float64) (*Path, error) {
	n := pf.model.Size()
	if start < 0 || start >= n || end < 0 || end >= n {
		return nil, domainerrors.ErrMalformedInstance.WithDetailsf("path endpoints %d -> %d out of range", start, end)
	}

	finalized := make(map[stateKey]float64)
	seq := 0

	pq := make(priorityQueue, 0)
	heap.Init(&pq)
	heap.Push(&pq, &searchState{node: start, soc: battery, seq: seq})

	pops := 0
	for pq.Len() > 0 {
		pops++
		if pops%cancelCheckInterval == 0 && ctx.Err() != nil {
			return nil, domainerrors.ErrInfeasible.WithDetailsf("path search canceled: %v", ctx.Err())
		}

		current := heap.Pop(&pq).(*searchState)

		key := keyOf(current)
		if best, seen := finalized[key]; seen && best <= current.cost {
			continue
		}
		finalized[key] = current.cost

		if current.node == end {
			return reconstruct(current), nil
		}

		seq = pf.expand(current, battery, &pq, seq)
	}

	return nil, domainerrors.ErrInfeasible.WithDetailsf("no path from node %d to node %d within battery %.3f",
		pf.model.Node(start).ID, pf.model.Node(end).ID, battery)
}

// expand pushes travel and recharge-and-travel transitions out of current
func (pf *Pathfinder) expand(current *searchState, battery float64, pq *priorityQueue, seq int) int {
	u := current.node
	canRecharge := pf.model.Node(u).CanRecharge()

	for v := 0; v < pf.model.Size(); v++ {
		if v == u {
			continue
		}

		need := pf.model.Energy(u, v)
		weight := pf.model.TravelTime(u, v)
		dist := pf.model.Distance(u, v)

		if need <= current.soc {
			seq++
			heap.Push(pq, &searchState{
				node:     v,
				soc:      current.soc - need,
				cost:     current.cost + weight,
				distance: current.distance + dist,
				energy:   current.energy + need,
				parent:   current,
				seq:      seq,
			})
		}

		if canRecharge && need <= battery {
			seq++
			heap.Push(pq, &searchState{
				node:      v,
				soc:       battery - need,
				cost:      current.cost + weight,
				distance:  current.distance + dist,
				energy:    current.energy + need,
				recharged: true,
				parent:    current,
				seq:       seq,
			})
		}
	}

	return seq
}

func reconstruct(end *searchState) *Path {
	var nodes []int
	var recharges []int
	for s := end; s != nil; s = s.parent {
		nodes = append(nodes, s.node)
		if s.recharged && s.parent != nil {
			recharges = append(recharges, s.parent.node)
		}
	}

	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i, j := 0, len(recharges)-1; i < j; i, j = i+1, j-1 {
		recharges[i], recharges[j] = recharges[j], recharges[i]
	}

	return &Path{
		Nodes:     nodes,
		Cost:      end.cost,
		Distance:  end.distance,
		Energy:    end.energy,
		Recharges: recharges,
		FinalSoC:  end.soc,
	}
}
