package solver

import (
	"context"
	"time"

	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"

	"github.com/pkg/errors"
)

// ErrUnknownAlgorithm is returned when a requested algorithm is not registered
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Registry holds solvers by name in registration order
type Registry struct {
	solvers map[string]Solver
	order   []string
}

// NewRegistry creates a registry; later solvers replace earlier ones with the same name
func NewRegistry(solvers ...Solver) *Registry {
	r := &Registry{solvers: make(map[string]Solver, len(solvers))}
	for _, s := range solvers {
		if _, exists := r.solvers[s.Name()]; !exists {
			r.order = append(r.order, s.Name())
		}
		r.solvers[s.Name()] = s
	}

	return r
}

// Get returns the solver registered under name
func (r *Registry) Get(name string) (Solver, error) {
	s, ok := r.solvers[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "algorithm %q", name)
	}

	return s, nil
}

// Names returns the registered algorithm names in registration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// Deadline combines a context with an optional wall-clock budget. It is
// checked once per outer iteration by the iterative solvers.
type Deadline struct {
	ctx   context.Context
	until time.Time
}

// NewDeadline starts a budget of d from now; d <= 0 means no budget.
func NewDeadline(ctx context.Context, d time.Duration) Deadline {
	dl := Deadline{ctx: ctx}
	if d > 0 {
		dl.until = time.Now().Add(d)
	}

	return dl
}

// BudgetExhausted reports whether the wall-clock budget ran out
func (d Deadline) BudgetExhausted() bool {
	return !d.until.IsZero() && time.Now().After(d.until)
}

// Canceled reports whether the context was canceled or its deadline passed
func (d Deadline) Canceled() bool {
	return d.ctx.Err() != nil
}

// TimeoutResult reports a canceled run: the best-so-far result with a Timeout
// error, or Infeasible when nothing was found yet.
func TimeoutResult(ctx context.Context, best *entity.Result) (*entity.Result, error) {
	if best == nil {
		return nil, domainerrors.ErrInfeasible.WithDetailsf("no solution found before cancellation: %v", ctx.Err())
	}

	return best, domainerrors.ErrTimeout.WithDetails(ctx.Err().Error())
}
