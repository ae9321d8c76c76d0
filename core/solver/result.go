package solver

import (
	"time"

	"github.com/google/uuid"
)

// Status indicates the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	// StatusOptimal means the solution is optimal within the gap tolerance.
	StatusOptimal
	// StatusFeasible means a solution was found but optimality was not proven.
	StatusFeasible
	StatusInfeasible
	StatusUnbounded
	StatusTimeLimit
	StatusNodeLimit
)

var statusNames = map[Status]string{
	StatusUnknown:    "unknown",
	StatusOptimal:    "optimal",
	StatusFeasible:   "feasible",
	StatusInfeasible: "infeasible",
	StatusUnbounded:  "unbounded",
	StatusTimeLimit:  "time_limit",
	StatusNodeLimit:  "node_limit",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// Result holds the outcome of a solver call.
type Result struct {
	// RunID identifies the solve for logs and metrics sinks.
	RunID string

	Status    Status
	Objective float64
	// Bound is the best proven lower bound on the objective.
	Bound float64
	// Gap is the relative distance between Objective and Bound.
	Gap float64

	// X is the primal solution in the problem's variable order. Nil when no
	// solution was found.
	X []float64

	// Nodes counts the relaxations solved by branch-and-bound; 1 for a plain
	// LP solve.
	Nodes     int
	SolveTime time.Duration
}

func newResult() *Result {
	return &Result{RunID: uuid.NewString(), Status: StatusUnknown}
}

// IsOptimal reports whether the solution is proven optimal.
func (r *Result) IsOptimal() bool { return r.Status == StatusOptimal }

// IsInfeasible reports whether the model admits no solution.
func (r *Result) IsInfeasible() bool { return r.Status == StatusInfeasible }

// IsUnbounded reports whether the objective can decrease without limit.
func (r *Result) IsUnbounded() bool { return r.Status == StatusUnbounded }

// HitLimit reports whether the solve stopped on a time or node limit.
func (r *Result) HitLimit() bool {
	return r.Status == StatusTimeLimit || r.Status == StatusNodeLimit
}

// HasSolution reports whether X holds a usable (possibly suboptimal) point.
func (r *Result) HasSolution() bool { return r.X != nil }
