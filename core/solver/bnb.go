package solver

import (
	"container/heap"
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/gridopt/tnep/core/logger"
)

func init() {
	Register("bnb", func(conf map[string]any) (Solver, error) {
		def, err := decodeOptions(conf)
		if err != nil {
			return nil, err
		}
		return NewBranchAndBound(def), nil
	})
}

// BranchAndBound is a best-first branch-and-bound MIP backend. Every
// relaxation is delegated to the simplex backend; the integer layer only
// tightens variable bounds and manages the node queue.
type BranchAndBound struct {
	defaults Options
	log      logger.Logger
}

// NewBranchAndBound returns a MIP backend with the given default options.
func NewBranchAndBound(def Options) *BranchAndBound {
	return &BranchAndBound{defaults: def}
}

// SetLogger attaches a logger used for verbose search progress.
func (s *BranchAndBound) SetLogger(l logger.Logger) { s.log = l }

// Name implements Solver.
func (s *BranchAndBound) Name() string { return "bnb" }

type node struct {
	lower []float64
	upper []float64
	// bound is the relaxation objective of the parent node, a valid lower
	// bound on every solution in this subtree.
	bound float64
}

type nodeQueue []*node

func (q nodeQueue) Len() int           { return len(q) }
func (q nodeQueue) Less(i, j int) bool { return q[i].bound < q[j].bound }
func (q nodeQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)        { *q = append(*q, x.(*node)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// Solve implements Solver. Limits are honored by returning the incumbent with
// StatusTimeLimit or StatusNodeLimit, in which case Bound and Gap describe how
// far the proof had progressed.
func (s *BranchAndBound) Solve(ctx context.Context, p *Problem, opts Options) (*Result, error) {
	opts = opts.merged(s.defaults)
	res := newResult()
	start := time.Now()
	defer func() { res.SolveTime = time.Since(start) }()

	tol := opts.tolerance()
	intTol := 1e-6
	limit := opts.timeLimit()

	queue := &nodeQueue{&node{lower: p.Lower, upper: p.Upper, bound: math.Inf(-1)}}
	heap.Init(queue)

	var (
		incumbent []float64
		incObj    = math.Inf(1)
	)

	finish := func(status Status) (*Result, error) {
		res.Status = status
		if incumbent != nil {
			res.Objective = incObj
			res.X = incumbent
		}
		lb := incObj
		if queue.Len() > 0 {
			lb = (*queue)[0].bound
		}
		if incumbent == nil {
			lb = math.Inf(-1)
		}
		res.Bound = lb
		res.Gap = relGap(incObj, lb)
		return res, nil
	}

	for queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			if incumbent != nil {
				// The search was interrupted, so the incumbent is usable but
				// unproven.
				return finish(StatusFeasible)
			}
			return nil, err
		}
		if limit > 0 && time.Since(start) > limit {
			return finish(StatusTimeLimit)
		}
		if opts.MaxNodes > 0 && res.Nodes >= opts.MaxNodes {
			return finish(StatusNodeLimit)
		}

		nd := heap.Pop(queue).(*node)
		if nd.bound >= incObj-intTol {
			// Best-first order: every remaining node is bounded at least as
			// high, so the incumbent is optimal.
			heap.Push(queue, nd)
			return finish(StatusOptimal)
		}

		x, obj, err := solveRelaxation(p.withBounds(nd.lower, nd.upper), tol)
		res.Nodes++
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			continue
		case errors.Is(err, lp.ErrUnbounded):
			if res.Nodes == 1 {
				res.Status = StatusUnbounded
				return res, nil
			}
			continue
		case err != nil:
			return nil, err
		}

		if obj >= incObj-intTol {
			continue
		}

		branch, ok := mostFractional(x, p.Integer, intTol)
		if !ok {
			incumbent = roundIntegral(x, p.Integer)
			incObj = obj
			if opts.Verbose && s.log != nil {
				s.log.Debugw("new incumbent", map[string]any{
					"objective": obj,
					"nodes":     res.Nodes,
				})
			}
			lb := obj
			if queue.Len() > 0 && (*queue)[0].bound < lb {
				lb = (*queue)[0].bound
			}
			if relGap(incObj, lb) <= opts.gap() {
				return finish(StatusOptimal)
			}
			continue
		}

		down := cloneBounds(nd.upper)
		down[branch] = math.Floor(x[branch])
		heap.Push(queue, &node{lower: nd.lower, upper: down, bound: obj})

		up := cloneBounds(nd.lower)
		up[branch] = math.Ceil(x[branch])
		heap.Push(queue, &node{lower: up, upper: nd.upper, bound: obj})
	}

	if incumbent == nil {
		res.Status = StatusInfeasible
		return res, nil
	}
	return finish(StatusOptimal)
}

// mostFractional returns the integer variable farthest from integrality.
func mostFractional(x []float64, integer []int, tol float64) (int, bool) {
	best, bestDist := -1, tol
	for _, i := range integer {
		_, frac := math.Modf(x[i])
		dist := math.Min(frac, 1-frac)
		if dist > bestDist {
			best, bestDist = i, dist
		}
	}
	return best, best >= 0
}

func roundIntegral(x []float64, integer []int) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	for _, i := range integer {
		out[i] = math.Round(out[i])
	}
	return out
}

func cloneBounds(b []float64) []float64 {
	out := make([]float64, len(b))
	copy(out, b)
	return out
}

func relGap(obj, bound float64) float64 {
	if math.IsInf(obj, 1) || math.IsInf(bound, -1) {
		return math.Inf(1)
	}
	return math.Abs(obj-bound) / math.Max(1, math.Abs(obj))
}
