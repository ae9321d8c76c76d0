package solver

import (
	"context"
	"errors"
	"time"

	"gonum.org/v1/gonum/optimize/convex/lp"
)

func init() {
	Register("simplex", func(conf map[string]any) (Solver, error) {
		def, err := decodeOptions(conf)
		if err != nil {
			return nil, err
		}
		return &Simplex{defaults: def}, nil
	})
}

// Simplex solves the continuous relaxation of a problem with gonum's dense
// simplex method. Integrality markers are ignored, which makes it a relaxation
// backend for MIPs and an exact one for pure LPs.
type Simplex struct {
	defaults Options
}

// Name implements Solver.
func (s *Simplex) Name() string { return "simplex" }

// lpSimplex points to the function used to solve the standard-form LP. It can
// be overridden in tests to simulate solver failures.
var lpSimplex = lp.Simplex

// Solve implements Solver. Infeasibility and unboundedness are reported as
// terminal statuses; any other solver failure is returned as the raw gonum
// error.
func (s *Simplex) Solve(ctx context.Context, p *Problem, opts Options) (*Result, error) {
	opts = opts.merged(s.defaults)
	res := newResult()
	start := time.Now()
	defer func() { res.SolveTime = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x, obj, err := solveRelaxation(p, opts.tolerance())
	res.Nodes = 1
	switch {
	case err == nil:
		res.Status = StatusOptimal
		res.Objective = obj
		res.Bound = obj
		res.X = x
	case errors.Is(err, lp.ErrInfeasible):
		res.Status = StatusInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		res.Status = StatusUnbounded
	default:
		return nil, err
	}
	return res, nil
}

// solveRelaxation converts the general-form problem to standard form and runs
// the simplex method. The converted variable vector is [x⁺, x⁻, slack], so the
// original variables are recovered as x⁺ - x⁻.
func solveRelaxation(p *Problem, tol float64) ([]float64, float64, error) {
	g, h := p.bounded()
	cStd, aStd, bStd := lp.Convert(p.C, g, h, p.A, p.B)
	_, sol, err := lpSimplex(cStd, aStd, bStd, tol, nil)
	if err != nil {
		return nil, 0, err
	}
	n := p.NumVars()
	x := make([]float64, n)
	obj := 0.0
	for i := 0; i < n; i++ {
		x[i] = sol[i] - sol[n+i]
		obj += p.C[i] * x[i]
	}
	return x, obj, nil
}
