package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Problem is a mixed-integer linear program in general form:
//
//	minimize  c·x
//	s.t.      G x <= h
//	          A x  = b
//	          lower <= x <= upper
//
// Variables listed in Integer are restricted to integral values by the MIP
// backends and relaxed to their continuous bounds otherwise. Infinite bounds
// are expressed with math.Inf.
type Problem struct {
	C []float64

	G *mat.Dense
	H []float64
	A *mat.Dense
	B []float64

	Lower []float64
	Upper []float64

	Integer []int
	Names   []string
}

// NumVars returns the number of decision variables.
func (p *Problem) NumVars() int { return len(p.C) }

// NewProblem allocates a problem with n variables, unbounded by default.
func NewProblem(n int) *Problem {
	p := &Problem{
		C:     make([]float64, n),
		Lower: make([]float64, n),
		Upper: make([]float64, n),
		Names: make([]string, n),
	}
	for i := 0; i < n; i++ {
		p.Lower[i] = math.Inf(-1)
		p.Upper[i] = math.Inf(1)
	}
	return p
}

// bounded returns the inequality system with the finite variable bounds
// appended as explicit rows, which is the form the LP conversion expects.
func (p *Problem) bounded() (*mat.Dense, []float64) {
	n := p.NumVars()
	var rows int
	if p.G != nil {
		rows, _ = p.G.Dims()
	}
	extra := 0
	for i := 0; i < n; i++ {
		if !math.IsInf(p.Upper[i], 1) {
			extra++
		}
		if !math.IsInf(p.Lower[i], -1) {
			extra++
		}
	}
	g := mat.NewDense(rows+extra, n, nil)
	h := make([]float64, rows+extra)
	if p.G != nil {
		for r := 0; r < rows; r++ {
			for c := 0; c < n; c++ {
				g.Set(r, c, p.G.At(r, c))
			}
			h[r] = p.H[r]
		}
	}
	r := rows
	for i := 0; i < n; i++ {
		if !math.IsInf(p.Upper[i], 1) {
			g.Set(r, i, 1)
			h[r] = p.Upper[i]
			r++
		}
		if !math.IsInf(p.Lower[i], -1) {
			g.Set(r, i, -1)
			h[r] = -p.Lower[i]
			r++
		}
	}
	return g, h
}

// withBounds returns a shallow copy of the problem with its own bound slices,
// tightened to the given values.
func (p *Problem) withBounds(lower, upper []float64) *Problem {
	cp := *p
	cp.Lower = lower
	cp.Upper = upper
	return &cp
}
