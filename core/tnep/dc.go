package tnep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/gridopt/tnep/core/network"
	"github.com/gridopt/tnep/core/solver"
)

func init() {
	RegisterModel("dc", func() Formulation { return DCModel{} })
}

// DCModel is the linearized (DC) power flow TNEP formulation. Bus voltage
// angles couple branch flows through susceptances; candidate branches use a
// big-M disjunction so the coupling and the thermal limit only bind once the
// branch is built. The objective is the total construction cost.
type DCModel struct{}

// Name implements Formulation.
func (DCModel) Name() string { return "dc" }

// Build implements Formulation.
func (DCModel) Build(net *network.Network) (*solver.Problem, *Mapping, error) {
	refs := net.RefBuses()
	if len(refs) != 1 {
		return nil, nil, fmt.Errorf("tnep: dc model needs exactly one reference bus, got %d", len(refs))
	}
	gens := net.ActiveGenerators()
	branches := net.InService()
	cands := net.Candidates

	nb, ng, nl, nc := len(net.Buses), len(gens), len(branches), len(cands)
	p := solver.NewProblem(nb + ng + nl + 2*nc)
	m := newMapping()

	// Variable layout: bus angles, generator injections, in-service branch
	// flows, candidate flows, candidate build decisions.
	v := 0
	for _, b := range net.Buses {
		m.Theta[b.Index] = v
		p.Names[v] = fmt.Sprintf("va_%d", b.Index)
		p.Lower[v], p.Upper[v] = -network.ThetaLim, network.ThetaLim
		if b.Index == refs[0] {
			p.Lower[v], p.Upper[v] = 0, 0
		}
		v++
	}
	for _, g := range gens {
		m.Gen[g.Index] = v
		p.Names[v] = fmt.Sprintf("pg_%d", g.Index)
		p.Lower[v], p.Upper[v] = g.PMin, g.PMax
		v++
	}
	for _, br := range branches {
		m.Flow[br.Index] = v
		p.Names[v] = fmt.Sprintf("p_%d", br.Index)
		p.Lower[v], p.Upper[v] = -br.RateA, br.RateA
		v++
	}
	for _, c := range cands {
		m.CandFlow[c.Index] = v
		p.Names[v] = fmt.Sprintf("p_ne_%d", c.Index)
		p.Lower[v], p.Upper[v] = -c.RateA, c.RateA
		v++
	}
	for _, c := range cands {
		m.Build[c.Index] = v
		p.Names[v] = fmt.Sprintf("built_%d", c.Index)
		p.Lower[v], p.Upper[v] = 0, 1
		p.Integer = append(p.Integer, v)
		p.C[v] = c.Cost
		v++
	}

	// Equalities: flow definition on in-service branches, then bus balance.
	nEq := nl + nb
	A := mat.NewDense(nEq, p.NumVars(), nil)
	b := make([]float64, nEq)
	row := 0
	for _, br := range branches {
		sus := br.Susceptance()
		A.Set(row, m.Flow[br.Index], 1)
		A.Set(row, m.Theta[br.From], -sus)
		A.Set(row, m.Theta[br.To], sus)
		row++
	}
	for _, bus := range net.Buses {
		for _, g := range gens {
			if g.Bus == bus.Index {
				A.Set(row, m.Gen[g.Index], 1)
			}
		}
		for _, br := range branches {
			if br.From == bus.Index {
				A.Set(row, m.Flow[br.Index], -1)
			}
			if br.To == bus.Index {
				A.Set(row, m.Flow[br.Index], 1)
			}
		}
		for _, c := range cands {
			if c.From == bus.Index {
				A.Set(row, m.CandFlow[c.Index], -1)
			}
			if c.To == bus.Index {
				A.Set(row, m.CandFlow[c.Index], 1)
			}
		}
		b[row] = net.LoadAt(bus.Index)
		row++
	}

	// Inequalities: angle difference limits on in-service branches, big-M
	// flow coupling, capacity activation and angle limits on candidates.
	nIneq := 2*nl + 6*nc
	if nIneq == 0 {
		p.A, p.B = A, b
		return p, m, nil
	}
	G := mat.NewDense(nIneq, p.NumVars(), nil)
	h := make([]float64, nIneq)
	row = 0
	for _, br := range branches {
		G.Set(row, m.Theta[br.From], 1)
		G.Set(row, m.Theta[br.To], -1)
		h[row] = br.AngMax
		row++
		G.Set(row, m.Theta[br.From], -1)
		G.Set(row, m.Theta[br.To], 1)
		h[row] = -br.AngMin
		row++
	}
	for _, c := range cands {
		sus := c.Susceptance()
		// Valid for any angles within ThetaLim, so the coupling is slack
		// until built_c reaches one.
		bigM := 2 * sus * network.ThetaLim
		fc, zc := m.CandFlow[c.Index], m.Build[c.Index]

		G.Set(row, fc, 1)
		G.Set(row, m.Theta[c.From], -sus)
		G.Set(row, m.Theta[c.To], sus)
		G.Set(row, zc, bigM)
		h[row] = bigM
		row++
		G.Set(row, fc, -1)
		G.Set(row, m.Theta[c.From], sus)
		G.Set(row, m.Theta[c.To], -sus)
		G.Set(row, zc, bigM)
		h[row] = bigM
		row++

		G.Set(row, fc, 1)
		G.Set(row, zc, -c.RateA)
		row++
		G.Set(row, fc, -1)
		G.Set(row, zc, -c.RateA)
		row++

		// Angle difference limit, active only once built. The constant makes
		// the row slack for any angles within ThetaLim when built_c is zero.
		mUp := 2*network.ThetaLim - c.AngMax
		G.Set(row, m.Theta[c.From], 1)
		G.Set(row, m.Theta[c.To], -1)
		G.Set(row, zc, mUp)
		h[row] = c.AngMax + mUp
		row++
		mDown := 2*network.ThetaLim + c.AngMin
		G.Set(row, m.Theta[c.From], -1)
		G.Set(row, m.Theta[c.To], 1)
		G.Set(row, zc, mDown)
		h[row] = -c.AngMin + mDown
		row++
	}

	p.A, p.B = A, b
	p.G, p.H = G, h
	return p, m, nil
}
