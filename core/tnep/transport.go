package tnep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/gridopt/tnep/core/network"
	"github.com/gridopt/tnep/core/solver"
)

func init() {
	RegisterModel("transport", func() Formulation { return TransportModel{} })
}

// TransportModel is the network-flow relaxation of the TNEP problem: flows
// obey conservation and thermal limits but not angle coupling. It bounds the
// DC model from below and solves considerably faster on large cases.
type TransportModel struct{}

// Name implements Formulation.
func (TransportModel) Name() string { return "transport" }

// Build implements Formulation.
func (TransportModel) Build(net *network.Network) (*solver.Problem, *Mapping, error) {
	gens := net.ActiveGenerators()
	branches := net.InService()
	cands := net.Candidates

	nb, ng, nl, nc := len(net.Buses), len(gens), len(branches), len(cands)
	p := solver.NewProblem(ng + nl + 2*nc)
	m := newMapping()

	v := 0
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

	A := mat.NewDense(nb, p.NumVars(), nil)
	b := make([]float64, nb)
	for row, bus := range net.Buses {
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
	}

	p.A, p.B = A, b
	if nc > 0 {
		G := mat.NewDense(2*nc, p.NumVars(), nil)
		h := make([]float64, 2*nc)
		row := 0
		for _, c := range cands {
			fc, zc := m.CandFlow[c.Index], m.Build[c.Index]
			G.Set(row, fc, 1)
			G.Set(row, zc, -c.RateA)
			row++
			G.Set(row, fc, -1)
			G.Set(row, zc, -c.RateA)
			row++
		}
		p.G, p.H = G, h
	}
	return p, m, nil
}
