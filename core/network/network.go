package network

import "math"

// Bus types follow the MATPOWER convention.
const (
	BusPQ       = 1
	BusPV       = 2
	BusRef      = 3
	BusIsolated = 4
)

// DefaultAngle is the per-branch angle difference bound in radians applied
// when a branch omits ang_min/ang_max (30 degrees).
const DefaultAngle = math.Pi / 6

// ThetaLim bounds bus voltage angles in radians. Candidate branch big-M
// constants are derived from it, so it must dominate any feasible angle.
const ThetaLim = math.Pi / 2

// Bus is a network node.
type Bus struct {
	Index int    `json:"index"`
	Type  int    `json:"bus_type"`
	Name  string `json:"name,omitempty"`
}

// Load is a power demand attached to a bus. Pd is in per unit on the
// network's base MVA.
type Load struct {
	Index int     `json:"index"`
	Bus   int     `json:"bus"`
	Pd    float64 `json:"pd"`
}

// Generator is a dispatchable injection attached to a bus. Limits are in per
// unit.
type Generator struct {
	Index  int     `json:"index"`
	Bus    int     `json:"bus"`
	PMin   float64 `json:"pmin"`
	PMax   float64 `json:"pmax"`
	Status int     `json:"gen_status"`
}

// Branch is an in-service transmission element. Reactance is in per unit,
// RateA is the thermal limit in per unit, and the angle difference bounds are
// in radians.
type Branch struct {
	Index  int     `json:"index"`
	From   int     `json:"f_bus"`
	To     int     `json:"t_bus"`
	X      float64 `json:"br_x"`
	RateA  float64 `json:"rate_a"`
	Status int     `json:"br_status"`
	AngMin float64 `json:"ang_min"`
	AngMax float64 `json:"ang_max"`
}

// Susceptance returns the DC series susceptance 1/x.
func (b Branch) Susceptance() float64 { return 1 / b.X }

// CandidateBranch is an expansion candidate with a construction cost. It only
// carries power when the planner decides to build it.
type CandidateBranch struct {
	Branch
	Cost float64 `json:"construction_cost"`
}

// Network is a JSON-encoded TNEP problem description: the grid as built plus
// the candidate branches the planner may add.
type Network struct {
	Name       string            `json:"name"`
	BaseMVA    float64           `json:"baseMVA"`
	Buses      []Bus             `json:"bus"`
	Loads      []Load            `json:"load"`
	Generators []Generator       `json:"gen"`
	Branches   []Branch          `json:"branch"`
	Candidates []CandidateBranch `json:"ne_branch"`
}

// RefBuses returns the indices of all reference buses.
func (n *Network) RefBuses() []int {
	var refs []int
	for _, b := range n.Buses {
		if b.Type == BusRef {
			refs = append(refs, b.Index)
		}
	}
	return refs
}

// BusPositions maps bus indices to their position in Buses.
func (n *Network) BusPositions() map[int]int {
	pos := make(map[int]int, len(n.Buses))
	for i, b := range n.Buses {
		pos[b.Index] = i
	}
	return pos
}

// InService returns the branches with br_status 1.
func (n *Network) InService() []Branch {
	var out []Branch
	for _, br := range n.Branches {
		if br.Status == 1 {
			out = append(out, br)
		}
	}
	return out
}

// ActiveGenerators returns the generators with gen_status 1.
func (n *Network) ActiveGenerators() []Generator {
	var out []Generator
	for _, g := range n.Generators {
		if g.Status == 1 {
			out = append(out, g)
		}
	}
	return out
}

// LoadAt returns the total demand at the given bus in per unit.
func (n *Network) LoadAt(bus int) float64 {
	var pd float64
	for _, l := range n.Loads {
		if l.Bus == bus {
			pd += l.Pd
		}
	}
	return pd
}

// TotalLoad returns the total system demand in per unit.
func (n *Network) TotalLoad() float64 {
	var pd float64
	for _, l := range n.Loads {
		pd += l.Pd
	}
	return pd
}
