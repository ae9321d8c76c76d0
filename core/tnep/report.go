package tnep

import (
	"math"
	"time"

	"github.com/gridopt/tnep/core/network"
	"github.com/gridopt/tnep/core/solver"
)

// BuiltBranch is a candidate branch selected by the planner.
type BuiltBranch struct {
	Index  int     `json:"index"`
	From   int     `json:"f_bus"`
	To     int     `json:"t_bus"`
	Cost   float64 `json:"construction_cost"`
	FlowMW float64 `json:"flow_mw"`
}

// BranchFlow is the planned flow on an in-service branch in MW.
type BranchFlow struct {
	Index  int     `json:"index"`
	From   int     `json:"f_bus"`
	To     int     `json:"t_bus"`
	FlowMW float64 `json:"flow_mw"`
}

// BusAngle is a bus voltage angle in radians. Only produced by angle-based
// models.
type BusAngle struct {
	Bus   int     `json:"bus"`
	VaRad float64 `json:"va_rad"`
}

// GenDispatch is a generator setpoint in MW.
type GenDispatch struct {
	Index int     `json:"index"`
	Bus   int     `json:"bus"`
	PMW   float64 `json:"p_mw"`
}

// Report is the network-level view of a solve: the solver result mapped back
// onto the problem description.
type Report struct {
	RunID   string `json:"run_id"`
	Network string `json:"network"`
	Model   string `json:"model"`
	Solver  string `json:"solver"`
	Status  string `json:"status"`

	// Objective is the total construction cost of the built candidates.
	Objective float64 `json:"objective"`
	Bound     float64 `json:"bound"`
	Gap       float64 `json:"gap"`

	Built    []BuiltBranch `json:"built"`
	Flows    []BranchFlow  `json:"flows,omitempty"`
	Angles   []BusAngle    `json:"angles,omitempty"`
	Dispatch []GenDispatch `json:"dispatch,omitempty"`

	Nodes     int           `json:"nodes"`
	SolveTime time.Duration `json:"solve_time_ns"`
}

// Optimal reports whether the plan is proven optimal.
func (r *Report) Optimal() bool { return r.Status == solver.StatusOptimal.String() }

func buildReport(net *network.Network, model, backend string, m *Mapping, res *solver.Result) *Report {
	rep := &Report{
		RunID:     res.RunID,
		Network:   net.Name,
		Model:     model,
		Solver:    backend,
		Status:    res.Status.String(),
		Objective: finite(res.Objective),
		Bound:     finite(res.Bound),
		Gap:       finite(res.Gap),
		Built:     []BuiltBranch{},
		Nodes:     res.Nodes,
		SolveTime: res.SolveTime,
	}
	if !res.HasSolution() {
		return rep
	}

	x := res.X
	for _, c := range net.Candidates {
		if x[m.Build[c.Index]] < 0.5 {
			continue
		}
		rep.Built = append(rep.Built, BuiltBranch{
			Index:  c.Index,
			From:   c.From,
			To:     c.To,
			Cost:   c.Cost,
			FlowMW: x[m.CandFlow[c.Index]] * net.BaseMVA,
		})
	}
	for _, br := range net.InService() {
		rep.Flows = append(rep.Flows, BranchFlow{
			Index:  br.Index,
			From:   br.From,
			To:     br.To,
			FlowMW: x[m.Flow[br.Index]] * net.BaseMVA,
		})
	}
	if len(m.Theta) > 0 {
		for _, b := range net.Buses {
			rep.Angles = append(rep.Angles, BusAngle{Bus: b.Index, VaRad: x[m.Theta[b.Index]]})
		}
	}
	for _, g := range net.ActiveGenerators() {
		rep.Dispatch = append(rep.Dispatch, GenDispatch{
			Index: g.Index,
			Bus:   g.Bus,
			PMW:   x[m.Gen[g.Index]] * net.BaseMVA,
		})
	}
	return rep
}

// finite clamps non-finite values so the report stays JSON-encodable; the
// status field tells the full story.
func finite(f float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}
