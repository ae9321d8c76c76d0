package tnep

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridopt/tnep/core/network"
	"github.com/gridopt/tnep/core/solver"
)

// expansionCase is a two-bus system where the existing corridor is too small
// for the demand: 100 MW must reach bus 2 but the in-service branch carries
// only 50 MW. The candidate in parallel must be built, at cost 10.
func expansionCase() *network.Network {
	net := &network.Network{
		Name:    "case2-exp",
		BaseMVA: 100,
		Buses: []network.Bus{
			{Index: 1, Type: network.BusRef},
			{Index: 2, Type: network.BusPQ},
		},
		Loads: []network.Load{{Index: 1, Bus: 2, Pd: 1.0}},
		Generators: []network.Generator{
			{Index: 1, Bus: 1, PMin: 0, PMax: 2.0, Status: 1},
		},
		Branches: []network.Branch{
			{Index: 1, From: 1, To: 2, X: 0.2, RateA: 0.5, Status: 1},
		},
		Candidates: []network.CandidateBranch{
			{Branch: network.Branch{Index: 1, From: 1, To: 2, X: 0.2, RateA: 1.0, Status: 1}, Cost: 10},
		},
	}
	for i := range net.Branches {
		net.Branches[i].AngMin = -network.DefaultAngle
		net.Branches[i].AngMax = network.DefaultAngle
	}
	for i := range net.Candidates {
		net.Candidates[i].AngMin = -network.DefaultAngle
		net.Candidates[i].AngMax = network.DefaultAngle
	}
	return net
}

func TestDCModel_Build(t *testing.T) {
	net := expansionCase()
	p, m, err := DCModel{}.Build(net)
	require.NoError(t, err)

	// 2 angles + 1 gen + 1 flow + 1 candidate flow + 1 build decision.
	assert.Equal(t, 6, p.NumVars())
	assert.Equal(t, []int{5}, p.Integer)
	assert.Equal(t, 10.0, p.C[m.Build[1]])

	// Reference angle is pinned.
	ref := m.Theta[1]
	assert.Equal(t, 0.0, p.Lower[ref])
	assert.Equal(t, 0.0, p.Upper[ref])

	// Flow definition rows plus one balance row per bus.
	rows, _ := p.A.Dims()
	assert.Equal(t, 1+2, rows)
	// Angle limits (2) plus big-M coupling (2), capacity activation (2) and
	// candidate angle limits (2).
	gRows, _ := p.G.Dims()
	assert.Equal(t, 8, gRows)
}

func TestDCModel_SolveExpansion(t *testing.T) {
	net := expansionCase()
	require.NoError(t, net.Validate())

	rep, err := Solve(context.Background(), net, "dc", "bnb", solver.Options{})
	require.NoError(t, err)

	assert.Equal(t, "optimal", rep.Status)
	assert.True(t, rep.Optimal())
	assert.InDelta(t, 10, rep.Objective, 1e-6)
	require.Len(t, rep.Built, 1)
	assert.Equal(t, 1, rep.Built[0].Index)

	// Equal reactances split the 100 MW demand evenly across the corridor.
	assert.InDelta(t, 50, rep.Built[0].FlowMW, 1e-4)
	require.Len(t, rep.Flows, 1)
	assert.InDelta(t, 50, rep.Flows[0].FlowMW, 1e-4)
	require.Len(t, rep.Dispatch, 1)
	assert.InDelta(t, 100, rep.Dispatch[0].PMW, 1e-4)

	// f = susceptance * angle difference: 0.5 = 5 * 0.1.
	require.Len(t, rep.Angles, 2)
	assert.InDelta(t, -0.1, angleOf(t, rep, 2), 1e-4)
}

func angleOf(t *testing.T, rep *Report, bus int) float64 {
	t.Helper()
	for _, a := range rep.Angles {
		if a.Bus == bus {
			return a.VaRad
		}
	}
	t.Fatalf("bus %d not in report", bus)
	return 0
}

func TestDCModel_NoCandidates(t *testing.T) {
	net := expansionCase()
	net.Loads[0].Pd = 0.4
	net.Candidates = nil

	rep, err := Solve(context.Background(), net, "dc", "bnb", solver.Options{})
	require.NoError(t, err)
	assert.Equal(t, "optimal", rep.Status)
	assert.InDelta(t, 0, rep.Objective, 1e-9)
	assert.Empty(t, rep.Built)
}

func TestDCModel_Infeasible(t *testing.T) {
	net := expansionCase()
	net.Loads[0].Pd = 3.0 // exceeds total generation

	rep, err := Solve(context.Background(), net, "dc", "bnb", solver.Options{})
	require.NoError(t, err)
	assert.Equal(t, "infeasible", rep.Status)
	assert.Empty(t, rep.Built)
}

// A built candidate must respect its own ang_min/ang_max, not just the global
// angle bounds. With x=1.0 a 0.8 pu transfer needs an angle spread of 0.8 rad,
// past the default 30 degree limit.
func TestDCModel_CandidateAngleLimit(t *testing.T) {
	net := &network.Network{
		BaseMVA: 100,
		Buses: []network.Bus{
			{Index: 1, Type: network.BusRef},
			{Index: 2, Type: network.BusPQ},
		},
		Loads: []network.Load{{Index: 1, Bus: 2, Pd: 0.8}},
		Generators: []network.Generator{
			{Index: 1, Bus: 1, PMin: 0, PMax: 2.0, Status: 1},
		},
		Candidates: []network.CandidateBranch{
			{Branch: network.Branch{
				Index: 1, From: 1, To: 2, X: 1.0, RateA: 1.0, Status: 1,
				AngMin: -network.DefaultAngle, AngMax: network.DefaultAngle,
			}, Cost: 5},
		},
	}

	rep, err := Solve(context.Background(), net, "dc", "bnb", solver.Options{})
	require.NoError(t, err)
	assert.Equal(t, "infeasible", rep.Status)

	// Within the angle limit the same corridor works.
	net.Loads[0].Pd = 0.5
	rep, err = Solve(context.Background(), net, "dc", "bnb", solver.Options{})
	require.NoError(t, err)
	assert.Equal(t, "optimal", rep.Status)
	require.Len(t, rep.Built, 1)
	assert.InDelta(t, 0.5, angleOf(t, rep, 1)-angleOf(t, rep, 2), 1e-4)
}

// threeBusCase overloads the 1-2 corridor so the 1-3 candidate closes a loop.
// With equal reactances the loop flows are determined by hand:
// f12 = 2/3, f23 = -2/15, f13 = 8/15 pu.
func threeBusCase() *network.Network {
	return &network.Network{
		Name:    "case3-loop",
		BaseMVA: 100,
		Buses: []network.Bus{
			{Index: 1, Type: network.BusRef},
			{Index: 2, Type: network.BusPQ},
			{Index: 3, Type: network.BusPQ},
		},
		Loads: []network.Load{
			{Index: 1, Bus: 2, Pd: 0.8},
			{Index: 2, Bus: 3, Pd: 0.4},
		},
		Generators: []network.Generator{
			{Index: 1, Bus: 1, PMin: 0, PMax: 2.0, Status: 1},
		},
		Branches: []network.Branch{
			{Index: 1, From: 1, To: 2, X: 0.2, RateA: 1.0, Status: 1, AngMin: -network.DefaultAngle, AngMax: network.DefaultAngle},
			{Index: 2, From: 2, To: 3, X: 0.2, RateA: 1.0, Status: 1, AngMin: -network.DefaultAngle, AngMax: network.DefaultAngle},
		},
		Candidates: []network.CandidateBranch{
			{Branch: network.Branch{Index: 1, From: 1, To: 3, X: 0.2, RateA: 1.0, Status: 1, AngMin: -network.DefaultAngle, AngMax: network.DefaultAngle}, Cost: 20},
		},
	}
}

func TestDCModel_ThreeBusLoop(t *testing.T) {
	net := threeBusCase()
	require.NoError(t, net.Validate())

	rep, err := Solve(context.Background(), net, "dc", "bnb", solver.Options{})
	require.NoError(t, err)

	assert.Equal(t, "optimal", rep.Status)
	assert.InDelta(t, 20, rep.Objective, 1e-6)
	require.Len(t, rep.Built, 1)
	assert.Equal(t, 1, rep.Built[0].Index)

	// Loop flow split for equal reactances.
	assert.InDelta(t, 100.0*2/3, flowOf(t, rep, 1), 1e-3)
	assert.InDelta(t, -100.0*2/15, flowOf(t, rep, 2), 1e-3)
	assert.InDelta(t, 100.0*8/15, rep.Built[0].FlowMW, 1e-3)
	assert.InDelta(t, -2.0/15, angleOf(t, rep, 2), 1e-4)
	assert.InDelta(t, -8.0/75, angleOf(t, rep, 3), 1e-4)
}

// sixBusCase is a Garver-shaped system: bus 6 starts disconnected and three
// candidate corridors compete to reach it. Only 4-6 is both feasible and
// cheapest, so the optimum builds exactly that line.
func sixBusCase() *network.Network {
	newBranch := func(idx, from, to int, rate float64) network.Branch {
		return network.Branch{
			Index: idx, From: from, To: to, X: 0.25, RateA: rate, Status: 1,
			AngMin: -network.DefaultAngle, AngMax: network.DefaultAngle,
		}
	}
	return &network.Network{
		Name:    "case6-garver",
		BaseMVA: 100,
		Buses: []network.Bus{
			{Index: 1, Type: network.BusRef},
			{Index: 2, Type: network.BusPQ},
			{Index: 3, Type: network.BusPQ},
			{Index: 4, Type: network.BusPQ},
			{Index: 5, Type: network.BusPQ},
			{Index: 6, Type: network.BusPQ},
		},
		Loads: []network.Load{
			{Index: 1, Bus: 3, Pd: 0.5},
			{Index: 2, Bus: 5, Pd: 0.5},
			{Index: 3, Bus: 6, Pd: 0.8},
		},
		Generators: []network.Generator{
			{Index: 1, Bus: 1, PMin: 0, PMax: 3.0, Status: 1},
		},
		Branches: []network.Branch{
			newBranch(1, 1, 2, 1.0),
			newBranch(2, 2, 3, 1.0),
			newBranch(3, 1, 4, 2.0),
			newBranch(4, 4, 5, 1.0),
		},
		Candidates: []network.CandidateBranch{
			{Branch: newBranch(1, 2, 6, 1.0), Cost: 30},
			{Branch: newBranch(2, 4, 6, 1.0), Cost: 20},
			{Branch: newBranch(3, 1, 6, 1.5), Cost: 100},
		},
	}
}

func TestDCModel_SixBusExpansion(t *testing.T) {
	net := sixBusCase()
	require.NoError(t, net.Validate())

	rep, err := Solve(context.Background(), net, "dc", "bnb", solver.Options{})
	require.NoError(t, err)

	assert.Equal(t, "optimal", rep.Status)
	assert.InDelta(t, 20, rep.Objective, 1e-6)
	require.Len(t, rep.Built, 1)
	assert.Equal(t, 2, rep.Built[0].Index)
	assert.InDelta(t, 80, rep.Built[0].FlowMW, 1e-3)

	// The expanded network is radial, so flows follow from conservation alone.
	assert.InDelta(t, 50, flowOf(t, rep, 1), 1e-3)
	assert.InDelta(t, 50, flowOf(t, rep, 2), 1e-3)
	assert.InDelta(t, 130, flowOf(t, rep, 3), 1e-3)
	assert.InDelta(t, 50, flowOf(t, rep, 4), 1e-3)
	require.Len(t, rep.Dispatch, 1)
	assert.InDelta(t, 180, rep.Dispatch[0].PMW, 1e-3)
}

func flowOf(t *testing.T, rep *Report, branch int) float64 {
	t.Helper()
	for _, f := range rep.Flows {
		if f.Index == branch {
			return f.FlowMW
		}
	}
	t.Fatalf("branch %d not in report", branch)
	return 0
}

func TestDCModel_NeedsSingleRefBus(t *testing.T) {
	net := expansionCase()
	net.Buses[0].Type = network.BusPQ
	_, _, err := DCModel{}.Build(net)
	assert.Error(t, err)
}
