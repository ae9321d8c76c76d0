package network

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeValid(t *testing.T) *Network {
	t.Helper()
	net, err := Decode(strings.NewReader(threeBusJSON))
	require.NoError(t, err)
	return net
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, decodeValid(t).Validate())
}

func TestValidate_NoRefBus(t *testing.T) {
	net := decodeValid(t)
	net.Buses[0].Type = BusPV
	assert.ErrorIs(t, net.Validate(), ErrNoRefBus)
}

func TestValidate_MultipleRefBuses(t *testing.T) {
	net := decodeValid(t)
	net.Buses[1].Type = BusRef
	assert.ErrorIs(t, net.Validate(), ErrMultipleRefBuses)
}

func TestValidate_UnknownBus(t *testing.T) {
	net := decodeValid(t)
	net.Loads[0].Bus = 99
	err := net.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown bus 99")
}

func TestValidate_BadBranch(t *testing.T) {
	cases := map[string]func(*Network){
		"self loop":     func(n *Network) { n.Branches[0].To = n.Branches[0].From },
		"bad reactance": func(n *Network) { n.Branches[0].X = 0 },
		"bad rating":    func(n *Network) { n.Branches[0].RateA = -1 },
		"empty angles":  func(n *Network) { n.Branches[0].AngMin, n.Branches[0].AngMax = 0.1, 0.1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			net := decodeValid(t)
			mutate(net)
			assert.Error(t, net.Validate())
		})
	}
}

func TestValidate_IslandDetection(t *testing.T) {
	net := decodeValid(t)
	net.Buses = append(net.Buses, Bus{Index: 4, Type: BusPQ})
	err := net.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestValidate_CandidateReconnectsIsland(t *testing.T) {
	net := decodeValid(t)
	net.Buses = append(net.Buses, Bus{Index: 4, Type: BusPQ})
	net.Candidates = append(net.Candidates, CandidateBranch{
		Branch: Branch{Index: 2, From: 3, To: 4, X: 0.2, RateA: 1, Status: 1, AngMin: -DefaultAngle, AngMax: DefaultAngle},
		Cost:   5,
	})
	assert.NoError(t, net.Validate())
}

func TestValidate_NegativeCost(t *testing.T) {
	net := decodeValid(t)
	net.Candidates[0].Cost = -1
	assert.Error(t, net.Validate())
}
