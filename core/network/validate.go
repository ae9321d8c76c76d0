package network

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
)

var (
	// ErrNoRefBus is returned when the network defines no reference bus.
	ErrNoRefBus = errors.New("network: no reference bus")
	// ErrMultipleRefBuses is returned when more than one reference bus is defined.
	ErrMultipleRefBuses = errors.New("network: multiple reference buses")
)

// Validate checks referential integrity and connectivity of the problem
// description. Island detection considers candidate branches as connected:
// a bus only counts as unreachable when no expansion decision could reach it.
func (n *Network) Validate() error {
	if len(n.Buses) == 0 {
		return errors.New("network: no buses")
	}
	refs := n.RefBuses()
	switch {
	case len(refs) == 0:
		return ErrNoRefBus
	case len(refs) > 1:
		return fmt.Errorf("%w: %v", ErrMultipleRefBuses, refs)
	}

	pos := n.BusPositions()
	if len(pos) != len(n.Buses) {
		return errors.New("network: duplicate bus indices")
	}
	for _, l := range n.Loads {
		if _, ok := pos[l.Bus]; !ok {
			return fmt.Errorf("network: load %d references unknown bus %d", l.Index, l.Bus)
		}
		if l.Pd < 0 {
			return fmt.Errorf("network: load %d has negative demand", l.Index)
		}
	}
	for _, g := range n.Generators {
		if _, ok := pos[g.Bus]; !ok {
			return fmt.Errorf("network: gen %d references unknown bus %d", g.Index, g.Bus)
		}
		if g.PMax < g.PMin {
			return fmt.Errorf("network: gen %d has pmax < pmin", g.Index)
		}
	}
	for _, br := range n.Branches {
		if err := checkBranch(br, pos, "branch"); err != nil {
			return err
		}
	}
	for _, c := range n.Candidates {
		if err := checkBranch(c.Branch, pos, "ne_branch"); err != nil {
			return err
		}
		if c.Cost < 0 {
			return fmt.Errorf("network: ne_branch %d has negative construction cost", c.Index)
		}
	}
	return n.checkIslands(refs[0])
}

func checkBranch(br Branch, pos map[int]int, kind string) error {
	if _, ok := pos[br.From]; !ok {
		return fmt.Errorf("network: %s %d references unknown bus %d", kind, br.Index, br.From)
	}
	if _, ok := pos[br.To]; !ok {
		return fmt.Errorf("network: %s %d references unknown bus %d", kind, br.Index, br.To)
	}
	if br.From == br.To {
		return fmt.Errorf("network: %s %d connects bus %d to itself", kind, br.Index, br.From)
	}
	if br.X <= 0 {
		return fmt.Errorf("network: %s %d has non-positive reactance", kind, br.Index)
	}
	if br.RateA <= 0 {
		return fmt.Errorf("network: %s %d has non-positive rating", kind, br.Index)
	}
	if br.AngMin >= br.AngMax {
		return fmt.Errorf("network: %s %d has empty angle range", kind, br.Index)
	}
	return nil
}

// checkIslands walks the bus graph from the reference bus over in-service and
// candidate branches and reports buses out of reach of any expansion plan.
func (n *Network) checkIslands(ref int) error {
	g := core.NewGraph()
	for _, b := range n.Buses {
		if err := g.AddVertex(busID(b.Index)); err != nil {
			return fmt.Errorf("network: bus graph: %w", err)
		}
	}
	for _, br := range n.InService() {
		if _, err := g.AddEdge(busID(br.From), busID(br.To), 0); err != nil {
			return fmt.Errorf("network: bus graph: %w", err)
		}
	}
	for _, c := range n.Candidates {
		if _, err := g.AddEdge(busID(c.From), busID(c.To), 0); err != nil {
			return fmt.Errorf("network: bus graph: %w", err)
		}
	}
	res, err := bfs.BFS(g, busID(ref))
	if err != nil {
		return fmt.Errorf("network: bus graph walk: %w", err)
	}
	var isolated []int
	for _, b := range n.Buses {
		if _, ok := res.Depth[busID(b.Index)]; !ok && b.Type != BusIsolated {
			isolated = append(isolated, b.Index)
		}
	}
	if len(isolated) > 0 {
		sort.Ints(isolated)
		return fmt.Errorf("network: buses %v unreachable from reference bus %d", isolated, ref)
	}
	return nil
}

func busID(i int) string { return strconv.Itoa(i) }
