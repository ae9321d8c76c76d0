// Package tnep solves transmission network expansion planning problems: given
// a JSON network description with candidate branches, it selects the cheapest
// set of candidates to build such that demand can be served within operating
// limits. Model construction is handled by named formulations and the
// numerical work is delegated to the solver backends.
package tnep

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gridopt/tnep/core/network"
	"github.com/gridopt/tnep/core/solver"
)

// Mapping records where each network quantity lives in the problem's variable
// vector, keyed by element index.
type Mapping struct {
	Theta    map[int]int
	Gen      map[int]int
	Flow     map[int]int
	CandFlow map[int]int
	Build    map[int]int
}

func newMapping() *Mapping {
	return &Mapping{
		Theta:    make(map[int]int),
		Gen:      make(map[int]int),
		Flow:     make(map[int]int),
		CandFlow: make(map[int]int),
		Build:    make(map[int]int),
	}
}

// Formulation lowers a validated network into a solvable problem.
type Formulation interface {
	Name() string
	Build(net *network.Network) (*solver.Problem, *Mapping, error)
}

// ErrUnknownModel is returned when no formulation is registered under the
// requested name.
var ErrUnknownModel = errors.New("tnep: unknown model")

// ModelFactory builds a formulation.
type ModelFactory func() Formulation

var models = map[string]ModelFactory{}

// RegisterModel makes a formulation available under the given name.
func RegisterModel(name string, f ModelFactory) { models[name] = f }

// NewModel looks up a formulation by name.
func NewModel(name string) (Formulation, error) {
	f, ok := models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownModel, name, ModelNames())
	}
	return f(), nil
}

// ModelNames returns the registered formulation names, sorted.
func ModelNames() []string {
	names := make([]string, 0, len(models))
	for n := range models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
