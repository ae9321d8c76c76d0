package tnep

import (
	"context"
	"fmt"

	"github.com/gridopt/tnep/core/logger"
	"github.com/gridopt/tnep/core/network"
	"github.com/gridopt/tnep/core/solver"
)

// solverLog is attached to backends that support verbose search logging.
var solverLog logger.Logger

// SetLogger routes verbose solver progress to l.
func SetLogger(l logger.Logger) { solverLog = l }

// Run loads a JSON problem description from path, selects the model
// formulation and solver backend by name and delegates the optimization.
// Solver and decode failures propagate as produced; only operation context is
// added.
func Run(ctx context.Context, path, model, backend string, opts solver.Options) (*Report, error) {
	net, err := network.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := net.Validate(); err != nil {
		return nil, err
	}
	return Solve(ctx, net, model, backend, opts)
}

// Solve runs the TNEP optimization on an already loaded network.
func Solve(ctx context.Context, net *network.Network, model, backend string, opts solver.Options) (*Report, error) {
	form, err := NewModel(model)
	if err != nil {
		return nil, err
	}
	be, err := solver.New(backend, nil)
	if err != nil {
		return nil, err
	}
	if v, ok := be.(interface{ SetLogger(logger.Logger) }); ok && solverLog != nil {
		v.SetLogger(solverLog)
	}
	prob, m, err := form.Build(net)
	if err != nil {
		return nil, fmt.Errorf("build %s model: %w", form.Name(), err)
	}
	res, err := be.Solve(ctx, prob, opts)
	if err != nil {
		return nil, err
	}
	return buildReport(net, form.Name(), be.Name(), m, res), nil
}
