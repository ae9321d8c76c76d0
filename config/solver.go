package config

import (
	"fmt"

	"github.com/gridopt/tnep/core/solver"
	"github.com/gridopt/tnep/core/tnep"
)

// SolverConfig selects the default model formulation and solver backend and
// carries the options forwarded to the backend.
type SolverConfig struct {
	// Model names the TNEP formulation: "dc" or "transport".
	Model string `json:"model"`
	// Backend names the numerical solver: "bnb" or "simplex".
	Backend string `json:"backend"`
	// Options are forwarded to the backend unmodified.
	Options solver.Options `json:"options"`
}

// SetDefaults applies sane defaults.
func (c *SolverConfig) SetDefaults() {
	if c.Model == "" {
		c.Model = "dc"
	}
	if c.Backend == "" {
		c.Backend = "bnb"
	}
}

// Validate checks that the named model and backend exist.
func (c SolverConfig) Validate() error {
	if _, err := tnep.NewModel(c.Model); err != nil {
		return err
	}
	if _, err := solver.New(c.Backend, nil); err != nil {
		return err
	}
	if c.Options.TimeLimitSeconds < 0 {
		return fmt.Errorf("negative time limit")
	}
	if c.Options.MIPGap < 0 {
		return fmt.Errorf("negative mip gap")
	}
	return nil
}
