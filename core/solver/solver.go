package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Default numerical settings, applied when the corresponding option is zero.
const (
	DefaultTolerance = 1e-7
	DefaultMIPGap    = 1e-6
)

// Options carries solver settings. They are forwarded to the backend as-is;
// a zero value means "backend default". Time and node limits are only
// meaningful for the branch-and-bound backend.
type Options struct {
	TimeLimitSeconds float64 `json:"time_limit_seconds" mapstructure:"time_limit_seconds"`
	MIPGap           float64 `json:"mip_gap" mapstructure:"mip_gap"`
	MaxNodes         int     `json:"max_nodes" mapstructure:"max_nodes"`
	Tolerance        float64 `json:"tolerance" mapstructure:"tolerance"`
	Verbose          bool    `json:"verbose" mapstructure:"verbose"`
}

func (o Options) timeLimit() time.Duration {
	return time.Duration(o.TimeLimitSeconds * float64(time.Second))
}

func (o Options) tolerance() float64 {
	if o.Tolerance == 0 {
		return DefaultTolerance
	}
	return o.Tolerance
}

func (o Options) gap() float64 {
	if o.MIPGap == 0 {
		return DefaultMIPGap
	}
	return o.MIPGap
}

// merged fills zero-valued fields from the backend defaults.
func (o Options) merged(def Options) Options {
	if o.TimeLimitSeconds == 0 {
		o.TimeLimitSeconds = def.TimeLimitSeconds
	}
	if o.MIPGap == 0 {
		o.MIPGap = def.MIPGap
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = def.MaxNodes
	}
	if o.Tolerance == 0 {
		o.Tolerance = def.Tolerance
	}
	if def.Verbose {
		o.Verbose = true
	}
	return o
}

// Solver is a numerical backend able to solve a Problem.
type Solver interface {
	Name() string
	Solve(ctx context.Context, p *Problem, opts Options) (*Result, error)
}

// Factory builds a solver from a raw configuration map.
type Factory func(conf map[string]any) (Solver, error)

// ErrUnknownSolver is returned when no backend is registered under the
// requested name.
var ErrUnknownSolver = errors.New("solver: unknown backend")

var registry = map[string]Factory{}

// Register makes a backend available under the given name.
func Register(name string, f Factory) { registry[name] = f }

// New looks up a backend by name and builds it from the raw configuration.
func New(name string, conf map[string]any) (Solver, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownSolver, name, Names())
	}
	return f(conf)
}

// Names returns the registered backend names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func decodeOptions(conf map[string]any) (Options, error) {
	var o Options
	if conf == nil {
		return o, nil
	}
	if err := mapstructure.Decode(conf, &o); err != nil {
		return o, fmt.Errorf("solver: decode options: %w", err)
	}
	return o, nil
}
