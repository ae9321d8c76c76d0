package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridopt/tnep/app"
	"github.com/gridopt/tnep/config"
	"github.com/gridopt/tnep/core/tnep"
	"github.com/gridopt/tnep/infra/logger"
)

var (
	netPath   string
	modelName string
	backend   string
	timeLimit time.Duration
	mipGap    float64
	outPath   string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a TNEP problem from a network JSON file",
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&netPath, "network", "n", "", "network JSON file (required)")
	solveCmd.Flags().StringVarP(&modelName, "model", "m", "", "model formulation (default from config)")
	solveCmd.Flags().StringVarP(&backend, "solver", "s", "", "solver backend (default from config)")
	solveCmd.Flags().DurationVar(&timeLimit, "time-limit", 0, "solver time limit")
	solveCmd.Flags().Float64Var(&mipGap, "gap", 0, "relative MIP gap tolerance")
	solveCmd.Flags().StringVarP(&outPath, "output", "o", "", "write the report to this file instead of stdout")
	_ = solveCmd.MarkFlagRequired("network")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tnep.SetLogger(logger.New("solver"))

	model := cfg.Solver.Model
	if modelName != "" {
		model = modelName
	}
	be := cfg.Solver.Backend
	if backend != "" {
		be = backend
	}
	opts := cfg.Solver.Options
	if timeLimit > 0 {
		opts.TimeLimitSeconds = timeLimit.Seconds()
	}
	if mipGap > 0 {
		opts.MIPGap = mipGap
	}

	rep, err := tnep.Run(ctx, netPath, model, be, opts)
	if err != nil {
		return err
	}

	sink := app.Sinks(cfg.Metrics)
	if err := sink.RecordSolve(app.SolveRecord(rep)); err != nil {
		logger.New("solve-command").Warnf("record solve: %v", err)
	}

	payload, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if outPath != "" {
		return os.WriteFile(outPath, payload, 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}

// loadConfig reads the configured file, falling back to built-in defaults when
// the default path does not exist.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgPath); err != nil {
		if !rootCmd.PersistentFlags().Changed("config") {
			cfg := &config.Config{}
			cfg.Solver.SetDefaults()
			cfg.Logging.SetDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}
