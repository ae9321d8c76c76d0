package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gridopt/tnep/app"
	"github.com/gridopt/tnep/config"
	"github.com/gridopt/tnep/infra/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for solve requests over MQTT",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("serve-command").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
