package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridopt/tnep/core/network"
)

var validateCmd = &cobra.Command{
	Use:   "validate <network.json>",
	Short: "Load and validate a network JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	net, err := network.LoadFile(args[0])
	if err != nil {
		return err
	}
	if err := net.Validate(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d buses, %d branches, %d candidates, %.1f MW load\n",
		net.Name, len(net.Buses), len(net.Branches), len(net.Candidates), net.TotalLoad()*net.BaseMVA)
	return nil
}
