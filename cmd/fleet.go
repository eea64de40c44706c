package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/retailops/fleetalloc/config"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the configured vehicles",
	RunE:  runFleetLs,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	for _, v := range cfg.Fleet.Models() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tweight=%.1f\tvolume=%.1f\t%s\n",
			v.ID, v.Type, v.WeightCapacity, v.VolumeCapacity, v.Status)
	}
	return nil
}
