package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/retailops/fleetalloc/app"
	"github.com/retailops/fleetalloc/config"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run one allocation pass and print the result",
	RunE:  runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "service close: %v\n", cerr)
		}
	}()

	res, err := svc.Manager.ProcessPendingRequests()
	if err != nil {
		return fmt.Errorf("allocation pass: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
