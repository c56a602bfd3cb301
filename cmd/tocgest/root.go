package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "tocgest",
		Short: "Contract outline extraction and spreadsheet export",
		Long: `tocgest reads contracts (PDF by default), classifies them as ECCA, MIPA
or LLCA, rebuilds their section hierarchy from heading patterns and exports
the outline to Excel.

Configuration comes from ./tocgest.yaml (or --config) and TOCGEST_*
environment variables.`,
		Version:       version,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./tocgest.yaml)")

	cfgPath := func() string { return cfgFile }
	root.AddCommand(
		newServeCmd(cfgPath),
		newOutlineCmd(cfgPath),
		newExportCmd(cfgPath),
		newWatchCmd(cfgPath),
		newVersionCmd(),
	)
	return root
}
