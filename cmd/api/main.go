package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "taskhub",
		Short:         "Todo lists and capacity-limited project teams over HTTP",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (defaults to $TASKHUB_CONFIG)")

	serve := newServeCmd(&configPath)
	root.RunE = serve.RunE

	root.AddCommand(
		serve,
		newMigrateCmd(&configPath),
		newCreateSuperuserCmd(&configPath),
		newReportCmd(&configPath),
	)
	return root
}
