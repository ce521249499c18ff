package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), *configPath, true)
			if err != nil {
				return err
			}
			defer a.close()

			a.logger.Info("database schema is up to date")
			return nil
		},
	}
}
