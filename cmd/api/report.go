package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tomlord1122/taskhub/internal/repository"
	"github.com/Tomlord1122/taskhub/internal/service"
)

func newReportCmd(configPath *string) *cobra.Command {
	var (
		format string
		params service.ReportParams
		n      int64
	)

	cmd := &cobra.Command{
		Use:   "report <name>",
		Short: "Print one of the read-only reports",
		Long: "Print one of the read-only reports: users, todos, projects, todo-stats, top-pending, " +
			"pending, member-name-match, project-wise, user-wise-projects.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (want json or yaml)", format)
			}
			if cmd.Flags().Changed("n") {
				params.N = &n
			}

			a, err := bootstrap(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer a.close()

			reports := service.NewReportService(repository.NewSqlxReportRepository(a.db.SQLX()), a.logger)
			result, err := reports.Run(cmd.Context(), args[0], params)
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(reports.Names(), ", "))
			}
			return writeReport(cmd.OutOrStdout(), format, result)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().Uint64Var(&params.Limit, "limit", 0, "row limit for top-pending (default 5)")
	cmd.Flags().Int64Var(&n, "n", 0, "pending todo count for the pending report")
	cmd.Flags().StringVar(&params.Prefix, "prefix", "", "member first name prefix for member-name-match (default U)")
	cmd.Flags().StringVar(&params.Suffix, "suffix", "", "member last name suffix for member-name-match (default U)")
	return cmd
}

func writeReport(w io.Writer, format string, result any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
