// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/steigerlint/steiger/internal/mcpserver"
)

func newMCPCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the linter to MCP clients over stdio",
		Long: `Serve the linter to MCP clients over stdio.

Tools: lint, inspect, list_rules and explain_rule. Configuration is resolved
once at startup from the working directory. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), flags)
			if err != nil {
				return reportFatal(app.stderr, err, flags.verbose)
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Concurrency = flags.concurrency
			}
			wd, err := app.getwd()
			if err != nil {
				return err
			}

			logger := app.newLogger(flags.verbose)
			svc, err := app.newService(cfg, logger)
			if err != nil {
				return reportFatal(app.stderr, err, flags.verbose)
			}

			srv := mcpserver.New(svc, mcpserver.Options{
				Version:  Version,
				Dir:      wd,
				Configs:  cfg.Configs,
				MaxShown: cfg.MaxShown,
				Logger:   logger,
			})
			return srv.Serve(cmd.Context(), app.stdin, app.stdout)
		},
	}
}
