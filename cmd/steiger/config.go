// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/steigerlint/steiger/internal/config"
	"github.com/steigerlint/steiger/pkg/rule"
)

// newConfigCommand creates the `steiger config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect steiger configuration",
		Long: `Inspect steiger configuration.

Configuration is read from the first of these files found in the working
directory or one of its parents:
  ` + strings.Join(config.ConfigFileNames, "\n  "),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), flags)
			if err != nil {
				return reportFatal(app.stderr, err, flags.verbose)
			}
			return showConfig(app, cfg)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show which config file is used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), flags)
			if err != nil {
				return reportFatal(app.stderr, err, flags.verbose)
			}
			if cfg.Path == "" {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("(no config file, using defaults)"))
				return nil
			}
			fmt.Fprintln(app.stdout, cfg.Path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the CUE schema config files are validated against",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Fprint(app.stdout, config.Schema())
			return nil
		},
	})

	return cfgCmd
}

func showConfig(app *App, cfg *config.Config) error {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if cfg.Path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfg.Path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("max_shown"), valueStyle.Render(fmt.Sprint(cfg.MaxShown)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("fail_on_warnings"), valueStyle.Render(fmt.Sprint(cfg.FailOnWarnings)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("concurrency"), valueStyle.Render(fmt.Sprint(cfg.Concurrency)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("configs"))
	if len(cfg.Configs) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none, recommended rules only)"))
		return nil
	}

	out, err := yaml.Marshal(configObjectsForDisplay(cfg.Configs))
	if err != nil {
		return fmt.Errorf("encode config objects: %w", err)
	}
	for line := range strings.Lines(string(out)) {
		fmt.Fprint(w, "  "+line)
	}
	return nil
}

// configObjectsForDisplay turns config objects back into the file shape:
// rule entries become a severity or a [severity, options] pair.
func configObjectsForDisplay(objects []rule.ConfigObject) []map[string]any {
	out := make([]map[string]any, 0, len(objects))
	for _, obj := range objects {
		m := map[string]any{}
		if len(obj.Files) > 0 {
			m["files"] = obj.Files
		}
		if len(obj.Ignores) > 0 {
			m["ignores"] = obj.Ignores
		}
		if len(obj.Rules) > 0 {
			rules := make(map[string]any, len(obj.Rules))
			for name, entry := range obj.Rules {
				if len(entry.Options) > 0 {
					rules[name] = []any{string(entry.Severity), entry.Options}
				} else {
					rules[name] = string(entry.Severity)
				}
			}
			m["rules"] = rules
		}
		out = append(out, m)
	}
	return out
}
