// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/steigerlint/steiger/internal/app/lint"
	"github.com/steigerlint/steiger/internal/engine"
	"github.com/steigerlint/steiger/internal/issue"
	"github.com/steigerlint/steiger/pkg/rule"
)

// maxSuggestionDistance bounds "did you mean" suggestions for mistyped rule names.
const maxSuggestionDistance = 3

func newRulesCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List every rule with the severity the configuration gives it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := loadCatalog(cmd, app, flags)
			if err != nil {
				return reportFatal(app.stderr, err, flags.verbose)
			}
			if asJSON {
				enc := json.NewEncoder(app.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}
			printCatalog(app, catalog, flags.verbose)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

func newExplainCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "explain <rule>",
		Short: "Describe a rule",
		Long: `Describe a rule: what it checks, why, and how to fix what it reports.

The rule can be named with or without its plugin prefix.`,
		Example: "  steiger explain public-api\n  steiger explain fsd/forbidden-imports --raw",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(cmd, app, flags)
			if err != nil {
				return reportFatal(app.stderr, err, flags.verbose)
			}

			info, ok := findRule(catalog, args[0])
			if !ok {
				fmt.Fprintf(app.stderr, "%s %s\n", ErrorStyle.Render("Error:"),
					formatErrorForDisplay(unknownRuleError(catalog, args[0]), flags.verbose))
				return &ExitError{Code: ExitProblems}
			}
			return explainRule(app, info, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the Markdown source instead of rendering it")
	return cmd
}

// loadCatalog resolves configuration and lists the rules under it.
func loadCatalog(cmd *cobra.Command, app *App, flags *rootFlagValues) ([]lint.RuleInfo, error) {
	cfg, err := app.loadConfig(cmd.Context(), flags)
	if err != nil {
		return nil, err
	}
	svc, err := app.newService(cfg, app.newLogger(flags.verbose))
	if err != nil {
		return nil, err
	}
	return svc.Catalog(cfg.Configs)
}

func printCatalog(app *App, catalog []lint.RuleInfo, verbose bool) {
	plugin := ""
	for _, info := range catalog {
		if info.Plugin != plugin {
			if plugin != "" {
				fmt.Fprintln(app.stdout)
			}
			plugin = info.Plugin
			fmt.Fprintln(app.stdout, TitleStyle.Render(plugin))
		}

		label := fmt.Sprintf("%-5s", info.Severity)
		line := "  " + severityStyle(string(info.Severity)).Render(label) + "  " + CmdStyle.Render(info.Name)
		if info.Scoped {
			line += " " + SubtitleStyle.Render("(scoped)")
		}
		if verbose && info.DocsURL != "" {
			line += "  " + VerboseStyle.Render(info.DocsURL)
		}
		fmt.Fprintln(app.stdout, line)
	}
}

func explainRule(app *App, info lint.RuleInfo, raw bool) error {
	header := TitleStyle.Render(info.Name) + "  " + severityStyle(string(info.Severity)).Render(string(info.Severity))
	if info.Docs == "" {
		fmt.Fprintln(app.stdout, header)
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No description bundled with this rule."))
	} else if raw {
		fmt.Fprint(app.stdout, info.Docs)
	} else {
		fmt.Fprintln(app.stdout, header)
		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
		if err != nil {
			return fmt.Errorf("create markdown renderer: %w", err)
		}
		out, err := renderer.Render(info.Docs)
		if err != nil {
			return fmt.Errorf("render %s docs: %w", info.Name, err)
		}
		fmt.Fprint(app.stdout, out)
	}

	if info.DocsURL != "" && !raw {
		fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("More:"), CmdStyle.Render(info.DocsURL))
	}
	return nil
}

// findRule matches the full name first, then the name without plugin prefix.
func findRule(catalog []lint.RuleInfo, name string) (lint.RuleInfo, bool) {
	for _, info := range catalog {
		if info.Name == name {
			return info, true
		}
	}
	for _, info := range catalog {
		if rule.ShortName(info.Name) == name {
			return info, true
		}
	}
	return lint.RuleInfo{}, false
}

// unknownRuleError suggests the closest rule names by edit distance.
func unknownRuleError(catalog []lint.RuleInfo, name string) error {
	type candidate struct {
		name string
		dist int
	}
	var candidates []candidate
	for _, info := range catalog {
		d := min(
			levenshtein.Distance(name, info.Name, nil),
			levenshtein.Distance(name, rule.ShortName(info.Name), nil),
		)
		if d <= maxSuggestionDistance {
			candidates = append(candidates, candidate{info.Name, d})
		}
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int { return a.dist - b.dist })

	builder := issue.NewErrorContext().
		WithKind(issue.KindConfig).
		WithOperation("explain rule").
		WithResource(name)
	if len(candidates) > 0 {
		names := make([]string, 0, 3)
		for _, c := range candidates[:min(3, len(candidates))] {
			names = append(names, c.name)
		}
		builder = builder.WithSuggestion("Did you mean " + strings.Join(names, " or ") + "?")
	}
	return builder.
		WithSuggestion("Run 'steiger rules' to list the available rules").
		Wrap(engine.ErrUnknownRule).
		BuildError()
}
