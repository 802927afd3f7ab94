// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/steigerlint/steiger/internal/app/lint"
)

func newInspectCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Show how a project splits into layers, slices and segments",
		Long: `Show the Feature-Sliced Design structure steiger recognizes in a folder.

Folders that are not layers are left out, as are the configured global ignores.
Use it to check what the rules will see before fixing a diagnostic.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := inspect(cmd, app, flags, args)
			if err != nil {
				return reportFatal(app.stderr, err, flags.verbose)
			}
			if asJSON {
				enc := json.NewEncoder(app.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(model)
			}
			fmt.Fprintln(app.stdout, renderModel(model))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the structure as JSON")
	return cmd
}

func inspect(cmd *cobra.Command, app *App, flags *rootFlagValues, args []string) (*lint.Model, error) {
	cfg, err := app.loadConfig(cmd.Context(), flags)
	if err != nil {
		return nil, err
	}
	root, err := app.resolveRoot(args)
	if err != nil {
		return nil, err
	}
	svc, err := app.newService(cfg, app.newLogger(flags.verbose))
	if err != nil {
		return nil, err
	}
	plan, err := svc.Plan(cfg.Configs)
	if err != nil {
		return nil, err
	}
	return lint.Inspect(cmd.Context(), root, plan.GlobalIgnores)
}

// renderModel draws the model as a tree: layers, then slices, then segments.
func renderModel(m *lint.Model) string {
	t := tree.Root(TitleStyle.Render(filepath.Base(m.Root))).
		EnumeratorStyle(SubtitleStyle)

	for _, layer := range m.Layers {
		node := tree.Root(CmdStyle.Render(layer.Name))
		if layer.Sliced {
			for _, slice := range layer.Slices {
				node.Child(tree.Root(slice.Name).Child(segmentNodes(slice.Segments)...))
			}
		} else {
			node.Child(segmentNodes(layer.Segments)...)
		}
		if len(layer.Slices) == 0 && len(layer.Segments) == 0 {
			node.Child(SubtitleStyle.Render("(empty)"))
		}
		t.Child(node)
	}
	if len(m.Layers) == 0 {
		t.Child(WarningStyle.Render("no layers found"))
	}
	return t.String()
}

func segmentNodes(segments []string) []any {
	out := make([]any, len(segments))
	for i, s := range segments {
		out[i] = VerboseStyle.Render(s)
	}
	return out
}
