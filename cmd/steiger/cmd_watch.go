// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/steigerlint/steiger/internal/report"
	"github.com/steigerlint/steiger/internal/watch"
)

// runWatchMode lints once, then re-lints whenever something under the root or
// the config file changes. It blocks until the context is cancelled (Ctrl+C).
// Lint failures while watching are printed and never stop the loop.
func runWatchMode(cmd *cobra.Command, s *lintSession) error {
	app := s.app
	if err := s.prepare(cmd); err != nil {
		return reportFatal(app.stderr, err, s.flags.verbose)
	}

	plan, err := s.svc.Plan(s.cfg.Configs)
	if err != nil {
		return reportFatal(app.stderr, err, s.flags.verbose)
	}

	relint := func(ctx context.Context) {
		if _, lintErr := s.lint(ctx); lintErr != nil {
			fmt.Fprintf(app.stderr, "%s %s\n", WarningStyle.Render("!"), formatErrorForDisplay(lintErr, s.flags.verbose))
		}
	}

	fmt.Fprintf(app.stdout, "%s Watch mode: initial lint of %s\n", VerboseHighlightStyle.Render("→"), CmdStyle.Render(s.root))
	relint(cmd.Context())
	fmt.Fprintf(app.stdout, "\n%s Watching for changes (Ctrl+C to stop)...\n\n", VerboseHighlightStyle.Render("→"))

	var files []string
	if s.cfg.Path != "" {
		files = append(files, s.cfg.Path)
	}
	configPath := s.cfg.Path

	w, err := watch.New(watch.Config{
		Root:        s.root,
		Files:       files,
		Ignore:      plan.GlobalIgnores,
		ClearScreen: s.format == report.FormatPretty,
		Stdout:      app.stdout,
		Logger:      s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "%s Detected %d change(s). Re-linting...\n",
				VerboseHighlightStyle.Render("→"), len(changed))
			if touchesFile(changed, s.root, configPath) {
				s.logger.Info("configuration changed, reloading", "path", configPath)
				if prepErr := s.prepare(cmd); prepErr != nil {
					fmt.Fprintf(app.stderr, "%s %s\n", WarningStyle.Render("!"), formatErrorForDisplay(prepErr, s.flags.verbose))
					return nil
				}
			}
			relint(ctx)
			fmt.Fprintf(app.stdout, "\n%s Watching for changes...\n\n", VerboseHighlightStyle.Render("→"))
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	return w.Run(cmd.Context())
}

// touchesFile reports whether a watcher change set names path, which the
// watcher reports relative to root when it lies inside it.
func touchesFile(changed []string, root, path string) bool {
	if path == "" {
		return false
	}
	if slices.Contains(changed, path) {
		return true
	}
	rel, err := filepath.Rel(root, path)
	return err == nil && slices.Contains(changed, filepath.ToSlash(rel))
}
