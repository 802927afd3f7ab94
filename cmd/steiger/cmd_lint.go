// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/steigerlint/steiger/internal/app/lint"
	"github.com/steigerlint/steiger/internal/config"
	"github.com/steigerlint/steiger/internal/issue"
	"github.com/steigerlint/steiger/internal/report"
)

// lintSession is everything one lint invocation needs, resolved from flags,
// configuration and the path argument.
type lintSession struct {
	app    *App
	flags  *rootFlagValues
	format report.Format
	logger *log.Logger
	root   string
	cfg    *config.Config
	svc    *lint.Service
}

// runLint is the root command: lint once, or keep linting with --watch.
func runLint(cmd *cobra.Command, app *App, flags *rootFlagValues, args []string) error {
	format, err := report.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	if err := validateFlags(flags); err != nil {
		return err
	}

	s := &lintSession{
		app:    app,
		flags:  flags,
		format: format,
		logger: app.newLogger(flags.verbose),
	}

	if flags.watch {
		return runWatchMode(cmd, s)
	}

	if err := s.prepare(cmd); err != nil {
		return reportFatal(app.stderr, err, flags.verbose)
	}
	failed, err := s.lint(cmd.Context())
	if err != nil {
		return reportFatal(app.stderr, err, flags.verbose)
	}
	if failed {
		return &ExitError{Code: ExitProblems}
	}
	return nil
}

func validateFlags(flags *rootFlagValues) error {
	switch {
	case flags.maxShown < 0:
		return fmt.Errorf("--max-shown must not be negative, got %d", flags.maxShown)
	case flags.concurrency < 0:
		return fmt.Errorf("--concurrency must not be negative, got %d", flags.concurrency)
	case flags.timeout < 0:
		return fmt.Errorf("--timeout must not be negative, got %s", flags.timeout)
	}
	return nil
}

// prepare loads configuration, applies flag overrides and builds the service.
// Watch mode calls it again after the config file changes.
func (s *lintSession) prepare(cmd *cobra.Command) error {
	cfg, err := s.app.loadConfig(cmd.Context(), s.flags)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, s.flags, cfg)

	root, err := s.app.resolveRoot(cmd.Flags().Args())
	if err != nil {
		return err
	}

	svc, err := s.app.newService(cfg, s.logger)
	if err != nil {
		return err
	}

	if cfg.Path != "" {
		s.logger.Debug("configuration loaded", "path", cfg.Path, "objects", len(cfg.Configs))
	}
	s.cfg, s.root, s.svc = cfg, root, svc
	return nil
}

// applyFlagOverrides lets explicitly set flags win over file and environment settings.
func applyFlagOverrides(cmd *cobra.Command, flags *rootFlagValues, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("max-shown") {
		cfg.MaxShown = flags.maxShown
	}
	if fs.Changed("fail-on-warnings") {
		cfg.FailOnWarnings = flags.failOnWarnings
	}
	if fs.Changed("concurrency") {
		cfg.Concurrency = flags.concurrency
	}
}

// lint runs one pass and writes the report. failed reports whether the
// diagnostics should fail the process.
func (s *lintSession) lint(ctx context.Context) (failed bool, err error) {
	if s.flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.flags.timeout)
		defer cancel()
	}

	r, err := s.svc.Lint(ctx, lint.Request{
		Root:     s.root,
		Configs:  s.cfg.Configs,
		MaxShown: s.cfg.MaxShown,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = issue.NewErrorContext().
				WithKind(issue.KindRuleExecution).
				WithOperation("finish linting").
				WithResource(s.root).
				WithSuggestion(fmt.Sprintf("Raise --timeout (currently %s)", s.flags.timeout)).
				WithSuggestion("Add generated or vendored folders to the global ignores").
				Wrap(err).
				BuildError()
		}
		return false, err
	}

	if err := report.Write(s.app.stdout, s.format, r); err != nil {
		return false, fmt.Errorf("write report: %w", err)
	}
	return r.Failed(s.cfg.FailOnWarnings), nil
}
