// SPDX-License-Identifier: MPL-2.0

package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/steigerlint/steiger/internal/aggregate"
	"github.com/steigerlint/steiger/internal/engine"
	"github.com/steigerlint/steiger/internal/fsdplugin"
	"github.com/steigerlint/steiger/internal/issue"
	"github.com/steigerlint/steiger/pkg/fstree"
	"github.com/steigerlint/steiger/pkg/rule"
)

// DefaultSourceDir is linted when no path is given and it exists.
const DefaultSourceDir = "src"

type (
	// Options configures a Service. The zero value lints with the built-in
	// plugin only.
	Options struct {
		// Concurrency bounds how many rules run at once. Zero means GOMAXPROCS.
		Concurrency int
		// Logger receives engine and pipeline logs. nil discards them.
		Logger *log.Logger
		// Plugins are registered after the built-in fsd plugin.
		Plugins []rule.Plugin
	}

	// Request describes one lint run.
	Request struct {
		// Root is the folder to lint.
		Root string
		// Configs are the user's config objects. They are applied after the
		// plugins' recommended objects.
		Configs []rule.ConfigObject
		// MaxShown caps the reported diagnostics. Zero or less is unlimited.
		MaxShown int
	}

	// Report is the outcome of a lint run.
	Report struct {
		// Root is the absolute path of the linted folder.
		Root string
		// Rules lists the rules that ran, in plan order.
		Rules    []string
		Summary  aggregate.Summary
		Failures []engine.RuleFailure
	}

	// Service lints folders with a fixed set of plugins.
	Service struct {
		registry *engine.Registry
		engine   *engine.Engine
		logger   *log.Logger
	}
)

// NewService registers the plugins and prepares an engine.
func NewService(opts Options) (*Service, error) {
	plugins := append([]rule.Plugin{fsdplugin.Plugin()}, opts.Plugins...)
	reg, err := engine.NewRegistry(plugins...)
	if err != nil {
		return nil, fmt.Errorf("register plugins: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Service{
		registry: reg,
		engine: engine.New(engine.Config{
			Concurrency: opts.Concurrency,
			Logger:      logger,
		}),
		logger: logger,
	}, nil
}

// Registry returns the registered rules.
func (s *Service) Registry() *engine.Registry {
	return s.registry
}

// Plan resolves the recommended objects followed by configs.
func (s *Service) Plan(configs []rule.ConfigObject) (*engine.Plan, error) {
	objects := append(s.registry.Recommended(), configs...)
	return engine.BuildPlan(s.registry, objects)
}

// Lint runs every enabled rule over req.Root. Config and ingest problems are
// returned as errors before any rule runs; rule failures are part of the report.
func (s *Service) Lint(ctx context.Context, req Request) (*Report, error) {
	plan, err := s.Plan(req.Configs)
	if err != nil {
		return nil, err
	}

	root, err := Scan(ctx, req.Root, plan.GlobalIgnores)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("scanned tree", "root", root.Path(), "files", len(fstree.AllFiles(root)), "rules", len(plan.Rules))

	res, err := s.engine.Run(ctx, root, plan)
	if err != nil {
		return nil, err
	}

	buckets := make([][]rule.FullDiagnostic, len(res.Buckets))
	for i, b := range res.Buckets {
		buckets[i] = b.Diagnostics
	}

	return &Report{
		Root:     root.Path(),
		Rules:    plan.RuleNames(),
		Summary:  aggregate.Aggregate(buckets, req.MaxShown),
		Failures: res.Failures,
	}, nil
}

// Failed reports whether the run should exit non-zero: any error, any rule
// failure, or any warning when failOnWarnings is set.
func (r *Report) Failed(failOnWarnings bool) bool {
	if r.Summary.Errors > 0 || len(r.Failures) > 0 {
		return true
	}
	return failOnWarnings && r.Summary.Warnings > 0
}

// Scan reads root into a tree, skipping the ignored globs. Errors are
// issue.KindIngest.
func Scan(ctx context.Context, root string, ignores []string) (*fstree.Folder, error) {
	tree, err := fstree.Scan(ctx, root, fstree.ScanOptions{Ignore: ignores})
	if err == nil {
		return tree, nil
	}

	builder := issue.NewErrorContext().
		WithKind(issue.KindIngest).
		WithOperation("scan folder").
		WithResource(root)
	switch {
	case errors.Is(err, fstree.ErrRootNotFound):
		builder = builder.
			WithSuggestion("Check the path passed to steiger").
			WithSuggestion(fmt.Sprintf("Without a path steiger lints ./%s when it exists, else the current folder", DefaultSourceDir))
	case errors.Is(err, fstree.ErrRootNotFolder):
		builder = builder.WithSuggestion("Pass the folder that contains your layers, not a file")
	case errors.Is(err, os.ErrPermission):
		builder = builder.WithSuggestion("Check the read permissions of the folder")
	}
	return nil, builder.Wrap(err).BuildError()
}

// DefaultRoot returns dir/src when it is a folder, otherwise dir.
func DefaultRoot(dir string) string {
	candidate := filepath.Join(dir, DefaultSourceDir)
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate
	}
	return dir
}
