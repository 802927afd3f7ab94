// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/steigerlint/steiger/internal/issue"
	"github.com/steigerlint/steiger/internal/resolver"
	"github.com/steigerlint/steiger/pkg/fstree"
	"github.com/steigerlint/steiger/pkg/rule"
)

// extendsMargin is cache room for project configs outside the tree, such as
// shared tsconfig bases pulled in through "extends".
const extendsMargin = 64

type (
	// Config configures an Engine. The zero value is usable.
	Config struct {
		// Concurrency bounds how many rules run at once. Zero or negative
		// means GOMAXPROCS.
		Concurrency int

		// Logger receives rule failures and timing at debug level. nil
		// discards everything.
		Logger *log.Logger

		// ReadFile backs rule.Source.ReadFile. nil reads from disk.
		ReadFile func(path string) ([]byte, error)

		// ProjectFS is where tsconfig.json files are looked up. nil uses the
		// operating system.
		ProjectFS resolver.FS

		// CacheSize is the minimum capacity of the run-scoped project config
		// cache. Each run grows it to fit the linted tree.
		CacheSize int
	}

	// Engine runs plans.
	Engine struct {
		cfg    Config
		logger *log.Logger
	}

	// Bucket holds the diagnostics of one rule.
	Bucket struct {
		RuleName    string
		Diagnostics []rule.FullDiagnostic
	}

	// RuleFailure records a rule that returned an error or panicked.
	RuleFailure struct {
		RuleName string
		Err      error
		Panicked bool
	}

	// Result is the outcome of a run. Buckets follow plan order and include
	// rules that produced nothing; failed rules have an empty bucket.
	Result struct {
		Buckets  []Bucket
		Failures []RuleFailure
	}
)

// New creates an Engine.
func New(cfg Config) *Engine {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	if cfg.ReadFile == nil {
		cfg.ReadFile = os.ReadFile
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Run checks root against every rule in plan. Globally ignored paths are
// removed from the tree first. A cancelled ctx stops scheduling further
// rules and makes Run return an error; rule failures never do.
func (e *Engine) Run(ctx context.Context, root *fstree.Folder, plan *Plan) (*Result, error) {
	tree := e.filter(root, plan)
	cache, err := resolver.NewCache(max(e.cfg.CacheSize, cacheSizeFor(tree)), e.cfg.ProjectFS)
	if err != nil {
		return nil, fmt.Errorf("create resolver cache: %w", err)
	}
	source := newTreeSource(tree, e.cfg.ReadFile, cache)

	buckets := make([]Bucket, len(plan.Rules))
	failures := make([]*RuleFailure, len(plan.Rules))

	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)
	for i, planned := range plan.Rules {
		buckets[i].RuleName = planned.Rule.Name()
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			diags, failure := e.check(ctx, planned, rule.Input{
				Root:    tree,
				Options: planned.Options,
				Source:  source,
			})
			if failure != nil {
				failures[i] = failure
				return nil
			}
			buckets[i].Diagnostics = stamp(tree.Path(), plan, planned, diags)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, issue.NewErrorContext().
			WithKind(issue.KindRuleExecution).
			WithOperation("run rules").
			WithResource(root.Path()).
			WithSuggestion("Raise --timeout or ignore large generated folders").
			Wrap(err).
			BuildError()
	}

	res := &Result{Buckets: buckets}
	for _, f := range failures {
		if f != nil {
			res.Failures = append(res.Failures, *f)
		}
	}
	return res, nil
}

// check runs one rule, turning errors and panics into a RuleFailure.
func (e *Engine) check(ctx context.Context, planned PlannedRule, in rule.Input) (diags []rule.Diagnostic, failure *RuleFailure) {
	name := planned.Rule.Name()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("rule panicked", "rule", name, "panic", r)
			e.logger.Debug("panic stack", "rule", name, "stack", string(debug.Stack()))
			diags = nil
			failure = &RuleFailure{
				RuleName: name,
				Err:      ruleError(name, fmt.Errorf("panic: %v", r)),
				Panicked: true,
			}
		}
	}()

	diags, err := planned.Rule.Check(ctx, in)
	if err != nil {
		e.logger.Warn("rule failed", "rule", name, "err", err)
		return nil, &RuleFailure{RuleName: name, Err: ruleError(name, err)}
	}
	e.logger.Debug("rule finished", "rule", name, "diagnostics", len(diags), "took", time.Since(start))
	return diags, nil
}

// cacheSizeFor sizes the resolver cache so nothing is evicted during a run.
// Lookups are keyed by folder: every folder of the tree, every ancestor of
// the root, and a margin for configs reached through "extends".
func cacheSizeFor(tree *fstree.Folder) int {
	folders := 0
	_ = fstree.Walk(tree, func(n fstree.Node) error {
		if _, ok := n.(*fstree.Folder); ok {
			folders++
		}
		return nil
	})
	ancestors := len(strings.Split(filepath.ToSlash(filepath.Clean(tree.Path())), "/"))
	return folders + ancestors + extendsMargin
}

func (e *Engine) filter(root *fstree.Folder, plan *Plan) *fstree.Folder {
	if len(plan.GlobalIgnores) == 0 {
		return root
	}
	return fstree.Filter(root, func(n fstree.Node) bool {
		return !plan.Ignored(relSlash(root.Path(), n.Path()))
	})
}

// stamp promotes diagnostics to full ones with the severity in force at
// their location, dropping those that end up off or globally ignored.
func stamp(rootPath string, plan *Plan, planned PlannedRule, diags []rule.Diagnostic) []rule.FullDiagnostic {
	out := make([]rule.FullDiagnostic, 0, len(diags))
	for _, d := range diags {
		rel := relSlash(rootPath, d.Location.Path)
		if plan.Ignored(rel) {
			continue
		}
		sev := planned.SeverityAt(rel)
		if sev == rule.SeverityOff {
			continue
		}
		out = append(out, d.Stamp(planned.Rule.Name(), sev, planned.DescriptionURL))
	}
	return out
}

func ruleError(name string, cause error) error {
	return issue.NewErrorContext().
		WithKind(issue.KindRuleExecution).
		WithOperation("run rule").
		WithResource(name).
		WithSuggestion(fmt.Sprintf("Turn %s off in your config until it is fixed", name)).
		Wrap(cause).
		BuildError()
}

// relSlash returns p relative to root in slash form; "." for root itself.
func relSlash(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
