// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/steigerlint/steiger/internal/issue"
	"github.com/steigerlint/steiger/pkg/rule"
)

// ErrUnknownRule is returned by BuildPlan for rule names no plugin provides.
var ErrUnknownRule = errors.New("unknown rule")

type (
	// Plan is the resolved configuration of one run.
	Plan struct {
		// Rules are the enabled rules in registration order.
		Rules []PlannedRule
		// GlobalIgnores are globs, relative to the lint root, of paths removed
		// from the tree before any rule runs.
		GlobalIgnores []string
	}

	// PlannedRule is a rule with every config entry that mentions it.
	PlannedRule struct {
		Rule           rule.Rule
		DescriptionURL string
		// Options come from the last entry that sets any.
		Options map[string]any
		// Entries are in config order; the last one whose scope matches a
		// path decides the severity there.
		Entries []ScopedEntry
	}

	// ScopedEntry is one config object's setting for a rule.
	ScopedEntry struct {
		Severity rule.Severity
		Files    []string
		Ignores  []string
	}
)

// BuildPlan validates objects against the registry and resolves them, later
// objects overriding earlier ones. Errors are issue.KindConfig.
func BuildPlan(reg *Registry, objects []rule.ConfigObject) (*Plan, error) {
	type acc struct {
		index   int
		options map[string]any
		entries []ScopedEntry
	}
	byRule := map[string]*acc{}
	plan := &Plan{}

	for i, obj := range objects {
		files := normalizePatterns(obj.Files)
		ignores := normalizePatterns(obj.Ignores)
		if err := validatePatterns(i, "files", files); err != nil {
			return nil, err
		}
		if err := validatePatterns(i, "ignores", ignores); err != nil {
			return nil, err
		}

		if obj.IsGlobalIgnore() {
			plan.GlobalIgnores = append(plan.GlobalIgnores, ignores...)
			continue
		}

		names := make([]string, 0, len(obj.Rules))
		for name := range obj.Rules {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			entry := obj.Rules[name]
			if _, ok := reg.Lookup(name); !ok {
				return nil, configError(i, name, fmt.Errorf("%w %q", ErrUnknownRule, name),
					"Run 'steiger rules' to list the available rules")
			}
			if err := entry.Severity.Validate(); err != nil {
				return nil, configError(i, name, err, "Use one of: off, warn, error")
			}

			a, ok := byRule[name]
			if !ok {
				a = &acc{index: reg.index(name)}
				byRule[name] = a
			}
			if entry.Options != nil {
				a.options = entry.Options
			}
			a.entries = append(a.entries, ScopedEntry{
				Severity: entry.Severity,
				Files:    files,
				Ignores:  ignores,
			})
		}
	}

	accs := make([]*acc, 0, len(byRule))
	for _, a := range byRule {
		// An unscoped entry covers every path, so nothing before it can apply.
		for i := len(a.entries) - 1; i >= 0; i-- {
			if a.entries[i].unscoped() {
				a.entries = a.entries[i:]
				break
			}
		}
		if slices.ContainsFunc(a.entries, func(e ScopedEntry) bool { return e.Severity != rule.SeverityOff }) {
			accs = append(accs, a)
		}
	}
	slices.SortFunc(accs, func(a, b *acc) int { return a.index - b.index })

	for _, a := range accs {
		rl := reg.entries[a.index]
		plan.Rules = append(plan.Rules, PlannedRule{
			Rule:           rl.rule,
			DescriptionURL: rl.docsURL,
			Options:        a.options,
			Entries:        a.entries,
		})
	}
	return plan, nil
}

// SeverityAt returns the severity of the rule for a path relative to the
// lint root, in slash form. Paths no entry covers are off.
func (p PlannedRule) SeverityAt(rel string) rule.Severity {
	for i := len(p.Entries) - 1; i >= 0; i-- {
		if p.Entries[i].covers(rel) {
			return p.Entries[i].Severity
		}
	}
	return rule.SeverityOff
}

// Ignored reports whether a root-relative slash path is globally ignored.
func (p *Plan) Ignored(rel string) bool {
	return matchAny(p.GlobalIgnores, rel)
}

// RuleNames lists the planned rules in order.
func (p *Plan) RuleNames() []string {
	out := make([]string, len(p.Rules))
	for i, r := range p.Rules {
		out[i] = r.Rule.Name()
	}
	return out
}

func (e ScopedEntry) unscoped() bool {
	return len(e.Files) == 0 && len(e.Ignores) == 0
}

func (e ScopedEntry) covers(rel string) bool {
	if len(e.Files) > 0 && !matchAny(e.Files, rel) {
		return false
	}
	return !matchAny(e.Ignores, rel)
}

// matchAny matches rel against patterns. Folders also match patterns that
// select their contents ("shared/**" matches "shared").
func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel+"/"); ok {
			return true
		}
	}
	return false
}

func normalizePatterns(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	out := make([]string, len(patterns))
	for i, p := range patterns {
		p = filepath.ToSlash(p)
		for strings.HasPrefix(p, "./") {
			p = p[2:]
		}
		out[i] = strings.TrimPrefix(p, "/")
	}
	return out
}

func validatePatterns(obj int, field string, patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return issue.NewErrorContext().
				WithKind(issue.KindConfig).
				WithOperation("build plan").
				WithResource(fmt.Sprintf("configs[%d].%s", obj, field)).
				WithSuggestion("Check the glob syntax; patterns use doublestar rules").
				Wrap(fmt.Errorf("invalid pattern %q", p)).
				BuildError()
		}
	}
	return nil
}

func configError(obj int, ruleName string, cause error, suggestion string) error {
	return issue.NewErrorContext().
		WithKind(issue.KindConfig).
		WithOperation("build plan").
		WithResource(fmt.Sprintf("configs[%d].rules[%q]", obj, ruleName)).
		WithSuggestion(suggestion).
		Wrap(cause).
		BuildError()
}
