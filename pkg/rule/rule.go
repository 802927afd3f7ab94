// SPDX-License-Identifier: MPL-2.0

package rule

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/steigerlint/steiger/pkg/fstree"
)

type (
	// Rule is a named check over the architecture of a tree. Check must not
	// mutate the tree and must be safe to run concurrently with other rules.
	// Returning an error marks the rule as failed for this run; it never
	// aborts the other rules.
	Rule interface {
		// Name is globally unique, conventionally "<plugin>/<rule>".
		Name() string
		Check(ctx context.Context, in Input) ([]Diagnostic, error)
	}

	// Documented is implemented by rules that carry a Markdown description.
	Documented interface {
		Docs() string
	}

	// Source gives rules read access to file contents and import resolution.
	// Implementations memoize what they can for the duration of one run.
	Source interface {
		ReadFile(path string) ([]byte, error)
		// ResolveImport turns an import specifier written in fromFile into an
		// absolute path. It returns false when the specifier cannot be
		// resolved, which rules treat as "no opinion".
		ResolveImport(specifier, fromFile string) (string, bool)
	}

	// Input is what a rule is checked against.
	Input struct {
		Root    *fstree.Folder
		Options map[string]any
		Source  Source
	}

	// Meta identifies a plugin.
	Meta struct {
		Name    string
		Version string
	}

	// Plugin groups rules with their recommended configuration.
	Plugin struct {
		Meta  Meta
		Rules []Rule
		// Recommended enables the plugin's rules at their default severities.
		Recommended ConfigObject
		// DocsURL builds the description link for one of the plugin's rules.
		// A nil DocsURL yields empty links.
		DocsURL func(ruleName string) string
	}

	// Func adapts a function to the Rule interface.
	Func struct {
		RuleName string
		Doc      string
		Fn       func(ctx context.Context, in Input) ([]Diagnostic, error)
	}
)

// Name implements Rule.
func (f Func) Name() string { return f.RuleName }

// Check implements Rule.
func (f Func) Check(ctx context.Context, in Input) ([]Diagnostic, error) {
	return f.Fn(ctx, in)
}

// Docs implements Documented.
func (f Func) Docs() string { return f.Doc }

// ShortName strips the plugin prefix from a rule name ("fsd/public-api" -> "public-api").
func ShortName(ruleName string) string {
	if i := strings.LastIndex(ruleName, "/"); i >= 0 {
		return ruleName[i+1:]
	}
	return ruleName
}

// IntOption reads an integer option, accepting the numeric types produced by
// CUE, TOML, YAML and JSON decoders. Missing options yield def.
func (in Input) IntOption(key string, def int) (int, error) {
	raw, ok := in.Options[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		if v > math.MaxInt {
			return 0, fmt.Errorf("option %q: %d overflows int", key, v)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("option %q: expected an integer, got %v", key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("option %q: expected an integer, got %T", key, raw)
	}
}

// BoolOption reads a boolean option. Missing options yield def.
func (in Input) BoolOption(key string, def bool) (bool, error) {
	raw, ok := in.Options[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, isBool := raw.(bool)
	if !isBool {
		return false, fmt.Errorf("option %q: expected a boolean, got %T", key, raw)
	}
	return v, nil
}

// StringsOption reads a list-of-strings option. Missing options yield def.
func (in Input) StringsOption(key string, def []string) ([]string, error) {
	raw, ok := in.Options[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, isString := item.(string)
			if !isString {
				return nil, fmt.Errorf("option %q[%d]: expected a string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("option %q: expected a list of strings, got %T", key, raw)
	}
}
