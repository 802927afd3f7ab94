// SPDX-License-Identifier: MPL-2.0

package rule

import (
	"errors"
	"fmt"
	"maps"
)

// ErrInvalidRuleEntry is returned when a rule entry is neither a severity nor
// a [severity, options] pair.
var ErrInvalidRuleEntry = errors.New("invalid rule entry")

type (
	// ConfigObject is one entry of a configuration. Later objects override
	// earlier ones for the rules they mention. Files and Ignores are globs
	// relative to the lint root that scope the object; an object holding only
	// Ignores excludes those paths from linting altogether.
	ConfigObject struct {
		Files   []string
		Ignores []string
		Rules   map[string]RuleEntry
	}

	// RuleEntry configures one rule.
	RuleEntry struct {
		Severity Severity
		Options  map[string]any
	}
)

// IsGlobalIgnore reports whether the object only lists ignores.
func (o ConfigObject) IsGlobalIgnore() bool {
	return len(o.Ignores) > 0 && len(o.Files) == 0 && len(o.Rules) == 0
}

// ParseRuleEntry decodes a rule entry written either as "warn" or as
// ["warn", {option: value}].
func ParseRuleEntry(raw any) (RuleEntry, error) {
	switch v := raw.(type) {
	case string:
		sev, err := ParseSeverity(v)
		if err != nil {
			return RuleEntry{}, err
		}
		return RuleEntry{Severity: sev}, nil
	case Severity:
		if err := v.Validate(); err != nil {
			return RuleEntry{}, err
		}
		return RuleEntry{Severity: v}, nil
	case []any:
		if len(v) == 0 || len(v) > 2 {
			return RuleEntry{}, fmt.Errorf("%w: expected [severity, options], got %d elements", ErrInvalidRuleEntry, len(v))
		}
		s, ok := v[0].(string)
		if !ok {
			return RuleEntry{}, fmt.Errorf("%w: severity must be a string, got %T", ErrInvalidRuleEntry, v[0])
		}
		sev, err := ParseSeverity(s)
		if err != nil {
			return RuleEntry{}, err
		}
		entry := RuleEntry{Severity: sev}
		if len(v) == 2 {
			opts, ok := v[1].(map[string]any)
			if !ok {
				return RuleEntry{}, fmt.Errorf("%w: options must be an object, got %T", ErrInvalidRuleEntry, v[1])
			}
			entry.Options = maps.Clone(opts)
		}
		return entry, nil
	default:
		return RuleEntry{}, fmt.Errorf("%w: unexpected %T", ErrInvalidRuleEntry, raw)
	}
}
