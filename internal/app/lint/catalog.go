// SPDX-License-Identifier: MPL-2.0

package lint

import (
	"github.com/steigerlint/steiger/pkg/rule"
)

// RuleInfo describes a registered rule under a given configuration.
type RuleInfo struct {
	Name   string `json:"name"`
	Plugin string `json:"plugin"`
	// Severity applies to paths no scoped entry covers.
	Severity rule.Severity `json:"severity"`
	// Scoped is set when some config entry limits the rule to a subset of
	// files, so Severity does not hold everywhere.
	Scoped  bool   `json:"scoped,omitempty"`
	DocsURL string `json:"docsUrl,omitempty"`
	Docs    string `json:"-"`
}

// Catalog lists every registered rule, in registration order, with the
// severity configs give it.
func (s *Service) Catalog(configs []rule.ConfigObject) ([]RuleInfo, error) {
	plan, err := s.Plan(configs)
	if err != nil {
		return nil, err
	}

	entries := make(map[string][]rule.Severity, len(plan.Rules))
	scoped := make(map[string]bool)
	for _, pr := range plan.Rules {
		name := pr.Rule.Name()
		for _, e := range pr.Entries {
			if len(e.Files) > 0 || len(e.Ignores) > 0 {
				scoped[name] = true
				continue
			}
			entries[name] = append(entries[name], e.Severity)
		}
	}

	rules := s.registry.Rules()
	out := make([]RuleInfo, 0, len(rules))
	for _, r := range rules {
		name := r.Name()
		info := RuleInfo{
			Name:     name,
			Plugin:   s.registry.PluginOf(name),
			Severity: rule.SeverityOff,
			Scoped:   scoped[name],
			DocsURL:  s.registry.DocsURL(name),
		}
		if sev := entries[name]; len(sev) > 0 {
			info.Severity = sev[len(sev)-1]
		}
		if d, ok := r.(rule.Documented); ok {
			info.Docs = d.Docs()
		}
		out = append(out, info)
	}
	return out, nil
}

// Describe returns the catalog entry of one rule.
func (s *Service) Describe(name string, configs []rule.ConfigObject) (RuleInfo, bool, error) {
	catalog, err := s.Catalog(configs)
	if err != nil {
		return RuleInfo{}, false, err
	}
	for _, info := range catalog {
		if info.Name == name || rule.ShortName(info.Name) == name {
			return info, true, nil
		}
	}
	return RuleInfo{}, false, nil
}
