// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"slices"

	"github.com/steigerlint/steiger/pkg/rule"
)

type (
	// Registry holds the known rules in registration order.
	Registry struct {
		plugins []rule.Plugin
		entries []registered
		byName  map[string]int
	}

	registered struct {
		rule    rule.Rule
		plugin  string
		docsURL string
	}
)

// NewRegistry creates a registry holding the given plugins.
func NewRegistry(plugins ...rule.Plugin) (*Registry, error) {
	r := &Registry{byName: make(map[string]int)}
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds every rule of p. Rule names must be unique across plugins;
// on a duplicate nothing from p is registered.
func (r *Registry) Register(p rule.Plugin) error {
	seen := make(map[string]bool, len(p.Rules))
	for _, rl := range p.Rules {
		name := rl.Name()
		if name == "" {
			return fmt.Errorf("plugin %s: rule with empty name", p.Meta.Name)
		}
		if _, dup := r.byName[name]; dup || seen[name] {
			return fmt.Errorf("plugin %s: rule %q is already registered", p.Meta.Name, name)
		}
		seen[name] = true
	}

	r.plugins = append(r.plugins, p)
	for _, rl := range p.Rules {
		var url string
		if p.DocsURL != nil {
			url = p.DocsURL(rl.Name())
		}
		r.byName[rl.Name()] = len(r.entries)
		r.entries = append(r.entries, registered{rule: rl, plugin: p.Meta.Name, docsURL: url})
	}
	return nil
}

// Rules returns the registered rules in registration order.
func (r *Registry) Rules() []rule.Rule {
	out := make([]rule.Rule, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.rule
	}
	return out
}

// Lookup returns the rule registered under name.
func (r *Registry) Lookup(name string) (rule.Rule, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].rule, true
}

// DocsURL returns the description link of a registered rule.
func (r *Registry) DocsURL(name string) string {
	if i, ok := r.byName[name]; ok {
		return r.entries[i].docsURL
	}
	return ""
}

// PluginOf returns the name of the plugin that registered a rule.
func (r *Registry) PluginOf(name string) string {
	if i, ok := r.byName[name]; ok {
		return r.entries[i].plugin
	}
	return ""
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []rule.Plugin {
	return slices.Clone(r.plugins)
}

// Recommended returns the recommended config objects of every plugin, in
// registration order. User objects are appended after these.
func (r *Registry) Recommended() []rule.ConfigObject {
	out := make([]rule.ConfigObject, 0, len(r.plugins))
	for _, p := range r.plugins {
		if len(p.Recommended.Rules) > 0 || len(p.Recommended.Ignores) > 0 {
			out = append(out, p.Recommended)
		}
	}
	return out
}

func (r *Registry) index(name string) int {
	return r.byName[name]
}
