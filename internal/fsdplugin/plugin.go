// SPDX-License-Identifier: MPL-2.0

// Package fsdplugin is the built-in "fsd" plugin: the Feature-Sliced Design
// rule catalog.
package fsdplugin

import (
	"context"
	"embed"
	"strings"

	"github.com/steigerlint/steiger/pkg/rule"
)

const (
	// Name is the plugin name and the prefix of its rule names.
	Name = "fsd"
	// Version is the plugin version.
	Version = "0.3.0"

	docsBaseURL = "https://github.com/steigerlint/steiger/blob/main/internal/fsdplugin/docs/"
)

//go:embed docs/*.md
var docsFS embed.FS

// fsdRule is a catalog entry. short is the name without the plugin prefix.
type fsdRule struct {
	short    string
	severity rule.Severity
	check    func(ctx context.Context, in rule.Input) ([]rule.Diagnostic, error)
}

func (r fsdRule) Name() string { return Name + "/" + r.short }

func (r fsdRule) Check(ctx context.Context, in rule.Input) ([]rule.Diagnostic, error) {
	return r.check(ctx, in)
}

func (r fsdRule) Docs() string {
	data, err := docsFS.ReadFile("docs/" + r.short + ".md")
	if err != nil {
		return ""
	}
	return string(data)
}

func catalog() []fsdRule {
	return []fsdRule{
		{short: "typo-in-layer-name", severity: rule.SeverityError, check: checkTypoInLayerName},
		{short: "no-processes", severity: rule.SeverityWarn, check: checkNoProcesses},
		{short: "no-layer-public-api", severity: rule.SeverityError, check: checkNoLayerPublicAPI},
		{short: "public-api", severity: rule.SeverityError, check: checkPublicAPI},
		{short: "no-segmentless-slices", severity: rule.SeverityError, check: checkNoSegmentlessSlices},
		{short: "no-segments-on-sliced-layers", severity: rule.SeverityError, check: checkNoSegmentsOnSlicedLayers},
		{short: "segments-by-purpose", severity: rule.SeverityWarn, check: checkSegmentsByPurpose},
		{short: "excessive-slicing", severity: rule.SeverityWarn, check: checkExcessiveSlicing},
		{short: "forbidden-imports", severity: rule.SeverityError, check: checkForbiddenImports},
		{short: "no-public-api-sidestep", severity: rule.SeverityError, check: checkNoPublicAPISidestep},
	}
}

// Plugin returns the fsd plugin with every rule enabled in its recommended
// config.
func Plugin() rule.Plugin {
	rules := catalog()
	p := rule.Plugin{
		Meta:        rule.Meta{Name: Name, Version: Version},
		Rules:       make([]rule.Rule, len(rules)),
		Recommended: rule.ConfigObject{Rules: make(map[string]rule.RuleEntry, len(rules))},
		DocsURL:     DocsURL,
	}
	for i, r := range rules {
		p.Rules[i] = r
		p.Recommended.Rules[r.Name()] = rule.RuleEntry{Severity: r.severity}
	}
	return p
}

// DocsURL links a rule to its description.
func DocsURL(ruleName string) string {
	if !strings.HasPrefix(ruleName, Name+"/") {
		return ""
	}
	return docsBaseURL + rule.ShortName(ruleName) + ".md"
}
