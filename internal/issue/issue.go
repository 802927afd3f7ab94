// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	RootNotFoundId Id = iota + 1
	TreeDescriptionMalformedId
	ConfigLoadFailedId
	UnknownRuleId
	InvalidSeverityId
	RuleExecutionFailedId
	LintTimeoutId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	kind     Kind        // error kind the issue explains
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Kind() Kind {
	return i.kind
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the issue with glamour. An empty stylePath selects the
// terminal-detected style.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	if stylePath == "" {
		stylePath = "auto"
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	rootNotFoundIssue = &Issue{
		id:   RootNotFoundId,
		kind: KindIngest,
		mdMsg: `
# Nothing to lint!

The path given to steiger does not exist or is not a folder.

## Things you can try:
- Pass the folder that holds your layers (usually ` + "`src`" + `):
~~~
$ steiger ./src
~~~
- Run steiger from the project root; it picks ` + "`./src`" + ` when it exists.`,
	}

	treeDescriptionMalformedIssue = &Issue{
		id:   TreeDescriptionMalformedId,
		kind: KindIngest,
		mdMsg: `
# Malformed tree description!

Each line of a tree description is one entry, indented by two spaces per level:

~~~
📂 shared
  📂 ui
    📄 index.ts
📂 entities
  📂 user
    📂 @x
    📄 index.ts
~~~

## Common causes:
- A line without a 📂 or 📄 glyph
- An indentation jump of more than one level
- An entry nested under a file`,
	}

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		kind: KindConfig,
		mdMsg: `
# Failed to load configuration!

steiger reads ` + "`steiger.config.cue`" + `, ` + "`steiger.config.toml`" + ` or
` + "`steiger.config.yaml`" + ` from the project root. The file did not parse or did
not match the expected schema.

## Example configuration:
~~~cue
max_shown: 20
configs: [
	{rules: {"fsd/no-processes": "off"}},
	{
		files: ["./src/shared/**"]
		rules: {"fsd/public-api": ["warn", {}]}
	},
	{ignores: ["**/__mocks__/**"]},
]
~~~`,
	}

	unknownRuleIssue = &Issue{
		id:   UnknownRuleId,
		kind: KindConfig,
		mdMsg: `
# Unknown rule!

A configuration object mentions a rule that no plugin provides.

## Things you can try:
- List the available rules:
~~~
$ steiger rules
~~~
- Rule names carry their plugin prefix, e.g. ` + "`fsd/public-api`" + `.`,
	}

	invalidSeverityIssue = &Issue{
		id:   InvalidSeverityId,
		kind: KindConfig,
		mdMsg: `
# Invalid severity!

A rule entry is either a severity or a ` + "`[severity, options]`" + ` pair, and the
severity is one of ` + "`off`" + `, ` + "`warn`" + ` or ` + "`error`" + `.`,
	}

	ruleExecutionFailedIssue = &Issue{
		id:   RuleExecutionFailedId,
		kind: KindRuleExecution,
		mdMsg: `
# A rule failed to run!

One of the rules returned an error or crashed. Its diagnostics are missing from
this report; every other rule ran normally.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see the failure in the log
- Check the rule's options in your configuration
- Turn the rule off while the problem is investigated:
~~~cue
configs: [{rules: {"fsd/<rule>": "off"}}]
~~~`,
	}

	lintTimeoutIssue = &Issue{
		id:   LintTimeoutId,
		kind: KindRuleExecution,
		mdMsg: `
# Linting timed out!

The run was cancelled before every rule finished.

## Things you can try:
- Raise the limit with ` + "`--timeout`" + `
- Add large generated folders to ` + "`ignores`" + ``,
	}

	permissionDeniedIssue = &Issue{
		id:   PermissionDeniedId,
		kind: KindIngest,
		mdMsg: `
# Permission denied!

steiger could not read part of the project tree.

## Things you can try:
- Check file and folder permissions under the lint root
- Ignore the folder in your configuration`,
	}

	issues = map[Id]*Issue{
		rootNotFoundIssue.Id():             rootNotFoundIssue,
		treeDescriptionMalformedIssue.Id(): treeDescriptionMalformedIssue,
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		unknownRuleIssue.Id():              unknownRuleIssue,
		invalidSeverityIssue.Id():          invalidSeverityIssue,
		ruleExecutionFailedIssue.Id():      ruleExecutionFailedIssue,
		lintTimeoutIssue.Id():              lintTimeoutIssue,
		permissionDeniedIssue.Id():         permissionDeniedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
