// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/steigerlint/steiger/internal/app/lint"
	"github.com/steigerlint/steiger/pkg/rule"
)

// Palette shared with the CLI styles.
const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorSuccess   = lipgloss.Color("#10B981")
	colorError     = lipgloss.Color("#EF4444")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorHighlight = lipgloss.Color("#3B82F6")
)

const (
	glyphError   = "✘"
	glyphWarning = "⚠"
	glyphSuccess = "✔"
	glyphFix     = "→"
)

type styles struct {
	path    lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	success lipgloss.Style
	rule    lipgloss.Style
	link    lipgloss.Style
	muted   lipgloss.Style
}

// newStyles binds the palette to w so that colors are dropped when w is not a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		path:    r.NewStyle().Bold(true).Underline(true),
		err:     r.NewStyle().Bold(true).Foreground(colorError),
		warn:    r.NewStyle().Foreground(colorWarning),
		success: r.NewStyle().Foreground(colorSuccess),
		rule:    r.NewStyle().Foreground(colorPrimary),
		link:    r.NewStyle().Foreground(colorHighlight),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}

// Pretty writes the shown diagnostics grouped by path, followed by a summary
// of the counts, the hidden diagnostics and any rule that failed to run.
func Pretty(w io.Writer, r *lint.Report) error {
	st := newStyles(w)
	var sb strings.Builder

	for _, group := range groupByPath(r.Summary.Diagnostics) {
		sb.WriteString(st.path.Render(relPath(r.Root, group.path)))
		sb.WriteString("\n")
		for _, d := range group.diagnostics {
			writeDiagnostic(&sb, st, r.Root, d)
		}
		sb.WriteString("\n")
	}

	writeSummary(&sb, st, r)

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeDiagnostic(sb *strings.Builder, st styles, root string, d rule.FullDiagnostic) {
	glyph := st.warn.Render(glyphWarning)
	if d.Severity == rule.SeverityError {
		glyph = st.err.Render(glyphError)
	}

	sb.WriteString("  ")
	sb.WriteString(glyph)
	sb.WriteString(" ")
	if d.Location.Line > 0 {
		pos := fmt.Sprintf("%d", d.Location.Line)
		if d.Location.Column > 0 {
			pos += fmt.Sprintf(":%d", d.Location.Column)
		}
		sb.WriteString(st.muted.Render(pos))
		sb.WriteString(" ")
	}
	sb.WriteString(d.Message)
	sb.WriteString("  ")
	sb.WriteString(st.rule.Render(d.RuleName))
	sb.WriteString("\n")

	for _, fix := range d.Fixes {
		sb.WriteString("    ")
		sb.WriteString(st.success.Render(glyphFix))
		sb.WriteString(" ")
		sb.WriteString(describeFix(root, fix))
		sb.WriteString("\n")
	}
	if d.RuleDescriptionURL != "" {
		sb.WriteString("    ")
		sb.WriteString(st.link.Render(d.RuleDescriptionURL))
		sb.WriteString("\n")
	}
}

func writeSummary(sb *strings.Builder, st styles, r *lint.Report) {
	s := r.Summary
	total := s.Errors + s.Warnings

	switch {
	case total == 0:
		sb.WriteString(st.success.Render(glyphSuccess + " No problems found"))
	case s.Errors > 0:
		sb.WriteString(st.err.Render(fmt.Sprintf("%s %s (%s, %s)", glyphError,
			plural(total, "problem"), plural(s.Errors, "error"), plural(s.Warnings, "warning"))))
	default:
		sb.WriteString(st.warn.Render(fmt.Sprintf("%s %s (%s, %s)", glyphWarning,
			plural(total, "problem"), plural(s.Errors, "error"), plural(s.Warnings, "warning"))))
	}
	sb.WriteString("\n")

	if s.Hidden > 0 {
		sb.WriteString(st.muted.Render(fmt.Sprintf("  %d more hidden; raise --max-shown or set it to 0 to see everything", s.Hidden)))
		sb.WriteString("\n")
	}

	for _, f := range r.Failures {
		kind := "failed"
		if f.Panicked {
			kind = "panicked"
		}
		sb.WriteString(st.err.Render(fmt.Sprintf("%s rule %s %s:", glyphError, f.RuleName, kind)))
		sb.WriteString(" ")
		sb.WriteString(f.Err.Error())
		sb.WriteString("\n")
	}
}

type pathGroup struct {
	path        string
	diagnostics []rule.FullDiagnostic
}

// groupByPath groups diagnostics by location path in order of first appearance.
func groupByPath(ds []rule.FullDiagnostic) []pathGroup {
	var groups []pathGroup
	index := map[string]int{}
	for _, d := range ds {
		i, ok := index[d.Location.Path]
		if !ok {
			i = len(groups)
			index[d.Location.Path] = i
			groups = append(groups, pathGroup{path: d.Location.Path})
		}
		groups[i].diagnostics = append(groups[i].diagnostics, d)
	}
	return groups
}

func describeFix(root string, fix rule.Fix) string {
	target := relPath(root, fix.Target())
	switch f := fix.(type) {
	case rule.Rename:
		return fmt.Sprintf("rename %s to %s", target, f.NewName)
	case rule.CreateFile:
		return "create file " + target
	case rule.CreateFolder:
		return "create folder " + target
	case rule.Delete:
		return "delete " + target
	case rule.ModifyFile:
		return "modify file " + target
	default:
		return fix.Describe()
	}
}

// relPath shows p relative to root in slash form when it lies inside root.
func relPath(root, p string) string {
	if root == "" {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
