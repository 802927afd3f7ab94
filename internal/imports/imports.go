// SPDX-License-Identifier: MPL-2.0

// Package imports extracts module specifiers from JavaScript and TypeScript
// source text. It understands static imports and re-exports, side-effect
// imports, dynamic import() calls and require() calls. Comments are skipped;
// template literals with substitutions are not specifiers and are ignored.
package imports

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// Kinds of import statements.
const (
	KindStatic Kind = iota
	KindExport
	KindSideEffect
	KindDynamic
	KindRequire
)

type (
	// Kind tells how a specifier was referenced.
	Kind int

	// Import is one specifier found in a source file.
	Import struct {
		Specifier string
		Kind      Kind
		// TypeOnly marks `import type` and `export type` statements.
		TypeOnly bool
		// Line is 1-based.
		Line int
	}
)

var (
	sourceExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts", ".vue", ".svelte"}

	staticImport = regexp.MustCompile(`(?m)\bimport\s+(type\s+)?(?:[\w$*{}\s,]+?)\s+from\s*(['"])([^'"\n]+)['"]`)
	reExport     = regexp.MustCompile(`(?m)\bexport\s+(type\s+)?(?:\*(?:\s+as\s+[\w$]+)?|\{[^}]*\})\s*from\s*(['"])([^'"\n]+)['"]`)
	sideEffect   = regexp.MustCompile(`(?m)\bimport\s*(['"])([^'"\n]+)['"]`)
	dynamic      = regexp.MustCompile(`\bimport\s*\(\s*(['"\x60])([^'"\x60\n]+)['"\x60]\s*\)`)
	require      = regexp.MustCompile(`\brequire\s*\(\s*(['"\x60])([^'"\x60\n]+)['"\x60]\s*\)`)
)

// IsSourceFile reports whether path has an extension imports are read from.
func IsSourceFile(path string) bool {
	return slices.Contains(sourceExtensions, strings.ToLower(filepath.Ext(path)))
}

// Extract returns the specifiers referenced by src in source order.
func Extract(src []byte) []Import {
	text := blankComments(src)

	var found []Import
	add := func(loc []int, kind Kind, typeOnly bool, specStart, specEnd int) {
		spec := text[specStart:specEnd]
		if kind == KindDynamic || kind == KindRequire {
			if strings.Contains(spec, "${") {
				return
			}
		}
		found = append(found, Import{
			Specifier: spec,
			Kind:      kind,
			TypeOnly:  typeOnly,
			Line:      1 + strings.Count(text[:loc[0]], "\n"),
		})
	}

	for _, m := range staticImport.FindAllStringSubmatchIndex(text, -1) {
		add(m, KindStatic, m[2] >= 0, m[6], m[7])
	}
	for _, m := range reExport.FindAllStringSubmatchIndex(text, -1) {
		add(m, KindExport, m[2] >= 0, m[6], m[7])
	}
	for _, m := range sideEffect.FindAllStringSubmatchIndex(text, -1) {
		add(m, KindSideEffect, false, m[4], m[5])
	}
	for _, m := range dynamic.FindAllStringSubmatchIndex(text, -1) {
		add(m, KindDynamic, false, m[4], m[5])
	}
	for _, m := range require.FindAllStringSubmatchIndex(text, -1) {
		add(m, KindRequire, false, m[4], m[5])
	}

	slices.SortStableFunc(found, func(a, b Import) int { return a.Line - b.Line })
	return found
}

// Specifiers returns the distinct specifiers of Extract in first-seen order.
func Specifiers(src []byte) []string {
	seen := map[string]bool{}
	var out []string
	for _, imp := range Extract(src) {
		if !seen[imp.Specifier] {
			seen[imp.Specifier] = true
			out = append(out, imp.Specifier)
		}
	}
	return out
}

// blankComments replaces // and /* */ comments with spaces, keeping newlines
// so line numbers survive. String and template literals are left alone.
func blankComments(src []byte) string {
	out := make([]byte, len(src))
	copy(out, src)

	var quote byte
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote || (c == '\n' && quote != '`') {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '/' && i+1 < len(out) && out[i+1] == '/':
			for ; i < len(out) && out[i] != '\n'; i++ {
				out[i] = ' '
			}
		case c == '/' && i+1 < len(out) && out[i+1] == '*':
			out[i], out[i+1] = ' ', ' '
			i += 2
			for ; i < len(out); i++ {
				if out[i] == '*' && i+1 < len(out) && out[i+1] == '/' {
					out[i], out[i+1] = ' ', ' '
					i++
					break
				}
				if out[i] != '\n' {
					out[i] = ' '
				}
			}
		}
	}
	return string(out)
}
