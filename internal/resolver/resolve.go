// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
)

// Extensions are probed in this order when a specifier has none.
var Extensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".vue", ".svelte"}

type (
	// ProjectConfig is the part of a tsconfig.json that affects resolution,
	// with every path made absolute.
	ProjectConfig struct {
		// Path of the config file the values were read from.
		Path string
		// BaseURL is empty when the config does not set one.
		BaseURL string
		// Paths maps specifier patterns to target patterns. Each may hold one
		// "*" wildcard.
		Paths map[string][]string
		// PathsBase is the folder relative targets in Paths resolve against:
		// BaseURL when set, else the folder of the config that declared Paths.
		PathsBase string
	}

	// ExistsFunc reports whether a path exists as a file (or as a folder).
	ExistsFunc func(path string) bool
)

// ResolveImport resolves specifier as written in fromFile. It returns false
// for anything it cannot map to an existing file: package imports, missing
// targets and paths outside the known tree alike.
func ResolveImport(specifier, fromFile string, cfg *ProjectConfig, fileExists, dirExists ExistsFunc) (string, bool) {
	if specifier == "" {
		return "", false
	}

	if isRelative(specifier) {
		return probe(filepath.Join(filepath.Dir(fromFile), specifier), fileExists, dirExists)
	}
	if filepath.IsAbs(specifier) {
		return probe(filepath.Clean(specifier), fileExists, dirExists)
	}
	if cfg == nil {
		return "", false
	}

	for _, m := range matchPaths(specifier, cfg.Paths) {
		for _, target := range cfg.Paths[m.pattern] {
			candidate := strings.Replace(target, "*", m.captured, 1)
			if !filepath.IsAbs(candidate) {
				candidate = filepath.Join(cfg.PathsBase, candidate)
			}
			if resolved, ok := probe(candidate, fileExists, dirExists); ok {
				return resolved, true
			}
		}
	}

	if cfg.BaseURL != "" {
		return probe(filepath.Join(cfg.BaseURL, specifier), fileExists, dirExists)
	}
	return "", false
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// probe tries path as a file, then with each extension, then as a folder
// holding an index file.
func probe(path string, fileExists, dirExists ExistsFunc) (string, bool) {
	if fileExists(path) {
		return path, true
	}
	for _, ext := range Extensions {
		if fileExists(path + ext) {
			return path + ext, true
		}
	}
	if dirExists(path) {
		for _, ext := range Extensions {
			index := filepath.Join(path, "index"+ext)
			if fileExists(index) {
				return index, true
			}
		}
	}
	return "", false
}

type pathMatch struct {
	pattern  string
	prefix   int
	captured string
}

// matchPaths returns the patterns matching specifier, exact patterns first
// and then wildcards by descending prefix length.
func matchPaths(specifier string, paths map[string][]string) []pathMatch {
	var matches []pathMatch
	for pattern := range paths {
		before, after, wildcard := strings.Cut(pattern, "*")
		if !wildcard {
			if pattern == specifier {
				matches = append(matches, pathMatch{pattern: pattern, prefix: len(pattern) + 1})
			}
			continue
		}
		if len(specifier) < len(before)+len(after) ||
			!strings.HasPrefix(specifier, before) || !strings.HasSuffix(specifier, after) {
			continue
		}
		matches = append(matches, pathMatch{
			pattern:  pattern,
			prefix:   len(before),
			captured: specifier[len(before) : len(specifier)-len(after)],
		})
	}
	slices.SortFunc(matches, func(a, b pathMatch) int {
		if c := cmp.Compare(b.prefix, a.prefix); c != 0 {
			return c
		}
		return cmp.Compare(a.pattern, b.pattern)
	})
	return matches
}
