// SPDX-License-Identifier: MPL-2.0

package fsdplugin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/steigerlint/steiger/internal/imports"
	"github.com/steigerlint/steiger/pkg/fsd"
	"github.com/steigerlint/steiger/pkg/fstree"
	"github.com/steigerlint/steiger/pkg/rule"
)

// importEdge is one resolved import between two places of the architecture.
type importEdge struct {
	file     string
	line     int
	spec     string
	target   string
	from, to fsd.Location
}

// collectImports resolves every import of every source file under a known
// layer. Unresolvable imports and files that do not exist on disk are
// skipped.
func collectImports(ctx context.Context, in rule.Input) ([]importEdge, error) {
	if in.Source == nil {
		return nil, nil
	}

	var edges []importEdge
	for _, file := range fstree.AllFiles(in.Root) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !imports.IsSourceFile(file.Path()) {
			continue
		}
		from, ok := fsd.Locate(in.Root, file.Path())
		if !ok {
			continue
		}

		src, err := in.Source.ReadFile(file.Path())
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file.Path(), err)
		}

		for _, imp := range imports.Extract(src) {
			target, ok := in.Source.ResolveImport(imp.Specifier, file.Path())
			if !ok {
				continue
			}
			to, ok := fsd.Locate(in.Root, target)
			if !ok {
				continue
			}
			edges = append(edges, importEdge{
				file:   file.Path(),
				line:   imp.Line,
				spec:   imp.Specifier,
				target: target,
				from:   from,
				to:     to,
			})
		}
	}
	return edges, nil
}

func (e importEdge) diagnostic(message string) rule.Diagnostic {
	return rule.Diagnostic{
		Message:  message,
		Location: rule.Location{Path: e.file, Line: e.line},
	}
}

func checkForbiddenImports(ctx context.Context, in rule.Input) ([]rule.Diagnostic, error) {
	crossImports, err := in.BoolOption("crossImports", true)
	if err != nil {
		return nil, err
	}
	edges, err := collectImports(ctx, in)
	if err != nil {
		return nil, err
	}

	var out []rule.Diagnostic
	for _, e := range edges {
		fromIdx, toIdx := fsd.LayerIndex(e.from.Layer), fsd.LayerIndex(e.to.Layer)
		switch {
		case toIdx > fromIdx:
			out = append(out, e.diagnostic(fmt.Sprintf(
				"Forbidden import from higher layer %q", e.to.Layer)))
		case crossImports && isCrossImport(e):
			out = append(out, e.diagnostic(fmt.Sprintf(
				"Forbidden cross-import from slice %q. Import through %s/%s/%s instead",
				e.to.Slice, e.to.Slice, fsd.CrossImportPublicAPI, sliceNameOf(e.from))))
		}
	}
	return out, nil
}

// isCrossImport reports an import between two slices of the same layer that
// does not go through the target's @x public API.
func isCrossImport(e importEdge) bool {
	if e.from.Layer != e.to.Layer || !fsd.IsSliced(e.to.Layer) {
		return false
	}
	if e.from.Slice == "" || e.to.Slice == "" || e.from.Slice == e.to.Slice {
		return false
	}
	return e.to.Segment != fsd.CrossImportPublicAPI
}

func checkNoPublicAPISidestep(ctx context.Context, in rule.Input) ([]rule.Diagnostic, error) {
	edges, err := collectImports(ctx, in)
	if err != nil {
		return nil, err
	}

	var out []rule.Diagnostic
	for _, e := range edges {
		if fsd.IsSliced(e.to.Layer) {
			if e.to.Slice == "" || sameSlice(e.from, e.to) {
				continue
			}
			if e.to.Segment == "" || e.to.Segment == fsd.CrossImportPublicAPI {
				continue
			}
			out = append(out, e.diagnostic(fmt.Sprintf(
				"Forbidden sidestep of public API when importing from %q", e.to.Layer+"/"+e.to.Slice)))
			continue
		}

		if e.to.Segment == "" || (e.from.Layer == e.to.Layer && e.from.Segment == e.to.Segment) {
			continue
		}
		if !isSegmentEntry(in.Root, e.to, e.target) {
			out = append(out, e.diagnostic(fmt.Sprintf(
				"Forbidden sidestep of public API when importing from %q", e.to.Layer+"/"+e.to.Segment)))
		}
	}
	return out, nil
}

func sameSlice(a, b fsd.Location) bool {
	return a.Layer == b.Layer && a.Slice == b.Slice
}

// isSegmentEntry reports whether target is the public face of its
// unsliced-layer segment: the segment file itself or the index file at the
// top of the segment folder.
func isSegmentEntry(root *fstree.Folder, to fsd.Location, target string) bool {
	layerDir := filepath.Join(root.Path(), to.Layer)
	rel, err := filepath.Rel(layerDir, target)
	if err != nil {
		return false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	switch len(parts) {
	case 1:
		return true
	case 2:
		return fstree.Stem(parts[1]) == fsd.PublicAPIName
	default:
		return false
	}
}

func sliceNameOf(loc fsd.Location) string {
	if loc.Slice == "" {
		return loc.Layer
	}
	return filepath.Base(loc.Slice)
}
