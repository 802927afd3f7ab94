// SPDX-License-Identifier: MPL-2.0

package fsdplugin

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/agext/levenshtein"

	"github.com/steigerlint/steiger/pkg/fsd"
	"github.com/steigerlint/steiger/pkg/fstree"
	"github.com/steigerlint/steiger/pkg/rule"
)

const (
	maxTypoDistance  = 2
	defaultMaxSlices = 20
)

// segmentsByEssence are segment names describing what code is rather than
// what it is for.
var segmentsByEssence = []string{"components", "hooks", "helpers", "utils", "types", "modals"}

func checkTypoInLayerName(_ context.Context, in rule.Input) ([]rule.Diagnostic, error) {
	var out []rule.Diagnostic
	for _, folder := range in.Root.Folders() {
		name := folder.Name()
		if fsd.IsLayerName(name) {
			continue
		}
		best, bestDist := "", maxTypoDistance+1
		for _, layer := range fsd.LayerSequence() {
			if d := levenshtein.Distance(name, layer, nil); d < bestDist {
				best, bestDist = layer, d
			}
		}
		if best == "" {
			continue
		}
		out = append(out, rule.At(folder.Path(),
			fmt.Sprintf("Layer %q potentially contains a typo. Did you mean %q?", name, best),
			rule.Rename{Path: folder.Path(), NewName: best},
		))
	}
	return out, nil
}

func checkNoProcesses(_ context.Context, in rule.Input) ([]rule.Diagnostic, error) {
	layer, ok := fsd.Layers(in.Root)[fsd.LayerProcesses]
	if !ok {
		return nil, nil
	}
	return []rule.Diagnostic{
		rule.At(layer.Path(), "Layer \"processes\" is deprecated, avoid using it"),
	}, nil
}

func checkNoLayerPublicAPI(_ context.Context, in rule.Input) ([]rule.Diagnostic, error) {
	var out []rule.Diagnostic
	for _, layer := range fsd.OrderedLayers(in.Root) {
		if !fsd.IsSliced(layer.Name) {
			continue
		}
		for _, index := range fsd.Indexes(layer.Folder) {
			out = append(out, rule.At(index.Path(),
				fmt.Sprintf("Layer %q should not have an index file", layer.Name),
				rule.Delete{Path: index.Path()},
			))
		}
	}
	return out, nil
}

func checkPublicAPI(_ context.Context, in rule.Input) ([]rule.Diagnostic, error) {
	var out []rule.Diagnostic
	missing := func(folder *fstree.Folder, what string) {
		if _, ok := fsd.Index(folder); ok {
			return
		}
		out = append(out, rule.At(folder.Path(),
			fmt.Sprintf("This %s is missing a public API", what),
			rule.CreateFile{Path: filepath.Join(folder.Path(), fsd.PublicAPIName+".ts")},
		))
	}

	for _, layer := range fsd.OrderedLayers(in.Root) {
		if fsd.IsSliced(layer.Name) {
			continue
		}
		for _, folder := range layer.Folder.Folders() {
			if !fsd.IsCrossImportPublicAPI(folder.Name()) {
				missing(folder, "segment")
			}
		}
	}
	for _, slice := range fsd.AllSlices(in.Root) {
		missing(slice.Folder, "slice")
	}
	return out, nil
}

func checkNoSegmentlessSlices(_ context.Context, in rule.Input) ([]rule.Diagnostic, error) {
	var out []rule.Diagnostic
	for _, slice := range fsd.AllSlices(in.Root) {
		segments := fsd.Segments(slice.Folder)
		delete(segments, fsd.CrossImportPublicAPI)
		if len(segments) > 0 {
			continue
		}
		out = append(out, rule.At(slice.Folder.Path(),
			fmt.Sprintf("This slice has no segments. Consider dividing it into %v", fsd.ConventionalSegments())))
	}
	return out, nil
}

func checkNoSegmentsOnSlicedLayers(_ context.Context, in rule.Input) ([]rule.Diagnostic, error) {
	var out []rule.Diagnostic
	for _, layer := range fsd.OrderedLayers(in.Root) {
		if !fsd.IsSliced(layer.Name) {
			continue
		}
		for _, folder := range layer.Folder.Folders() {
			if fsd.IsConventionalSegment(folder.Name()) {
				out = append(out, rule.At(folder.Path(),
					fmt.Sprintf("Conventional segment %q should be inside a slice, not directly on layer %q", folder.Name(), layer.Name)))
			}
		}
	}
	return out, nil
}

func checkSegmentsByPurpose(_ context.Context, in rule.Input) ([]rule.Diagnostic, error) {
	var out []rule.Diagnostic
	for _, segment := range fsd.AllSegments(in.Root) {
		if !slices.Contains(segmentsByEssence, segment.Name) {
			continue
		}
		out = append(out, rule.At(segment.Node.Path(),
			fmt.Sprintf("Segment %q is named by what its code is. Name segments by purpose instead", segment.Name)))
	}
	return out, nil
}

func checkExcessiveSlicing(_ context.Context, in rule.Input) ([]rule.Diagnostic, error) {
	maxSlices, err := in.IntOption("maxSlices", defaultMaxSlices)
	if err != nil {
		return nil, err
	}

	var out []rule.Diagnostic
	for _, layer := range fsd.OrderedLayers(in.Root) {
		if !fsd.IsSliced(layer.Name) {
			continue
		}
		ungrouped := 0
		for _, slice := range fsd.OrderedSlices(layer.Folder) {
			if slice.Group() == "" {
				ungrouped++
			}
		}
		if ungrouped > maxSlices {
			out = append(out, rule.At(layer.Folder.Path(),
				fmt.Sprintf("Layer %q has %d ungrouped slices, which is above the recommended %d. Consider grouping them or moving code to a lower layer",
					layer.Name, ungrouped, maxSlices)))
		}
	}
	return out, nil
}
