// SPDX-License-Identifier: MPL-2.0

package fsd

import (
	"path/filepath"
	"strings"

	"github.com/steigerlint/steiger/pkg/fstree"
)

// Segment is a direct child of an unsliced layer or of a slice. Slice is
// empty for segments of unsliced layers.
type Segment struct {
	Layer string
	Slice string
	Name  string
	Node  fstree.Node
}

// Segments returns the segments of an unsliced layer or a slice keyed by
// name. Folders are keyed by their name and files by their name without
// extension. The public-API file is not a segment.
func Segments(container *fstree.Folder) map[string]fstree.Node {
	out := make(map[string]fstree.Node)
	eachSegment(container, func(name string, node fstree.Node) {
		if _, seen := out[name]; !seen {
			out[name] = node
		}
	})
	return out
}

// AllSegments returns the segments of every unsliced layer and every slice
// under root, in layer sequence and child order.
func AllSegments(root *fstree.Folder) []Segment {
	var out []Segment
	for _, layer := range OrderedLayers(root) {
		if !IsSliced(layer.Name) {
			eachSegment(layer.Folder, func(name string, node fstree.Node) {
				out = append(out, Segment{Layer: layer.Name, Name: name, Node: node})
			})
			continue
		}
		for _, slice := range OrderedSlices(layer.Folder) {
			eachSegment(slice.Folder, func(name string, node fstree.Node) {
				out = append(out, Segment{Layer: layer.Name, Slice: slice.Key, Name: name, Node: node})
			})
		}
	}
	return out
}

func eachSegment(container *fstree.Folder, visit func(name string, node fstree.Node)) {
	for _, child := range container.Children() {
		switch child := child.(type) {
		case *fstree.File:
			if child.Stem() == PublicAPIName {
				continue
			}
			visit(child.Stem(), child)
		case *fstree.Folder:
			visit(child.Name(), child)
		}
	}
}

// Location places a path inside the architecture model. Fields that do not
// apply are empty: Slice for unsliced layers, Segment for a public-API file
// or for the layer/slice folder itself.
type Location struct {
	Layer   string
	Slice   string
	Segment string

	// SliceFolder is the folder of Slice, nil when Slice is empty.
	SliceFolder *fstree.Folder
}

// Locate finds the layer, slice and segment that own p. It returns false
// when p is outside root or not under a known layer. p may name a file that
// is not part of the tree (an import target, for instance).
func Locate(root *fstree.Folder, p string) (Location, bool) {
	sep := string(filepath.Separator)
	rel, err := filepath.Rel(root.Path(), filepath.Clean(p))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+sep) {
		return Location{}, false
	}

	parts := strings.Split(rel, sep)
	layers := Layers(root)
	layer, ok := layers[parts[0]]
	if !ok {
		return Location{}, false
	}
	loc := Location{Layer: parts[0]}

	if !IsSliced(loc.Layer) {
		if len(parts) > 1 {
			loc.Segment = segmentNameOf(parts[1], len(parts) == 2)
		}
		return loc, true
	}

	slice, found := sliceKeyOf(layer, filepath.Clean(p), sep)
	if !found {
		return loc, true
	}
	loc.Slice = slice.Key
	loc.SliceFolder = slice.Folder

	inner, err := filepath.Rel(slice.Folder.Path(), filepath.Clean(p))
	if err != nil || inner == "." {
		return loc, true
	}
	innerParts := strings.Split(inner, sep)
	loc.Segment = segmentNameOf(innerParts[0], len(innerParts) == 1)
	return loc, true
}

// segmentNameOf derives the segment name from the first path element below a
// segment container. A last element is a file, so its extension is dropped
// and a public-API file yields no segment.
func segmentNameOf(elem string, isLast bool) string {
	if !isLast {
		return elem
	}
	stem := fstree.Stem(elem)
	if stem == PublicAPIName {
		return ""
	}
	return stem
}
