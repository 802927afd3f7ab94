// SPDX-License-Identifier: MPL-2.0

package fsd

import (
	"path"
	"slices"
	"strings"

	"github.com/steigerlint/steiger/pkg/fstree"
)

const (
	// CrossImportPublicAPI is the reserved folder name for a slice's public
	// API meant for other slices of the same layer (entities/user/@x/post.ts).
	CrossImportPublicAPI = "@x"

	// PublicAPIName is the base name, without extension, of a public-API file.
	PublicAPIName = "index"
)

var conventionalSegments = []string{"ui", "api", "lib", "model", "config"}

// ConventionalSegments returns the segment names that mark a folder as a slice.
func ConventionalSegments() []string {
	return slices.Clone(conventionalSegments)
}

// IsConventionalSegment reports whether name is a conventional segment name.
func IsConventionalSegment(name string) bool {
	return slices.Contains(conventionalSegments, name)
}

// IsCrossImportPublicAPI reports whether name is the reserved @x token.
func IsCrossImportPublicAPI(name string) bool {
	return name == CrossImportPublicAPI
}

// Slice is a slice folder of a sliced layer. Key is the path of the slice
// relative to its layer, including slice-group folders ("checkout/payment").
type Slice struct {
	Layer  string
	Key    string
	Folder *fstree.Folder
}

// Name returns the last element of the slice key.
func (s Slice) Name() string {
	return path.Base(s.Key)
}

// Group returns the slice-group prefix of the key, or "" for ungrouped slices.
func (s Slice) Group() string {
	if dir := path.Dir(s.Key); dir != "." {
		return dir
	}
	return ""
}

// Index returns the public-API file at the top level of container. The match
// is by base name only, so index.ts, index.tsx and index.js all qualify.
// When several exist the first in child order wins.
func Index(container *fstree.Folder) (*fstree.File, bool) {
	for _, file := range container.Files() {
		if file.Stem() == PublicAPIName {
			return file, true
		}
	}
	return nil, false
}

// Indexes returns every public-API file at the top level of container.
func Indexes(container *fstree.Folder) []*fstree.File {
	var out []*fstree.File
	for _, file := range container.Files() {
		if file.Stem() == PublicAPIName {
			out = append(out, file)
		}
	}
	return out
}

// IsSliceGroup reports whether folder only groups slices and is not a slice
// itself. That holds when it has children, all of them are folders, none is
// named like a segment, and each is slice-like or a slice-group in turn. The
// check stops at the first child that fails. A folder without children is
// never a slice-group.
func IsSliceGroup(folder *fstree.Folder) bool {
	if folder.Empty() {
		return false
	}
	for _, child := range folder.Children() {
		switch child := child.(type) {
		case *fstree.File:
			return false
		case *fstree.Folder:
			if isSegmentName(child.Name()) {
				return false
			}
			if !looksLikeSlice(child) && !IsSliceGroup(child) {
				return false
			}
		}
	}
	return true
}

// IsSlice reports whether folder, found under a sliced layer, is a slice
// rather than a slice-group. Folders that hold no recognizable segment are
// still slices here; flagging them is left to the rules.
func IsSlice(folder *fstree.Folder) bool {
	return !IsSliceGroup(folder)
}

// Slices returns the slices of a sliced layer keyed by their path relative to
// the layer. Files directly in the layer are not slices and are skipped.
func Slices(layer *fstree.Folder) map[string]*fstree.Folder {
	out := make(map[string]*fstree.Folder)
	walkSlices(layer, "", func(key string, folder *fstree.Folder) {
		out[key] = folder
	})
	return out
}

// OrderedSlices returns the slices of layer in traversal order.
func OrderedSlices(layer *fstree.Folder) []Slice {
	var out []Slice
	walkSlices(layer, "", func(key string, folder *fstree.Folder) {
		out = append(out, Slice{Layer: layer.Name(), Key: key, Folder: folder})
	})
	return out
}

// AllSlices returns the slices of every sliced layer under root, layers in
// sequence order and slices in traversal order.
func AllSlices(root *fstree.Folder) []Slice {
	var out []Slice
	for _, layer := range OrderedLayers(root) {
		if !IsSliced(layer.Name) {
			continue
		}
		out = append(out, OrderedSlices(layer.Folder)...)
	}
	return out
}

func walkSlices(parent *fstree.Folder, prefix string, visit func(key string, folder *fstree.Folder)) {
	for _, child := range parent.Folders() {
		key := path.Join(prefix, child.Name())
		if IsSliceGroup(child) {
			walkSlices(child, key, visit)
			continue
		}
		visit(key, child)
	}
}

func looksLikeSlice(folder *fstree.Folder) bool {
	if _, ok := Index(folder); ok {
		return true
	}
	for _, child := range folder.Folders() {
		if isSegmentName(child.Name()) {
			return true
		}
	}
	return false
}

func isSegmentName(name string) bool {
	return IsConventionalSegment(name) || IsCrossImportPublicAPI(name)
}

// sliceKeyOf returns the slice key whose folder contains p, if any.
func sliceKeyOf(layer *fstree.Folder, p string, sep string) (Slice, bool) {
	var found Slice
	ok := false
	walkSlices(layer, "", func(key string, folder *fstree.Folder) {
		if ok {
			return
		}
		if p == folder.Path() || strings.HasPrefix(p, folder.Path()+sep) {
			found = Slice{Layer: layer.Name(), Key: key, Folder: folder}
			ok = true
		}
	})
	return found, ok
}
