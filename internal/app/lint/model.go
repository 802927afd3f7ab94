// SPDX-License-Identifier: MPL-2.0

package lint

import (
	"context"

	"github.com/steigerlint/steiger/pkg/fsd"
	"github.com/steigerlint/steiger/pkg/fstree"
)

type (
	// Model is the architecture steiger sees in a tree.
	Model struct {
		Root   string       `json:"root"`
		Layers []LayerModel `json:"layers"`
	}

	// LayerModel describes one layer. Unsliced layers have Segments and no
	// Slices; sliced layers the other way round.
	LayerModel struct {
		Name     string       `json:"name"`
		Sliced   bool         `json:"sliced"`
		Segments []string     `json:"segments,omitempty"`
		Slices   []SliceModel `json:"slices,omitempty"`
	}

	// SliceModel describes one slice. Group is the slice-group prefix.
	SliceModel struct {
		Name     string   `json:"name"`
		Group    string   `json:"group,omitempty"`
		Segments []string `json:"segments,omitempty"`
	}
)

// Inspect scans root and classifies it.
func Inspect(ctx context.Context, root string, ignores []string) (*Model, error) {
	tree, err := Scan(ctx, root, ignores)
	if err != nil {
		return nil, err
	}
	return Classify(tree), nil
}

// Classify builds the model of an already scanned tree.
func Classify(root *fstree.Folder) *Model {
	type key struct{ layer, slice string }
	segments := map[key][]string{}
	for _, seg := range fsd.AllSegments(root) {
		k := key{seg.Layer, seg.Slice}
		segments[k] = append(segments[k], seg.Name)
	}

	m := &Model{Root: root.Path(), Layers: []LayerModel{}}
	for _, layer := range fsd.OrderedLayers(root) {
		lm := LayerModel{Name: layer.Name, Sliced: fsd.IsSliced(layer.Name)}
		if !lm.Sliced {
			lm.Segments = segments[key{layer.Name, ""}]
			m.Layers = append(m.Layers, lm)
			continue
		}
		for _, slice := range fsd.OrderedSlices(layer.Folder) {
			lm.Slices = append(lm.Slices, SliceModel{
				Name:     slice.Key,
				Group:    slice.Group(),
				Segments: segments[key{layer.Name, slice.Key}],
			})
		}
		m.Layers = append(m.Layers, lm)
	}
	return m
}
