// SPDX-License-Identifier: MPL-2.0

package fsd

import (
	"slices"

	"github.com/steigerlint/steiger/pkg/fstree"
)

// Layer names, innermost first.
const (
	LayerShared    = "shared"
	LayerEntities  = "entities"
	LayerFeatures  = "features"
	LayerWidgets   = "widgets"
	LayerPages     = "pages"
	LayerProcesses = "processes"
	LayerApp       = "app"
)

var (
	layerSequence = []string{
		LayerShared,
		LayerEntities,
		LayerFeatures,
		LayerWidgets,
		LayerPages,
		LayerProcesses,
		LayerApp,
	}

	unslicedLayers = []string{LayerShared, LayerApp}
)

// LayerSequence returns the layer names ordered from innermost to outermost.
func LayerSequence() []string {
	return slices.Clone(layerSequence)
}

// IsLayerName reports whether name is one of the known layers.
func IsLayerName(name string) bool {
	return slices.Contains(layerSequence, name)
}

// LayerIndex returns the position of name in the layer sequence, or -1.
// A layer may import only from layers with a lower index.
func LayerIndex(name string) int {
	return slices.Index(layerSequence, name)
}

// Layers returns the layer folders that are direct children of root, keyed
// by layer name. Folders with unknown names are ignored.
func Layers(root *fstree.Folder) map[string]*fstree.Folder {
	layers := make(map[string]*fstree.Folder)
	for _, name := range layerSequence {
		child, ok := root.Child(name)
		if !ok {
			continue
		}
		if folder, isFolder := child.(*fstree.Folder); isFolder {
			layers[name] = folder
		}
	}
	return layers
}

// Layer is a layer folder together with its name.
type Layer struct {
	Name   string
	Folder *fstree.Folder
}

// OrderedLayers returns the layers present under root in sequence order.
func OrderedLayers(root *fstree.Folder) []Layer {
	present := Layers(root)
	out := make([]Layer, 0, len(present))
	for _, name := range layerSequence {
		if folder, ok := present[name]; ok {
			out = append(out, Layer{Name: name, Folder: folder})
		}
	}
	return out
}

// IsSliced reports whether the layer with this name holds slices. It depends
// only on the name, never on the folder contents.
func IsSliced(layerName string) bool {
	return !slices.Contains(unslicedLayers, layerName)
}

// IsSlicedLayer is IsSliced applied to the name of a layer folder.
func IsSlicedLayer(layer *fstree.Folder) bool {
	return IsSliced(layer.Name())
}
