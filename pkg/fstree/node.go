// SPDX-License-Identifier: MPL-2.0

package fstree

import (
	"path/filepath"
	"slices"
	"strings"
)

type (
	// Node is either a *File or a *Folder. The set of implementations is
	// closed; switch on the concrete type to dispatch.
	Node interface {
		// Path is the absolute path of the node.
		Path() string
		// Name is the last element of the path.
		Name() string

		node()
	}

	// File is a leaf of the tree.
	File struct {
		path string
	}

	// Folder owns an ordered list of children.
	Folder struct {
		path     string
		children []Node
	}
)

// NewFile creates a file node.
func NewFile(path string) *File {
	return &File{path: filepath.Clean(path)}
}

// NewFolder creates a folder node owning the given children. The children
// slice is copied, so later changes by the caller do not leak in.
func NewFolder(path string, children ...Node) *Folder {
	return &Folder{
		path:     filepath.Clean(path),
		children: slices.Clone(children),
	}
}

func (f *File) node()   {}
func (f *Folder) node() {}

// Path returns the absolute path of the file.
func (f *File) Path() string { return f.path }

// Name returns the file name including its extension.
func (f *File) Name() string { return filepath.Base(f.path) }

// Stem returns the file name without its last extension ("index.ts" -> "index").
func (f *File) Stem() string { return Stem(f.path) }

// Path returns the absolute path of the folder.
func (f *Folder) Path() string { return f.path }

// Name returns the folder name.
func (f *Folder) Name() string { return filepath.Base(f.path) }

// Children returns a copy of the folder's children in insertion order.
func (f *Folder) Children() []Node {
	return slices.Clone(f.children)
}

// Len returns the number of direct children.
func (f *Folder) Len() int { return len(f.children) }

// Empty reports whether the folder has no children.
func (f *Folder) Empty() bool { return len(f.children) == 0 }

// Files returns the direct child files in order.
func (f *Folder) Files() []*File {
	var out []*File
	for _, child := range f.children {
		if file, ok := child.(*File); ok {
			out = append(out, file)
		}
	}
	return out
}

// Folders returns the direct child folders in order.
func (f *Folder) Folders() []*Folder {
	var out []*Folder
	for _, child := range f.children {
		if folder, ok := child.(*Folder); ok {
			out = append(out, folder)
		}
	}
	return out
}

// Child returns the direct child with the given name.
func (f *Folder) Child(name string) (Node, bool) {
	for _, child := range f.children {
		if child.Name() == name {
			return child, true
		}
	}
	return nil, false
}

// Stem returns the base name of path without its last extension.
// Dotfiles such as ".env" keep their full name.
func Stem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Walk visits root and all of its descendants depth-first in child order.
// Returning filepath.SkipDir from fn for a folder skips its children;
// any other error stops the walk and is returned.
func Walk(root Node, fn func(Node) error) error {
	err := walk(root, fn)
	if err == filepath.SkipDir {
		return nil
	}
	return err
}

func walk(n Node, fn func(Node) error) error {
	switch n := n.(type) {
	case *File:
		return fn(n)
	case *Folder:
		if err := fn(n); err != nil {
			if err == filepath.SkipDir {
				return nil
			}
			return err
		}
		for _, child := range n.children {
			if err := walk(child, fn); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// AllFiles returns every file below root in depth-first order.
func AllFiles(root *Folder) []*File {
	var out []*File
	_ = Walk(root, func(n Node) error {
		if file, ok := n.(*File); ok {
			out = append(out, file)
		}
		return nil
	})
	return out
}

// Find returns the node at path, which must be root itself or lie below it.
func Find(root *Folder, path string) (Node, bool) {
	path = filepath.Clean(path)
	if path == root.path {
		return root, true
	}
	rel, err := filepath.Rel(root.path, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, false
	}

	var current Node = root
	for part := range strings.SplitSeq(rel, string(filepath.Separator)) {
		folder, ok := current.(*Folder)
		if !ok {
			return nil, false
		}
		next, found := folder.Child(part)
		if !found {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Filter returns a copy of root without the nodes for which keep returns
// false. Dropping a folder drops its whole subtree. The root is always kept.
func Filter(root *Folder, keep func(Node) bool) *Folder {
	children := make([]Node, 0, len(root.children))
	for _, child := range root.children {
		if !keep(child) {
			continue
		}
		switch child := child.(type) {
		case *File:
			children = append(children, child)
		case *Folder:
			children = append(children, Filter(child, keep))
		}
	}
	return &Folder{path: root.path, children: children}
}

// Equal reports whether two trees have the same shape and paths.
func Equal(a, b Node) bool {
	switch a := a.(type) {
	case *File:
		bf, ok := b.(*File)
		return ok && a.path == bf.path
	case *Folder:
		bf, ok := b.(*Folder)
		if !ok || a.path != bf.path || len(a.children) != len(bf.children) {
			return false
		}
		for i := range a.children {
			if !Equal(a.children[i], bf.children[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
