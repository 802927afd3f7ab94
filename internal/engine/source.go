// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"path/filepath"

	"github.com/steigerlint/steiger/internal/resolver"
	"github.com/steigerlint/steiger/pkg/fstree"
)

// treeSource implements rule.Source for one run. Import targets must be part
// of the (filtered) tree; project configs are read through the run's cache.
type treeSource struct {
	readFile func(string) ([]byte, error)
	cache    *resolver.Cache
	files    map[string]bool
	dirs     map[string]bool
}

func newTreeSource(root *fstree.Folder, readFile func(string) ([]byte, error), cache *resolver.Cache) *treeSource {
	s := &treeSource{
		readFile: readFile,
		cache:    cache,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}
	_ = fstree.Walk(root, func(n fstree.Node) error {
		switch n := n.(type) {
		case *fstree.File:
			s.files[n.Path()] = true
		case *fstree.Folder:
			s.dirs[n.Path()] = true
		}
		return nil
	})
	return s
}

func (s *treeSource) ReadFile(path string) ([]byte, error) {
	return s.readFile(path)
}

func (s *treeSource) ResolveImport(specifier, fromFile string) (string, bool) {
	cfg := s.cache.ForFile(fromFile)
	return resolver.ResolveImport(specifier, filepath.Clean(fromFile), cfg, s.fileExists, s.dirExists)
}

func (s *treeSource) fileExists(path string) bool { return s.files[path] }
func (s *treeSource) dirExists(path string) bool  { return s.dirs[path] }
