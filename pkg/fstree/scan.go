// SPDX-License-Identifier: MPL-2.0

package fstree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnores are excluded from every scan. Dependency folders and VCS
// metadata never hold architecture.
var defaultIgnores = []string{
	"**/node_modules",
	"**/.git",
	"**/.DS_Store",
}

var (
	// ErrRootNotFound is returned when the scan root does not exist.
	ErrRootNotFound = errors.New("root folder not found")
	// ErrRootNotFolder is returned when the scan root is a file.
	ErrRootNotFolder = errors.New("root is not a folder")
)

// ScanOptions controls how Scan reads a directory.
type ScanOptions struct {
	// Ignore holds doublestar patterns matched against slash-separated paths
	// relative to the root. A matching folder is skipped with its subtree.
	Ignore []string
}

// Scan reads the directory at root into a tree. Entries are ordered by name,
// as returned by os.ReadDir. Symbolic links to directories are skipped so the
// result is always acyclic.
func Scan(ctx context.Context, root string, opts ScanOptions) (*Folder, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root %q: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, abs)
		}
		return nil, fmt.Errorf("stat scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFolder, abs)
	}

	for _, pat := range opts.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pat)
		}
	}

	s := scanner{root: abs, ignores: append(append([]string{}, defaultIgnores...), opts.Ignore...)}
	return s.folder(ctx, abs)
}

type scanner struct {
	root    string
	ignores []string
}

func (s scanner) folder(ctx context.Context, dir string) (*Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan canceled: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", dir, err)
	}

	children := make([]Node, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if s.ignored(path) {
			continue
		}

		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			target, statErr := os.Stat(path)
			if statErr != nil || target.IsDir() {
				continue
			}
		}

		if !isDir {
			children = append(children, NewFile(path))
			continue
		}
		sub, err := s.folder(ctx, path)
		if err != nil {
			return nil, err
		}
		children = append(children, sub)
	}

	return &Folder{path: dir, children: children}, nil
}

func (s scanner) ignored(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pat := range s.ignores {
		if matched, _ := doublestar.Match(pat, rel); matched {
			return true
		}
		// "dir/**" style patterns should also drop the folder itself.
		if matched, _ := doublestar.Match(pat, rel+"/"); matched {
			return true
		}
	}
	return false
}
