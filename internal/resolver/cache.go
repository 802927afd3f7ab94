// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/golang-lru/v2"

	"github.com/steigerlint/steiger/internal/cueutil"
)

// DefaultCacheSize bounds the number of memoized configs and folder lookups.
const DefaultCacheSize = 1024

// ConfigNames are looked up, in order, in each folder from the importing
// file up to the filesystem root.
var ConfigNames = []string{"tsconfig.json", "jsconfig.json"}

// ErrExtendsCycle is returned when a chain of "extends" loops back on itself.
var ErrExtendsCycle = errors.New("extends cycle")

type (
	// FS is the filesystem the cache reads project configs from.
	FS interface {
		ReadFile(path string) ([]byte, error)
		FileExists(path string) bool
	}

	// OSFS reads from the operating system.
	OSFS struct{}

	// Cache memoizes parsed project configs by path and the nearest config of
	// each folder. It is safe for concurrent use and is meant to be discarded
	// at the end of a run; nothing is ever invalidated.
	Cache struct {
		fs      FS
		configs *lru.Cache[string, *ProjectConfig]
		nearest *lru.Cache[string, string]
	}

	rawConfig struct {
		Extends         any
		CompilerOptions struct {
			BaseURL *string
			Paths   map[string][]string
		}
	}
)

// ReadFile implements FS.
func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// FileExists implements FS.
func (OSFS) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// NewCache creates a cache holding up to size entries per table. A nil fs
// reads from the operating system. Size it to the run, as the engine does:
// a config evicted mid-run is read and parsed again on its next use, which
// is correct but repeats I/O the cache exists to avoid.
func NewCache(size int, fs FS) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if fs == nil {
		fs = OSFS{}
	}
	configs, err := lru.New[string, *ProjectConfig](size)
	if err != nil {
		return nil, err
	}
	nearest, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Cache{fs: fs, configs: configs, nearest: nearest}, nil
}

// Load parses the project config at path, following "extends" chains. Parsed
// configs are memoized by path.
func (c *Cache) Load(path string) (*ProjectConfig, error) {
	return c.load(filepath.Clean(path), map[string]bool{})
}

// ForFile returns the config governing file: the nearest tsconfig.json or
// jsconfig.json in its folder or an ancestor. It returns nil when there is
// none or when the nearest one does not parse, which callers treat like a
// project without aliases.
func (c *Cache) ForFile(file string) *ProjectConfig {
	path := c.nearestConfig(filepath.Dir(filepath.Clean(file)))
	if path == "" {
		return nil
	}
	cfg, err := c.Load(path)
	if err != nil {
		return nil
	}
	return cfg
}

// Len reports how many configs are memoized.
func (c *Cache) Len() int { return c.configs.Len() }

func (c *Cache) nearestConfig(dir string) string {
	if path, ok := c.nearest.Get(dir); ok {
		return path
	}

	var found string
	for _, name := range ConfigNames {
		candidate := filepath.Join(dir, name)
		if c.fs.FileExists(candidate) {
			found = candidate
			break
		}
	}
	if found == "" {
		if parent := filepath.Dir(dir); parent != dir {
			found = c.nearestConfig(parent)
		}
	}

	c.nearest.Add(dir, found)
	return found
}

func (c *Cache) load(path string, visiting map[string]bool) (*ProjectConfig, error) {
	if cfg, ok := c.configs.Get(path); ok {
		return cfg, nil
	}
	if visiting[path] {
		return nil, fmt.Errorf("%w: %s", ErrExtendsCycle, path)
	}
	visiting[path] = true

	data, err := c.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decoded, err := cueutil.DecodeJSONC(data, cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}
	raw, err := toRawConfig(decoded)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg := &ProjectConfig{Path: path}
	for _, parent := range extendsOf(raw.Extends) {
		parentPath, ok := c.extendsPath(path, parent)
		if !ok {
			continue
		}
		base, err := c.load(parentPath, visiting)
		if err != nil {
			return nil, err
		}
		cfg.BaseURL = base.BaseURL
		cfg.Paths = base.Paths
		cfg.PathsBase = base.PathsBase
	}

	dir := filepath.Dir(path)
	if raw.CompilerOptions.BaseURL != nil {
		cfg.BaseURL = filepath.Join(dir, *raw.CompilerOptions.BaseURL)
	}
	if raw.CompilerOptions.Paths != nil {
		cfg.Paths = raw.CompilerOptions.Paths
		cfg.PathsBase = dir
	}
	if cfg.BaseURL != "" {
		cfg.PathsBase = cfg.BaseURL
	}

	c.configs.Add(path, cfg)
	return cfg, nil
}

// extendsPath resolves an "extends" entry. Package references are skipped.
func (c *Cache) extendsPath(from, ref string) (string, bool) {
	if !isRelative(ref) && !filepath.IsAbs(ref) {
		return "", false
	}
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(from), ref)
	}
	if !strings.HasSuffix(path, ".json") && !c.fs.FileExists(path) {
		path += ".json"
	}
	return path, true
}

func extendsOf(v any) []string {
	switch e := v.(type) {
	case string:
		return []string{e}
	case []any:
		out := make([]string, 0, len(e))
		for _, item := range e {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func toRawConfig(m map[string]any) (rawConfig, error) {
	var raw rawConfig
	raw.Extends = m["extends"]

	opts, ok := m["compilerOptions"].(map[string]any)
	if !ok {
		return raw, nil
	}
	if v, ok := opts["baseUrl"]; ok {
		s, isString := v.(string)
		if !isString {
			return raw, fmt.Errorf("compilerOptions.baseUrl: expected a string, got %T", v)
		}
		raw.CompilerOptions.BaseURL = &s
	}
	if v, ok := opts["paths"]; ok {
		paths, isMap := v.(map[string]any)
		if !isMap {
			return raw, fmt.Errorf("compilerOptions.paths: expected an object, got %T", v)
		}
		raw.CompilerOptions.Paths = make(map[string][]string, len(paths))
		for pattern, targets := range paths {
			list, isList := targets.([]any)
			if !isList {
				return raw, fmt.Errorf("compilerOptions.paths[%q]: expected a list, got %T", pattern, targets)
			}
			for _, t := range list {
				if s, isString := t.(string); isString {
					raw.CompilerOptions.Paths[pattern] = append(raw.CompilerOptions.Paths[pattern], s)
				}
			}
		}
	}
	return raw, nil
}
