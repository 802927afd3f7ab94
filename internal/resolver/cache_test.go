// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

type memFS struct {
	files map[string]string
	reads atomic.Int64
}

func (m *memFS) ReadFile(path string) ([]byte, error) {
	m.reads.Add(1)
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func (m *memFS) FileExists(path string) bool {
	_, ok := m.files[path]
	return ok
}

func TestCache_ExtendsChain(t *testing.T) {
	t.Parallel()

	mfs := &memFS{files: map[string]string{
		"/p/tsconfig.base.json": `{
			// shared settings
			"compilerOptions": {"paths": {"@/*": ["./src/*"]}}
		}`,
		"/p/app/tsconfig.json": `{
			"extends": "../tsconfig.base",
			"compilerOptions": {"strict": true},
		}`,
	}}
	cache, err := NewCache(0, mfs)
	if err != nil {
		t.Fatal(err)
	}

	cfg := cache.ForFile("/p/app/src/features/auth/index.ts")
	if cfg == nil {
		t.Fatal("ForFile() = nil")
	}
	if cfg.Path != "/p/app/tsconfig.json" {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.BaseURL != "" {
		t.Errorf("BaseURL = %q, want empty", cfg.BaseURL)
	}
	if cfg.PathsBase != "/p" {
		t.Errorf("PathsBase = %q, want the base config folder", cfg.PathsBase)
	}
	if got := cfg.Paths["@/*"]; len(got) != 1 || got[0] != "./src/*" {
		t.Errorf("Paths = %v", cfg.Paths)
	}
}

func TestCache_BaseURLOverridesPathsBase(t *testing.T) {
	t.Parallel()

	mfs := &memFS{files: map[string]string{
		"/p/tsconfig.json": `{"compilerOptions": {"baseUrl": "./src", "paths": {"~/*": ["*"]}}}`,
	}}
	cache, err := NewCache(8, mfs)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := cache.Load("/p/tsconfig.json")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "/p/src" || cfg.PathsBase != "/p/src" {
		t.Errorf("BaseURL = %q, PathsBase = %q", cfg.BaseURL, cfg.PathsBase)
	}
}

func TestCache_Memoizes(t *testing.T) {
	t.Parallel()

	mfs := &memFS{files: map[string]string{
		"/p/jsconfig.json": `{"compilerOptions": {"baseUrl": "."}}`,
	}}
	cache, err := NewCache(8, mfs)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cache.ForFile("/p/src/shared/ui/index.ts") == nil {
				t.Error("ForFile() = nil")
			}
		}()
	}
	wg.Wait()

	before := mfs.reads.Load()
	cache.ForFile("/p/src/entities/user/index.ts")
	if mfs.reads.Load() != before {
		t.Error("second lookup re-read the config")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestCache_Errors(t *testing.T) {
	t.Parallel()

	mfs := &memFS{files: map[string]string{
		"/p/a.json":      `{"extends": "./b.json"}`,
		"/p/b.json":      `{"extends": "./a.json"}`,
		"/p/broken.json": `{"compilerOptions": `,
		"/p/bad.json":    `{"compilerOptions": {"baseUrl": 1}}`,
	}}
	cache, err := NewCache(8, mfs)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := cache.Load("/p/a.json"); !errors.Is(err, ErrExtendsCycle) {
		t.Errorf("Load(cycle) error = %v, want ErrExtendsCycle", err)
	}
	if _, err := cache.Load("/p/broken.json"); err == nil {
		t.Error("Load(broken) should fail")
	}
	if _, err := cache.Load("/p/bad.json"); err == nil {
		t.Error("Load(bad baseUrl) should fail")
	}
	if _, err := cache.Load("/p/missing.json"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestCache_NoConfig(t *testing.T) {
	t.Parallel()

	cache, err := NewCache(8, &memFS{files: map[string]string{}})
	if err != nil {
		t.Fatal(err)
	}
	if cfg := cache.ForFile("/p/src/index.ts"); cfg != nil {
		t.Errorf("ForFile() = %+v, want nil", cfg)
	}
}

func TestCache_OSFS(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tsconfig.json"), []byte(`{"compilerOptions": {"baseUrl": "src"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cache, err := NewCache(8, nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg := cache.ForFile(filepath.Join(dir, "src", "app", "index.ts"))
	if cfg == nil || cfg.BaseURL != filepath.Join(dir, "src") {
		t.Errorf("ForFile() = %+v", cfg)
	}
}
