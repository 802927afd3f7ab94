// SPDX-License-Identifier: MPL-2.0

package fstree

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("export {}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shared", "ui", "index.ts"))
	writeFile(t, filepath.Join(dir, "entities", "user", "index.ts"))
	writeFile(t, filepath.Join(dir, "entities", "user", "model", "store.ts"))
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "index.js"))
	writeFile(t, filepath.Join(dir, "generated", "api.ts"))
	if err := os.MkdirAll(filepath.Join(dir, "features", "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	root, err := Scan(context.Background(), dir, ScanOptions{Ignore: []string{"generated"}})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want, err := ParseString(`
		📂 entities
		  📂 user
		    📄 index.ts
		    📂 model
		      📄 store.ts
		📂 features
		  📂 empty
		📂 shared
		  📂 ui
		    📄 index.ts
	`, dir)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(root, want) {
		t.Errorf("Scan() =\n%s\nwant\n%s", Format(root), Format(want))
	}
}

func TestScan_RootErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file.ts")
	writeFile(t, file)

	if _, err := Scan(context.Background(), filepath.Join(dir, "missing"), ScanOptions{}); !errors.Is(err, ErrRootNotFound) {
		t.Errorf("missing root error = %v, want ErrRootNotFound", err)
	}
	if _, err := Scan(context.Background(), file, ScanOptions{}); !errors.Is(err, ErrRootNotFolder) {
		t.Errorf("file root error = %v, want ErrRootNotFolder", err)
	}
	if _, err := Scan(context.Background(), dir, ScanOptions{Ignore: []string{"[unclosed"}}); err == nil {
		t.Error("expected an error for an invalid ignore pattern")
	}
}

func TestScan_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Scan(ctx, t.TempDir(), ScanOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Scan() error = %v, want context.Canceled", err)
	}
}
