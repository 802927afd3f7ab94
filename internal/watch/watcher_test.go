// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const testDebounce = 80 * time.Millisecond

// recorder collects OnChange batches and signals each one on calls.
type recorder struct {
	mu      sync.Mutex
	batches [][]string
	calls   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{calls: make(chan struct{}, 16)}
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.batches = append(r.batches, changed)
	r.mu.Unlock()
	r.calls <- struct{}{}
	return nil
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnChange")
	}
}

// start runs w in the background and stops it when the test ends.
func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Run() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Run() did not return after cancel")
		}
	})
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("export {}\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	w, err := New(Config{Root: dir, Debounce: testDebounce, OnChange: rec.onChange})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	for _, name := range []string{"c.ts", "a.ts", "b.ts"} {
		writeFile(t, filepath.Join(dir, name))
		time.Sleep(10 * time.Millisecond)
	}
	rec.wait(t)

	rec.mu.Lock()
	first := rec.batches[0]
	rec.mu.Unlock()
	for _, name := range []string{"a.ts", "b.ts", "c.ts"} {
		if !slices.Contains(first, name) {
			t.Errorf("first batch %v is missing %s", first, name)
		}
	}
	if !slices.IsSorted(first) {
		t.Errorf("batch %v is not sorted", first)
	}
}

func TestWatcherIgnore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, sub := range []string{"generated", "shared"} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	rec := newRecorder()
	w, err := New(Config{
		Root:     dir,
		Ignore:   []string{"generated/**", "**/*.log"},
		Debounce: testDebounce,
		OnChange: rec.onChange,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	writeFile(t, filepath.Join(dir, "generated", "api.ts"))
	writeFile(t, filepath.Join(dir, "debug.log"))
	writeFile(t, filepath.Join(dir, "shared", "index.ts"))
	rec.wait(t)

	got := rec.all()
	if !slices.Contains(got, "shared/index.ts") {
		t.Errorf("changes %v should contain shared/index.ts", got)
	}
	for _, p := range got {
		if strings.HasPrefix(p, "generated") || strings.HasSuffix(p, ".log") {
			t.Errorf("ignored path %q reached OnChange", p)
		}
	}
}

func TestWatcherNewFolder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	w, err := New(Config{Root: dir, Debounce: testDebounce, OnChange: rec.onChange})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	slice := filepath.Join(dir, "features")
	if err := os.Mkdir(slice, 0o755); err != nil {
		t.Fatal(err)
	}
	rec.wait(t)

	// The new folder is registered on its Create event; give the watcher a
	// moment before writing inside it.
	time.Sleep(2 * testDebounce)
	writeFile(t, filepath.Join(slice, "index.ts"))

	deadline := time.After(5 * time.Second)
	for !slices.Contains(rec.all(), "features/index.ts") {
		select {
		case <-rec.calls:
		case <-deadline:
			t.Fatalf("file in new folder never reported; got %v", rec.all())
		}
	}
}

func TestWatcherFileOutsideRoot(t *testing.T) {
	t.Parallel()

	project := t.TempDir()
	root := filepath.Join(project, "src")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(project, "steiger.config.yaml")
	writeFile(t, configPath)

	rec := newRecorder()
	w, err := New(Config{
		Root:     root,
		Files:    []string{configPath},
		Debounce: testDebounce,
		OnChange: rec.onChange,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	// Siblings of the config file are not part of the watch.
	writeFile(t, filepath.Join(project, "README.md"))
	writeFile(t, configPath)
	rec.wait(t)

	got := rec.all()
	if !slices.Contains(got, configPath) {
		t.Errorf("changes %v should contain %s", got, configPath)
	}
	if slices.Contains(got, filepath.Join(project, "README.md")) {
		t.Errorf("unrelated sibling reached OnChange: %v", got)
	}
}

func TestWatcherContextCancel(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() = %v, want nil on cancellation", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	w := &Watcher{ignores: DefaultIgnores()}
	tests := []struct {
		rel  string
		want bool
	}{
		{".git/HEAD", true},
		{"node_modules/react/index.js", true},
		{"features/auth/.index.ts.swp", true},
		{"features/auth/index.ts.swo", true},
		{"features/auth/index.ts~", true},
		{"pages/.DS_Store", true},
		{"features/auth/index.ts", false},
		{"shared/ui/button.tsx", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()
			if got := w.isIgnored(tt.rel); got != tt.want {
				t.Errorf("isIgnored(%q) = %v, want %v", tt.rel, got, tt.want)
			}
		})
	}

	copied := DefaultIgnores()
	copied[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() must return a copy")
	}
}

func TestWatcherSkipIfBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		running  atomic.Int32
		overlaps atomic.Int32
		calls    = make(chan struct{}, 16)
		release  = make(chan struct{})
	)

	w, err := New(Config{
		Root:     dir,
		Debounce: testDebounce,
		OnChange: func(context.Context, []string) error {
			if running.Add(1) > 1 {
				overlaps.Add(1)
			}
			defer running.Add(-1)
			calls <- struct{}{}
			<-release
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	writeFile(t, filepath.Join(dir, "first.ts"))
	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("first OnChange never ran")
	}

	// Changes during a slow run are postponed, not dropped.
	writeFile(t, filepath.Join(dir, "second.ts"))
	time.Sleep(4 * testDebounce)
	close(release)

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("postponed OnChange never ran")
	}
	if n := overlaps.Load(); n != 0 {
		t.Errorf("OnChange overlapped %d times", n)
	}
}

func TestWatcherClearScreen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		mu  sync.Mutex
		out bytes.Buffer
	)
	rec := newRecorder()
	w, err := New(Config{
		Root:        dir,
		Debounce:    testDebounce,
		ClearScreen: true,
		Stdout:      writerFunc(func(p []byte) (int, error) { mu.Lock(); defer mu.Unlock(); return out.Write(p) }),
		OnChange:    rec.onChange,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	writeFile(t, filepath.Join(dir, "index.ts"))
	rec.wait(t)

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(out.String(), clearScreen) {
		t.Errorf("stdout %q should contain the clear sequence", out.String())
	}
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func TestWatcherInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Root: t.TempDir(), Ignore: []string{"[unclosed"}})
	if err == nil || !strings.Contains(err.Error(), "invalid ignore pattern") {
		t.Errorf("New() error = %v, want invalid ignore pattern", err)
	}
}

func TestWatcherMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Root: filepath.Join(t.TempDir(), "absent")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("New() error = %v, want os.ErrNotExist", err)
	}
}

func TestWatcherDoubleRun(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	// Let the first Run claim the watcher.
	deadline := time.Now().Add(5 * time.Second)
	for !w.started.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := w.Run(t.Context()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
}
