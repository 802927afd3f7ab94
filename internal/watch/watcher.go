// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/steigerlint/steiger/internal/issue"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
// Editors that save through a temp file produce several events per save.
const DefaultDebounce = 300 * time.Millisecond

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[2J\033[H"

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// defaultIgnores never trigger a re-run: dependency and VCS folders, editor
// swap and backup files, OS metadata.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config configures a Watcher.
	Config struct {
		// Root is the linted folder. Empty means the working directory.
		Root string

		// Files are watched in addition to Root, typically the config file.
		// They may live outside Root.
		Files []string

		// Ignore holds doublestar globs relative to Root, usually the global
		// ignores of the lint plan. They are merged with the defaults.
		Ignore []string

		// Debounce is the quiet period after the last event before OnChange
		// fires. Zero or negative values use DefaultDebounce.
		Debounce time.Duration

		// ClearScreen clears the terminal through Stdout before each OnChange.
		ClearScreen bool
		Stdout      io.Writer

		// Logger receives watcher diagnostics. nil discards them.
		Logger *log.Logger

		// OnChange receives the sorted changed paths: relative to Root in
		// slash form, or absolute for Files outside Root. Errors are logged
		// and watching continues.
		OnChange func(ctx context.Context, changed []string) error
	}

	// Watcher monitors a lint root. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		root     string
		files    map[string]bool
		ignores  []string
		debounce time.Duration
		logger   *log.Logger
		stdout   io.Writer
		started  atomic.Bool
	}

	// batch accumulates changed paths between debounced callbacks.
	batch struct {
		mu      sync.Mutex
		pending map[string]struct{}
		timer   *time.Timer
		busy    atomic.Bool
	}
)

// New validates cfg and registers Root, its non-ignored subfolders and the
// folders of Files with fsnotify.
func New(cfg Config) (*Watcher, error) {
	if err := validatePatterns(cfg.Ignore); err != nil {
		return nil, err
	}

	root := cfg.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}

	files := make(map[string]bool, len(cfg.Files))
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", f, err)
		}
		files[abs] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		root:     root,
		files:    files,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
		stdout:   cfg.Stdout,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	if w.stdout == nil {
		w.stdout = os.Stdout
	}

	if err := w.register(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			w.logger.Warn("close watcher after failed start", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Root returns the absolute path of the watched root.
func (w *Watcher) Root() string {
	return w.root
}

// Run processes events until ctx is cancelled. It returns nil on
// cancellation and an error when fsnotify can no longer deliver events.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	b := &batch{pending: make(map[string]struct{})}
	defer func() {
		b.stop()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "err", err)
		}
	}()

	fire := func() { w.fire(ctx, b) }

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			changed, ok := w.classify(evt.Name)
			if !ok {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.addIfFolder(evt.Name)
			}
			w.logger.Debug("change", "path", changed, "op", evt.Op.String())
			b.add(changed, w.debounce, fire)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if advice, stopped := exhaustedResource(err); stopped {
				return issue.NewErrorContext().
					WithKind(issue.KindIngest).
					WithOperation("watch for changes").
					WithResource(w.root).
					WithSuggestion(advice).
					Wrap(err).
					BuildError()
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// fire hands the pending paths to OnChange. It runs on the timer goroutine,
// possibly after ctx is done. While a callback is still running the batch is
// rescheduled instead, so callbacks never overlap and no change is lost.
func (w *Watcher) fire(ctx context.Context, b *batch) {
	if ctx.Err() != nil {
		return
	}
	if !b.busy.CompareAndSwap(false, true) {
		w.logger.Info("lint still running, postponing re-run")
		b.reschedule(w.debounce)
		return
	}
	defer b.busy.Store(false)

	changed := b.take()
	if len(changed) == 0 {
		return
	}
	if w.cfg.ClearScreen {
		fmt.Fprint(w.stdout, clearScreen)
	}
	if w.cfg.OnChange == nil {
		return
	}
	if err := w.cfg.OnChange(ctx, changed); err != nil {
		w.logger.Error("re-run failed", "err", err)
	}
}

// classify maps an event path to the name reported to OnChange. ok is false
// for ignored paths and for unrelated files next to a watched config file.
func (w *Watcher) classify(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}

	rel, inside := w.relative(abs)
	if inside {
		if w.isIgnored(rel) {
			return "", false
		}
		return rel, true
	}
	if w.files[abs] {
		return abs, true
	}
	return "", false
}

// relative returns abs relative to the root in slash form.
func (w *Watcher) relative(abs string) (string, bool) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// register adds the root's non-ignored folders and the folders holding Files.
func (w *Watcher) register() error {
	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == w.root {
				return walkErr
			}
			w.logger.Warn("not watching inaccessible path", "path", path, "err", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, _ := w.relative(path); rel != "." && w.isIgnoredFolder(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add folder %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", w.root, err)
	}

	for file := range w.files {
		if _, inside := w.relative(file); inside {
			continue
		}
		if err := w.fsw.Add(filepath.Dir(file)); err != nil {
			return fmt.Errorf("watch: add folder of %q: %w", file, err)
		}
	}
	return nil
}

// addIfFolder extends the watch to folders created after startup, including
// any subfolders that appeared before the watch was in place.
func (w *Watcher) addIfFolder(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil || !d.IsDir() {
			return nil
		}
		rel, inside := w.relative(p)
		if !inside || w.isIgnoredFolder(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			w.logger.Warn("not watching new folder", "path", p, "err", err)
		}
		return nil
	})
}

func (w *Watcher) isIgnored(rel string) bool {
	for _, pat := range w.ignores {
		if matched, _ := doublestar.Match(pat, rel); matched {
			return true
		}
	}
	return false
}

// isIgnoredFolder also matches "dir/**" patterns against the folder itself.
func (w *Watcher) isIgnoredFolder(rel string) bool {
	return w.isIgnored(rel) || w.isIgnored(rel+"/")
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func validatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}
	return nil
}

// add records path and restarts the debounce timer.
func (b *batch) add(path string, debounce time.Duration, fire func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[path] = struct{}{}
	if b.timer == nil {
		b.timer = time.AfterFunc(debounce, fire)
		return
	}
	b.timer.Reset(debounce)
}

func (b *batch) reschedule(debounce time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Reset(debounce)
	}
}

// take drains the pending set in sorted order.
func (b *batch) take() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := slices.Sorted(maps.Keys(b.pending))
	clear(b.pending)
	return changed
}

func (b *batch) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}
