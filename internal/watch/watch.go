// Package watch re-runs checks when release-note fragments change on disk.
// It uses fsnotify for efficient file change detection and coalesces editor
// write bursts behind a debounce interval.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period applied when no interval is configured.
const DefaultDebounce = 250 * time.Millisecond

// Event is one debounced batch of fragment changes.
type Event struct {
	// Paths are the changed fragment paths, sorted and deduplicated.
	Paths []string
}

// Watcher observes a changes directory and reports fragment edits.
// The directory is watched non-recursively; fragments live flat inside it.
type Watcher struct {
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher

	mu     sync.Mutex
	closed bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a batch of changes is reported.
// Non-positive values fall back to DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a Watcher for the given changes directory.
// The directory must exist.
func New(dir string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		dir:      dir,
		debounce: DefaultDebounce,
		watcher:  fsw,
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run blocks, invoking fn with a batch of changed fragment paths after each
// quiet period. It returns nil when the watcher is closed and ctx.Err() when
// the context ends.
func (w *Watcher) Run(ctx context.Context, fn func(Event)) error {
	pending := make(map[string]struct{})

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})
			timer = nil
			timerC = nil
			fn(Event{Paths: paths})

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			// Transient watch errors are dropped; the next event batch
			// triggers a fresh run over the whole directory anyway.
		}
	}
}

// relevant reports whether the event concerns a fragment we care about.
// Editors rename temp files into place, so Create and Rename count as
// changes alongside Write and Remove.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	return IsFragment(event.Name)
}

// IsFragment reports whether the path looks like a release-note fragment:
// an .inc or .rst file that is not hidden and not an editor artifact.
func IsFragment(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp") {
		return false
	}
	ext := filepath.Ext(base)
	return ext == ".inc" || ext == ".rst"
}

// Close stops the watcher and releases resources. Run returns nil after
// Close. Close is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	return w.watcher.Close()
}
