// Package watch reruns generation when input files change.
package watch

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before reporting it.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changed input files in debounced batches.
type Watcher struct {
	watcher  *fsnotify.Watcher
	match    func(path string) bool
	debounce time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	fire    chan struct{}
}

// Options configures a Watcher.
type Options struct {
	// Match selects the files whose changes are reported. Generated
	// outputs must not match, or every run would trigger the next.
	Match func(path string) bool
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	Logger   *zap.Logger
}

// New watches dirs. Subdirectories are not watched.
func New(dirs []string, opts Options) (*Watcher, error) {
	if opts.Match == nil {
		return nil, errors.New("watch: Match is required")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "watch %s", dir)
		}
	}

	w := &Watcher{
		watcher:  fw,
		match:    opts.Match,
		debounce: opts.Debounce,
		log:      opts.Logger,
		pending:  make(map[string]struct{}),
		fire:     make(chan struct{}, 1),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	return w, nil
}

// Run calls fn with each batch of changed paths, sorted, until ctx is done
// or the watcher is closed. Calls to fn never overlap.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, changed []string)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(event.Name)
			if !w.match(path) {
				continue
			}
			w.log.Debug("change detected", zap.String("file", path), zap.Stringer("op", event.Op))
			w.schedule(path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))

		case <-w.fire:
			if changed := w.drain(); len(changed) > 0 {
				fn(ctx, changed)
			}
		}
	}
}

// Close stops watching. A running Run returns nil.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	clear(w.pending)
	slices.Sort(changed)
	return changed
}
