// Package watch reruns a callback when declaration files change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is the quiet period before changed files are reported.
const DefaultDelay = 100 * time.Millisecond

// Watcher monitors a fixed set of files and reports changes in batches.
type Watcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	files     map[string]struct{}
	log       *zap.Logger
}

// New creates a watcher for the given files. The parent directories are
// watched so that files replaced by editors keep being tracked.
func New(files []string, delay time.Duration, log *zap.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("watch: no files to watch")
	}
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create file watcher: %w", err)
	}
	w := &Watcher{
		watcher:   fw,
		debouncer: NewDebouncer(delay),
		files:     make(map[string]struct{}, len(files)),
		log:       log,
	}
	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch: resolve %s: %w", f, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch: watch directory %s: %w", dir, err)
		}
		log.Debug("watching directory", zap.String("dir", dir))
	}
	return w, nil
}

// Run blocks until ctx is done, calling onChange with the sorted list of
// changed files after each quiet period. Callback errors are logged and do
// not stop the watcher.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context, []string) error) error {
	defer w.watcher.Close()
	w.debouncer.SetCallback(func(files []string) {
		if err := onChange(ctx, files); err != nil {
			w.log.Error("handling file changes", zap.Strings("files", files), zap.Error(err))
		}
	})
	defer w.debouncer.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			w.debouncer.Add(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}

// Debouncer collects file changes and triggers callbacks after a delay.
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mu       sync.Mutex
	callback func([]string)
	stopped  bool
}

// NewDebouncer creates a new debouncer instance.
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration <= 0 {
		duration = DefaultDelay
	}
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
	}
}

// Add records a changed file and restarts the quiet period.
func (d *Debouncer) Add(file string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.files[file] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

// flush triggers the callback with accumulated files.
func (d *Debouncer) flush() {
	d.mu.Lock()
	if len(d.files) == 0 || d.stopped {
		d.mu.Unlock()
		return
	}
	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	d.files = make(map[string]struct{})
	callback := d.callback
	d.mu.Unlock()

	sort.Strings(files)
	if callback != nil {
		callback(files)
	}
}

// SetCallback sets the callback function.
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callback = callback
}

// Stop stops the debouncer. Pending changes are dropped.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.stopped = true
}
