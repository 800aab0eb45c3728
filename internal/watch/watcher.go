// Package watch reports batches of changed declaration files.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is how long a batch of changes settles before it is reported
const DefaultDelay = 100 * time.Millisecond

// DeclarationPatterns match declaration files inside watched directories
var DeclarationPatterns = []string{"*.yml", "*.yaml"}

// FileWatcher watches files and directories and reports debounced batches of changes
type FileWatcher struct {
	debouncer *Debouncer
	// dirs report entries matching patterns; files report only themselves
	dirs     map[string]bool
	files    map[string]bool
	patterns []string
	ignored  []string
	logger   *zap.Logger
	changes  chan []string
}

// NewFileWatcher watches paths. A directory reports changes of entries matching
// patterns; a file reports its own changes.
func NewFileWatcher(paths, patterns []string, logger *zap.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fw := &FileWatcher{
		dirs:     make(map[string]bool),
		files:    make(map[string]bool),
		patterns: patterns,
		ignored:  []string{"*.swp", "*.swx", "*~", "*.tmp"},
		logger:   logger,
		changes:  make(chan []string, 1),
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot watch %s: %w", p, err)
		}
		clean := filepath.Clean(p)
		if info.IsDir() {
			fw.dirs[clean] = true
		} else {
			fw.files[clean] = true
		}
	}
	if len(fw.dirs) == 0 && len(fw.files) == 0 {
		return nil, fmt.Errorf("nothing to watch")
	}

	fw.debouncer = NewDebouncer(DefaultDelay)
	return fw, nil
}

// Run watches until ctx is done, calling onChange with every settled batch.
// An onChange error is logged and watching continues.
func (fw *FileWatcher) Run(ctx context.Context, onChange func(ctx context.Context, files []string) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	defer fw.debouncer.Stop()

	for _, dir := range fw.watchedDirs() {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fw.logger.Debug("watching directory", zap.String("dir", dir))
	}

	fw.debouncer.SetCallback(func(files []string) {
		select {
		case fw.changes <- files:
		case <-ctx.Done():
		}
	})

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !fw.relevant(event) {
				continue
			}
			fw.logger.Debug("file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			fw.debouncer.Add(filepath.Clean(event.Name))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("watch error", zap.Error(err))

		case files := <-fw.changes:
			if err := onChange(ctx, files); err != nil {
				fw.logger.Error("change handler failed", zap.Strings("files", files), zap.Error(err))
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// watchedDirs returns the directories to subscribe to, sorted
func (fw *FileWatcher) watchedDirs() []string {
	set := make(map[string]bool, len(fw.dirs)+len(fw.files))
	for dir := range fw.dirs {
		set[dir] = true
	}
	for file := range fw.files {
		set[filepath.Dir(file)] = true
	}
	dirs := make([]string, 0, len(set))
	for dir := range set {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if fw.files[name] {
		return true
	}
	if fw.shouldIgnore(name) {
		return false
	}
	return fw.dirs[filepath.Dir(name)] && fw.matchesPattern(name)
}

func (fw *FileWatcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, pattern := range fw.ignored {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) matchesPattern(path string) bool {
	if len(fw.patterns) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, pattern := range fw.patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// Debouncer collects file names and reports them once no new name arrived for its delay
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
	stopped  bool
}

// NewDebouncer creates a debouncer with the given delay
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
	}
}

// Add records a file and restarts the delay
func (d *Debouncer) Add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}
	d.files[file] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

// flush reports the collected files in sorted order
func (d *Debouncer) flush() {
	d.mutex.Lock()
	if len(d.files) == 0 || d.stopped {
		d.mutex.Unlock()
		return
	}
	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	d.files = make(map[string]struct{})
	callback := d.callback
	d.mutex.Unlock()

	sort.Strings(files)
	if callback != nil {
		callback(files)
	}
}

// SetCallback sets the function receiving each batch
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Stop discards pending files; later Adds are ignored
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.stopped = true
	d.files = make(map[string]struct{})
}
