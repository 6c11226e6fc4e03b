package server

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"chwresume/internal/errors"

	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = time.Second

// fileStamp identifies one version of a watched file
type fileStamp struct {
	modTime int64
	size    int64
}

// CertWatcher calls onChange after any of its PEM files is rewritten.
// Directories are watched too so atomic rename-into-place is seen.
type CertWatcher struct {
	mu sync.Mutex

	files    []string
	stamps   map[string]fileStamp
	debounce time.Duration
	onChange func()
	logger   *errors.Logger

	fsWatcher *fsnotify.Watcher
	timer     *time.Timer
	fire      chan struct{}
	stop      chan struct{}
	done      chan struct{}
}

// NewCertWatcher watches files, ignoring empty paths
func NewCertWatcher(files []string, debounce time.Duration, onChange func(), logger *errors.Logger) *CertWatcher {
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}

	var watched []string
	for _, f := range files {
		if f == "" {
			continue
		}
		if f = filepath.Clean(f); !slices.Contains(watched, f) {
			watched = append(watched, f)
		}
	}

	return &CertWatcher{
		files:    watched,
		stamps:   make(map[string]fileStamp),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		fire:     make(chan struct{}, 1),
	}
}

// Files returns the watched paths
func (cw *CertWatcher) Files() []string {
	return slices.Clone(cw.files)
}

// Start begins watching in the background
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.fsWatcher != nil {
		return fmt.Errorf("certificate watcher is already running")
	}
	if len(cw.files) == 0 {
		return fmt.Errorf("no certificate files to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dirs := make(map[string]bool)
	for _, f := range cw.files {
		cw.stamps[f] = stampOf(f)
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	cw.fsWatcher = watcher
	cw.stop = make(chan struct{})
	cw.done = make(chan struct{})
	go cw.loop(watcher, cw.stop, cw.done)

	cw.logger.Info("Certificate file watcher started",
		"files", cw.files,
		"debounce_delay", cw.debounce)
	return nil
}

// Stop ends watching and waits for the event loop to exit
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	if cw.fsWatcher == nil {
		cw.mu.Unlock()
		return nil
	}
	watcher, stop, done := cw.fsWatcher, cw.stop, cw.done
	cw.fsWatcher = nil
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.mu.Unlock()

	close(stop)
	err := watcher.Close()
	<-done

	if err != nil {
		cw.logger.LogError(err, "Failed to close file system watcher")
		return err
	}
	cw.logger.Info("Certificate file watcher stopped")
	return nil
}

// IsRunning reports whether Start has been called without Stop
func (cw *CertWatcher) IsRunning() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.fsWatcher != nil
}

func (cw *CertWatcher) loop(watcher *fsnotify.Watcher, stop, done chan struct{}) {
	defer close(done)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if cw.relevant(event) {
				cw.schedule()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			cw.logger.LogError(err, "File watcher error")

		case <-cw.fire:
			if cw.changed() {
				cw.logger.Info("Certificate files changed, triggering reload")
				cw.onChange()
			}

		case <-stop:
			return
		}
	}
}

func (cw *CertWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	return slices.Contains(cw.files, filepath.Clean(event.Name))
}

// schedule coalesces bursts of events into one check after the debounce delay
func (cw *CertWatcher) schedule() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, func() {
		select {
		case cw.fire <- struct{}{}:
		default:
		}
	})
}

// changed refreshes the stored stamps and reports whether any differed
func (cw *CertWatcher) changed() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	dirty := false
	for _, f := range cw.files {
		current := stampOf(f)
		if current != cw.stamps[f] {
			cw.stamps[f] = current
			dirty = true
		}
	}
	return dirty
}

// stampOf returns the zero stamp for a missing file
func stampOf(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{modTime: info.ModTime().UnixNano(), size: info.Size()}
}
