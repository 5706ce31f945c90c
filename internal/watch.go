package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

var ErrAlreadyWatching = errors.New("already watching")

// debounce merges bursts of writes to the same file into one event.
const debounce = 100 * time.Millisecond

// IsTraceFile reports whether path names a trace file.
func IsTraceFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Watcher calls a handler whenever a trace file under the watched
// directories is written.
type Watcher struct {
	watcher   *fsnotify.Watcher
	watchDirs []string
	handle    func(path string)
	logger    *zap.Logger

	mu         sync.Mutex
	isWatching bool
	done       chan struct{}
}

func NewWatcher(handle func(path string), logger *zap.Logger, dirs ...string) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	return &Watcher{
		watcher:   fw,
		watchDirs: dirs,
		handle:    handle,
		logger:    logger,
	}, nil
}

// Start registers every directory below the watched roots and starts
// delivering events.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isWatching {
		return ErrAlreadyWatching
	}

	for _, dir := range w.watchDirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return w.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	w.isWatching = true
	w.done = make(chan struct{})
	go w.watchLoop(w.done)
	return nil
}

// Stop closes the underlying watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.isWatching {
		w.mu.Unlock()
		w.logger.Warn("Stop called on a watcher that is not running")
		return nil
	}
	w.isWatching = false
	done := w.done
	w.mu.Unlock()

	err := w.watcher.Close()
	<-done
	return err
}

func (w *Watcher) watchLoop(done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !IsTraceFile(event.Name) {
		return
	}
	time.Sleep(debounce)
	w.logger.Debug("Trace changed", zap.String("file", event.Name))
	w.handle(event.Name)
}
