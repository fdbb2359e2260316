package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the YAML config file on change and notifies subscribers.
// Reloading is only enabled in development and only when a file was loaded.
type Watcher struct {
	config    *Config
	callbacks []func(*Config)
	mu        sync.RWMutex
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewWatcher creates a watcher for the file the initial config came from
func NewWatcher(initial *Config, logger *zap.Logger) (*Watcher, error) {
	return newWatcher(initial, logger, defaultDebounce)
}

func newWatcher(initial *Config, logger *zap.Logger, debounce time.Duration) (*Watcher, error) {
	w := &Watcher{
		config:   initial,
		logger:   logger,
		debounce: debounce,
		stopCh:   make(chan struct{}),
	}

	if !initial.IsDevelopment() || initial.ConfigFile == "" {
		logger.Info("Configuration hot reloading disabled",
			zap.String("environment", initial.Environment),
			zap.String("file", initial.ConfigFile),
		)
		return w, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// editors replace files on save, so watch the directory
	if err := fsWatcher.Add(filepath.Dir(initial.ConfigFile)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}
	w.watcher = fsWatcher

	go w.watchLoop(filepath.Clean(initial.ConfigFile))

	logger.Info("Configuration hot reloading enabled",
		zap.String("file", initial.ConfigFile),
	)
	return w, nil
}

// OnChange registers a callback run after each successful reload
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, callback)
	w.mu.Unlock()
}

// Config returns the current configuration
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop stops watching
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

func (w *Watcher) watchLoop(target string) {
	defer w.watcher.Close()

	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.Debug("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			w.logger.Info("Stopping configuration watcher")
			return
		}
	}
}

func (w *Watcher) reload() {
	current := w.Config()

	next, err := LoadFrom(current.ConfigFile)
	if err != nil {
		w.logger.Error("Invalid configuration after reload, keeping previous", zap.Error(err))
		return
	}
	if reflect.DeepEqual(current, next) {
		w.logger.Debug("Configuration unchanged after reload")
		return
	}

	w.mu.Lock()
	w.config = next
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for i, cb := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("Config callback panicked",
						zap.Int("callback_index", i),
						zap.Any("panic", r),
					)
				}
			}()
			cb(next)
		}()
	}

	w.logger.Info("Configuration reloaded",
		zap.Int("callbacks_notified", len(callbacks)),
	)
}
