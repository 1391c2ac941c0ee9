package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const debounceDuration = 100 * time.Millisecond

// ParseLevel maps a configured level name onto a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	return lvl, nil
}

// Watcher reloads the YAML config file when it changes and hands the
// result to the registered handlers. Only settings that are safe to change
// at runtime are applied by the handlers; the rest need a restart.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	mu       sync.RWMutex
	current  *Config
	onChange []func(*Config)
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher watches the file the config was loaded from
func NewWatcher(cfg *Config, logger *zap.Logger) (*Watcher, error) {
	if cfg.File == "" {
		return nil, fmt.Errorf("config was not loaded from a file")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory so atomic saves (write then rename) are seen.
	if err := fw.Add(filepath.Dir(cfg.File)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &Watcher{
		path:    cfg.File,
		watcher: fw,
		current: cfg,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// OnChange registers a handler called with each successfully reloaded config
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Current returns the last good configuration
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Start begins watching for configuration changes
func (w *Watcher) Start() {
	go w.watchLoop()
	w.logger.Info("Configuration watcher started", zap.String("path", w.path))
}

// Stop stops watching for configuration changes
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Configuration watcher stopped")
	})
}

func (w *Watcher) watchLoop() {
	var debounce *time.Timer

	for {
		select {
		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDuration, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	next, err := LoadFrom(w.path)
	if err != nil {
		// Keep running on the last good config.
		w.logger.Error("Failed to reload config", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = next
	handlers := append([]func(*Config){}, w.onChange...)
	w.mu.Unlock()

	w.logger.Info("Configuration reloaded",
		zap.String("path", w.path),
		zap.String("logLevel", next.Logging.Level))
	for _, fn := range handlers {
		fn(next)
	}
}

// ApplyLogLevel returns a handler that moves level to the reloaded log level
func ApplyLogLevel(level zap.AtomicLevel) func(*Config) {
	return func(cfg *Config) {
		if lvl, err := ParseLevel(cfg.Logging.Level); err == nil {
			level.SetLevel(lvl)
		}
	}
}
