// Package configwatcher monitors the sqsout TOML config file and
// applies threshold changes to a running output without a restart.
// Only the three batch thresholds are live-reloadable; queue and
// transport settings still require a restart.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tilteng/logstash-output-sqs/internal/cliconfig"
	"github.com/tilteng/logstash-output-sqs/pkg/log"
	"github.com/tilteng/logstash-output-sqs/pkg/sqsout"
)

// Config holds configuration options for the watcher.
type Config struct {
	// DebounceDelay is how long to wait after a file change before
	// reloading, coalescing editor write bursts. Default: 100ms.
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{DebounceDelay: 100 * time.Millisecond}
}

// Watcher reloads batch thresholds from a config file on change.
type Watcher struct {
	path          string
	base          cliconfig.Config
	out           *sqsout.Output
	logger        log.Logger
	debounceDelay time.Duration

	mu       sync.Mutex
	debounce *time.Timer
}

// New creates a watcher for the given config file path. base is the
// resolved startup configuration; file values overlay it on each
// reload.
func New(path string, base cliconfig.Config, out *sqsout.Output, logger log.Logger, cfg Config) *Watcher {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Watcher{
		path:          path,
		base:          base,
		out:           out,
		logger:        logger,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Run watches the config file's directory until the context is
// cancelled. Watching the directory rather than the file survives the
// rename-and-replace pattern editors and config managers use.
func (w *Watcher) Run(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("config watcher disabled: cannot create watcher", log.Err(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		w.logger.Warn("config watcher disabled: cannot watch directory",
			log.String("dir", filepath.Dir(w.path)),
			log.Err(err),
		)
		return
	}

	w.logger.Info("watching config file", log.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) debounceReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	fc, err := cliconfig.LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("config reload failed, keeping current thresholds",
			log.String("path", w.path),
			log.Err(err),
		)
		return
	}

	cfg := w.base
	if err := cliconfig.ApplyFileConfig(&cfg, fc, nil); err != nil {
		w.logger.Warn("config reload failed, keeping current thresholds", log.Err(err))
		return
	}
	cfg.ApplyDeprecated(w.logger)

	timeout := time.Duration(cfg.BatchTimeout) * time.Second
	if err := w.out.UpdateThresholds(cfg.BatchSize, cfg.BatchBytesize, timeout); err != nil {
		w.logger.Warn("rejected reloaded thresholds", log.Err(err))
	}
}
