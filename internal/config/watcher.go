package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultReloadDelay coalesces the burst of events editors emit on save.
const DefaultReloadDelay = 100 * time.Millisecond

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	path     string
	delay    time.Duration
	onChange func(FileConfig)
	log      zerolog.Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher creates a watcher for path. onChange runs on its own goroutine
// with the freshly parsed file.
func NewWatcher(path string, log zerolog.Logger, onChange func(FileConfig)) *Watcher {
	return &Watcher{
		path:     path,
		delay:    DefaultReloadDelay,
		onChange: onChange,
		log:      log,
	}
}

// Run watches the config directory until ctx is done. The directory must
// exist; the file itself may be created later.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, w.reload)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}

func (w *Watcher) reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("config reload failed")
		return
	}
	w.log.Info().Str("path", w.path).Msg("config reloaded")
	w.onChange(fc)
}
