package permission

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher applies a permissions file to a Cache every time the file changes.
type Watcher struct {
	path   string
	cache  *Cache
	logger *zap.Logger
}

// NewWatcher creates a watcher for path.
func NewWatcher(path string, cache *Cache, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:   filepath.Clean(path),
		cache:  cache,
		logger: logger,
	}
}

// Apply loads the file and writes its rules through the cache.
func (w *Watcher) Apply(ctx context.Context) error {
	rules, err := LoadSeedFile(w.path)
	if err != nil {
		return err
	}
	if err := w.cache.Update(ctx, rules); err != nil {
		return fmt.Errorf("failed to apply permissions: %w", err)
	}
	w.logger.Info("permissions applied",
		zap.String("path", w.path),
		zap.Int("rules", len(rules)))
	return nil
}

// Run blocks until ctx is done, reapplying the file on every write. The
// parent directory is watched so that editors which replace the file by
// rename are noticed too. A bad file is logged and the previous rules stay
// in effect.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := w.Apply(ctx); err != nil {
				w.logger.Error("permissions file rejected", zap.String("path", w.path), zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}
