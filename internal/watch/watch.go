// Package watch feeds file-system changes into the in-memory indices,
// keeping them fresh between full rebuilds.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/paravault/paravault/internal/storage"
)

// Index is the incremental-update surface both indices expose.
type Index interface {
	Update(path string) error
	Remove(path string) error
	Paths() []string
}

// reconcileDelay debounces the rename reconciliation pass.
const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the vault root and applies file
// change events to every index until ctx is cancelled. Directories
// created at runtime are added to the watch list; rename events trigger
// a debounced reconciliation that drops index entries whose files no
// longer exist.
func Watch(ctx context.Context, store storage.Provider, logger *slog.Logger, indices ...Index) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(store, logger, indices)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					indexDir(store, root, absPath, logger, indices)
					continue
				}
			}

			// Renamed directories carry no markdown extension, so
			// reconcile on any rename before the extension guard.
			if ev.Op&fsnotify.Rename != 0 {
				scheduleReconcile()
				continue
			}

			if !storage.IsMarkdown(absPath) {
				continue
			}
			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				apply(indices, rel, logger, "update")
			case ev.Op&fsnotify.Remove != 0:
				remove(indices, rel, logger)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func apply(indices []Index, rel string, logger *slog.Logger, op string) {
	for _, idx := range indices {
		if err := idx.Update(rel); err != nil {
			logger.Warn("watcher: "+op+" failed",
				slog.String("path", rel),
				slog.String("error", err.Error()))
		}
	}
	logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", op))
}

func remove(indices []Index, rel string, logger *slog.Logger) {
	for _, idx := range indices {
		if err := idx.Remove(rel); err != nil {
			logger.Warn("watcher: remove failed",
				slog.String("path", rel),
				slog.String("error", err.Error()))
		}
	}
	logger.Debug("watcher: removed", slog.String("path", rel))
}

// reconcile drops index entries whose backing files disappeared, which
// is how renames of whole directories settle.
func reconcile(store storage.Provider, logger *slog.Logger, indices []Index) {
	for _, idx := range indices {
		for _, path := range idx.Paths() {
			if !store.Exists(path) {
				if err := idx.Remove(path); err != nil {
					logger.Warn("watcher: reconcile remove failed",
						slog.String("path", path),
						slog.String("error", err.Error()))
				}
			}
		}
	}
	logger.Debug("watcher: reconciled")
}

// indexDir indexes any markdown files already present in a newly
// created directory.
func indexDir(store storage.Provider, root, dir string, logger *slog.Logger, indices []Index) {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return
	}
	entries, err := store.List(filepath.ToSlash(rel))
	if err != nil {
		logger.Warn("watcher: list new dir failed",
			slog.String("path", dir),
			slog.String("error", err.Error()))
		return
	}
	for _, entry := range entries {
		apply(indices, entry.Path, logger, "update")
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
