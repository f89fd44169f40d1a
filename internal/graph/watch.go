package graph

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a legacy JSON directory for out-of-band writes
// (another process dropping a fresh graph.json/pagerank.json) and
// triggers MigrateFromJSON when one appears, per §4.K. WatchLegacyDir
// starts its event loop in a goroutine of its own; callers Close it on
// shutdown.
type Watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// WatchLegacyDir starts watching dir for graph.json/pagerank.json
// changes and runs store.MigrateFromJSON whenever graph.json is created
// or written.
func WatchLegacyDir(store *Store, dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, done: make(chan struct{})}
	graphPath := filepath.Join(dir, "graph.json")
	pagerankPath := filepath.Join(dir, "pagerank.json")

	go func() {
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if event.Name != graphPath {
					continue
				}
				if !(event.Op&(fsnotify.Create|fsnotify.Write) != 0) {
					continue
				}
				if err := store.MigrateFromJSON(graphPath, pagerankPath); err != nil {
					slog.Warn("graph: legacy watch migration failed", "err", err)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				slog.Warn("graph: legacy watch error", "err", err)
			case <-w.done:
				return
			}
		}
	}()

	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
