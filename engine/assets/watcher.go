package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/sdengine/engine/core"
)

// watcher queues paths of changed files. It never touches the cache; the
// frame thread drains the queue through ProcessChanges.
type watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	pending map[string]struct{}
	closed  bool
}

// Watch starts watching dir and all its sub-directories for changes to
// cached files.
func (m *Manager) Watch(dir string) error {
	root, err := m.Canonicalize(dir)
	if err != nil {
		return err
	}

	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	if m.watcher == nil {
		m.watcher = &watcher{pending: make(map[string]struct{})}
	}
	w := m.watcher
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return errors.New("asset watcher already closed")
	}
	if w.fs == nil {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		w.fs = fsWatch
		w.done = make(chan struct{})
		w.wg.Add(1)
		go m.watch(w)
	}
	if err := w.addRecursive(root); err != nil {
		return err
	}
	m.logger.Info("watching for asset changes", "dir", root)
	return nil
}

func (m *Manager) watch(w *watcher) {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					if err := w.addRecursive(e.Name); err != nil {
						m.logger.Warn("failed to watch new directory", "dir", e.Name, "err", err)
					}
					continue
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.queue(canonicalEventPath(e.Name))
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			m.logger.Error("asset watcher error", "err", err)

		case <-w.done:
			return
		}
	}
}

// addRecursive adds every directory under root to the watch list.
func (w *watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fs.Add(walkPath)
		}
		return nil
	})
}

func (w *watcher) queue(path string) {
	w.mu.Lock()
	w.pending[path] = struct{}{}
	w.mu.Unlock()
}

func (w *watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(paths)
	return paths
}

func canonicalEventPath(name string) string {
	abs, err := filepath.Abs(name)
	if err != nil {
		return filepath.Clean(name)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	// removed files cannot be resolved; resolve their directory instead
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}

// MarkChanged queues path as changed, as if the watcher had seen it.
func (m *Manager) MarkChanged(path string) error {
	canonical, err := m.Canonicalize(path)
	if err != nil {
		return err
	}
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	if m.watcher == nil {
		m.watcher = &watcher{pending: make(map[string]struct{})}
	}
	m.watcher.queue(canonical)
	return nil
}

// ProcessChanges evicts every cached asset whose file changed since the last
// call and fires EVENT_CODE_ASSET_CHANGED for each. The next Load of such a
// path reads the file again. Call it from the frame thread.
func (m *Manager) ProcessChanges() []core.ResourceID {
	m.watchMu.Lock()
	w := m.watcher
	m.watchMu.Unlock()
	if w == nil {
		return nil
	}

	var changed []core.ResourceID
	for _, path := range w.drain() {
		id := core.NewPathID(path)

		m.mu.Lock()
		rec, ok := m.records[id]
		if !ok || rec.path != path {
			m.mu.Unlock()
			continue
		}
		teardown := m.evictLocked(rec)
		m.mu.Unlock()

		if teardown {
			m.teardown(rec)
		}
		changed = append(changed, id)
		m.logger.Info("asset changed", "kind", rec.kind, "path", path)

		if m.events != nil {
			m.events.Fire(core.EventContext{
				Type: core.EVENT_CODE_ASSET_CHANGED,
				Data: core.AssetEvent{ID: id, Path: path},
			})
		}
	}
	return changed
}

// Close stops the watcher. Cached assets are left untouched.
func (m *Manager) Close() error {
	m.watchMu.Lock()
	w := m.watcher
	m.watchMu.Unlock()
	if w == nil || w.fs == nil {
		return nil
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
