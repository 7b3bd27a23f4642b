package assets

import (
	"sync/atomic"

	"github.com/spaghettifunk/sdengine/engine/core"
)

// Handle is a counted reference to a cached payload. The payload stays valid
// until Release, even if the manager unloads or evicts the asset meanwhile.
type Handle[T any] struct {
	manager  *Manager
	rec      *record
	value    T
	released atomic.Bool
}

func (h *Handle[T]) ID() core.ResourceID {
	return h.rec.id
}

func (h *Handle[T]) Path() string {
	return h.rec.path
}

func (h *Handle[T]) Kind() Kind {
	return h.rec.kind
}

func (h *Handle[T]) Value() T {
	return h.value
}

// Current reports whether the manager still caches the payload this handle
// holds. It turns false after an unload or a hot-reload eviction, even when
// the same id has been loaded again since.
func (h *Handle[T]) Current() bool {
	h.manager.mu.RLock()
	defer h.manager.mu.RUnlock()
	return h.manager.records[h.rec.id] == h.rec
}

// Release drops this handle's reference. Calling it more than once is a no-op.
func (h *Handle[T]) Release() {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return
	}
	h.manager.release(h.rec)
}
