package systems

import (
	"github.com/spaghettifunk/sdengine/engine/assets"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/renderer"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
	"github.com/spaghettifunk/sdengine/engine/scene"
)

// Renderer is the part of the renderer front-end the passes draw through.
type Renderer interface {
	Draw(cmd *metadata.DrawCommand) error
	MainTarget() *renderer.Framebuffer
	CreateFramebuffer(desc *metadata.RenderTargetDesc) (*renderer.Framebuffer, error)
}

// handleCache keeps one counted handle per asset a system draws with, so
// per-frame lookups do not touch the reference counts. When a handle no
// longer matches the cached record (hot reload, explicit unload) it is
// released and the asset fetched again from the same path, which reuses a
// reload another system already did.
type handleCache[T any] struct {
	assets  *assets.Manager
	handles map[core.ResourceID]*assets.Handle[T]
	paths   map[string]core.ResourceID
}

func newHandleCache[T any](m *assets.Manager) *handleCache[T] {
	return &handleCache[T]{
		assets:  m,
		handles: make(map[core.ResourceID]*assets.Handle[T]),
		paths:   make(map[string]core.ResourceID),
	}
}

func (c *handleCache[T]) get(id core.ResourceID) (T, error) {
	if h, ok := c.handles[id]; ok {
		if h.Current() {
			return h.Value(), nil
		}
		path := h.Path()
		h.Release()
		delete(c.handles, id)
		if _, err := assets.Load[T](c.assets, path); err != nil {
			var zero T
			return zero, err
		}
	}

	h, err := assets.Get[T](c.assets, id)
	if err != nil {
		var zero T
		return zero, err
	}
	c.handles[id] = h
	return h.Value(), nil
}

// byPath resolves an asset path referenced from another asset (a material's
// shader or diffuse map) and remembers its id.
func (c *handleCache[T]) byPath(path string) (T, error) {
	id, ok := c.paths[path]
	if !ok {
		var err error
		if id, err = assets.Load[T](c.assets, path); err != nil {
			var zero T
			return zero, err
		}
		c.paths[path] = id
	}
	return c.get(id)
}

func (c *handleCache[T]) releaseAll() {
	for id, h := range c.handles {
		h.Release()
		delete(c.handles, id)
	}
	c.paths = make(map[string]core.ResourceID)
}

// primaryCamera returns the camera flagged primary, or the first camera when
// none is.
func primaryCamera(sc *scene.Scene) (*scene.Camera, bool) {
	if sc == nil {
		return nil, false
	}
	var first, primary *scene.Camera
	scene.View(sc, func(_ scene.Entity, cam *scene.Camera) {
		if first == nil {
			first = cam
		}
		if primary == nil && cam.Primary {
			primary = cam
		}
	})
	if primary != nil {
		return primary, true
	}
	return first, first != nil
}

// primaryLight returns the light flagged primary, or the first light.
func primaryLight(sc *scene.Scene) (*scene.Light, bool) {
	if sc == nil {
		return nil, false
	}
	var first, primary *scene.Light
	scene.View(sc, func(_ scene.Entity, l *scene.Light) {
		if first == nil {
			first = l
		}
		if primary == nil && l.Primary {
			primary = l
		}
	})
	if primary != nil {
		return primary, true
	}
	return first, first != nil
}
