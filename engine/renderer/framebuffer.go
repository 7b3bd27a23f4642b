package renderer

import "github.com/spaghettifunk/sdengine/engine/renderer/metadata"

// Framebuffer is a RenderTarget backed by a backend render target handle, or
// by the back buffer when the handle is invalid.
type Framebuffer struct {
	renderer *Renderer
	handle   metadata.GPUHandle
	name     string
	width    uint32
	height   uint32
}

var _ metadata.RenderTarget = (*Framebuffer)(nil)

func (fb *Framebuffer) Bind() error {
	return fb.renderer.bind(fb.handle)
}

func (fb *Framebuffer) Size() (uint32, uint32) {
	return fb.width, fb.height
}

func (fb *Framebuffer) Handle() metadata.GPUHandle {
	return fb.handle
}

func (fb *Framebuffer) Name() string {
	return fb.name
}

// Aspect returns width/height, or 1 for a zero-sized target.
func (fb *Framebuffer) Aspect() float32 {
	if fb.height == 0 {
		return 1
	}
	return float32(fb.width) / float32(fb.height)
}

// Destroy releases the offscreen target. The back buffer is never destroyed.
func (fb *Framebuffer) Destroy() error {
	if !fb.handle.IsValid() {
		return nil
	}
	err := fb.renderer.Destroy(fb.handle)
	fb.handle = metadata.InvalidGPUHandle
	return err
}
