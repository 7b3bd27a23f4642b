package renderer

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
	"github.com/spaghettifunk/sdengine/engine/renderer/vulkan"
)

type Config struct {
	Type    metadata.RendererType
	AppName string
	Width   uint32
	Height  uint32
	// Window is required by GPU backends that present to a window.
	Window metadata.WindowSurface
}

// Renderer is the front-end every system draws through. It owns the backend
// and refuses resource work once the backend has been shut down, so GPU
// teardown can never run against a destroyed context.
type Renderer struct {
	backend RendererBackend
	rtype   metadata.RendererType

	mu       sync.Mutex
	live     map[metadata.GPUHandle]struct{}
	shutdown bool

	main        *Framebuffer
	bound       metadata.GPUHandle
	frameNumber uint64
}

// New selects the backend for cfg.Type. Requesting an API without an
// implementation fails with core.ErrUnsupportedBackend.
func New(cfg Config) (*Renderer, error) {
	var backend RendererBackend
	switch cfg.Type {
	case metadata.RendererTypeHeadless:
		backend = NewHeadless()
	case metadata.RendererTypeVulkan:
		if cfg.Window == nil {
			return nil, fmt.Errorf("vulkan backend requires a window surface")
		}
		backend = vulkan.New(cfg.Window)
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedBackend, cfg.Type)
	}
	return NewWithBackend(cfg, backend), nil
}

// NewWithBackend wraps an already constructed backend.
func NewWithBackend(cfg Config, backend RendererBackend) *Renderer {
	r := &Renderer{
		backend: backend,
		rtype:   cfg.Type,
		live:    make(map[metadata.GPUHandle]struct{}),
	}
	r.main = &Framebuffer{
		renderer: r,
		handle:   metadata.InvalidGPUHandle,
		name:     "main",
		width:    cfg.Width,
		height:   cfg.Height,
	}
	return r
}

func (r *Renderer) Initialize(appName string) error {
	w, h := r.main.Size()
	if err := r.backend.Initialize(appName, w, h); err != nil {
		core.LogError("failed to initialize %s renderer: %s", r.rtype, err)
		return err
	}
	core.LogInfo("%s renderer initialized (%dx%d).", r.rtype, w, h)
	return nil
}

// Shutdown destroys every GPU resource still alive and then the backend.
func (r *Renderer) Shutdown() error {
	r.mu.Lock()
	if r.shutdown {
		r.mu.Unlock()
		return nil
	}
	leaked := make([]metadata.GPUHandle, 0, len(r.live))
	for h := range r.live {
		leaked = append(leaked, h)
	}
	r.live = make(map[metadata.GPUHandle]struct{})
	r.shutdown = true
	r.mu.Unlock()

	if len(leaked) > 0 {
		core.LogWarn("renderer shutting down with %d live GPU resources, destroying them", len(leaked))
	}
	for _, h := range leaked {
		if err := r.backend.Destroy(h); err != nil {
			core.LogError(err.Error())
		}
	}
	return r.backend.Shutdown()
}

func (r *Renderer) Type() metadata.RendererType {
	return r.rtype
}

func (r *Renderer) Backend() RendererBackend {
	return r.backend
}

func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

// MainTarget is the back buffer. Its size follows window resizes.
func (r *Renderer) MainTarget() *Framebuffer {
	return r.main
}

func (r *Renderer) OnResize(width, height uint32) error {
	r.main.width = width
	r.main.height = height
	return r.backend.Resized(width, height)
}

func (r *Renderer) BeginFrame(deltaTime float64) error {
	if err := r.backend.BeginFrame(deltaTime); err != nil {
		return err
	}
	// every frame starts on the back buffer
	return r.bind(metadata.InvalidGPUHandle)
}

func (r *Renderer) EndFrame(deltaTime float64) error {
	if err := r.backend.EndFrame(deltaTime); err != nil {
		core.LogError("RendererEndFrame failed: %s", err)
		return err
	}
	r.frameNumber++
	return nil
}

func (r *Renderer) Draw(cmd *metadata.DrawCommand) error {
	return r.backend.Draw(cmd)
}

func (r *Renderer) CreateTexture(desc *metadata.TextureDesc) (metadata.GPUHandle, error) {
	return r.track(func() (metadata.GPUHandle, error) { return r.backend.CreateTexture(desc) })
}

func (r *Renderer) CreateShader(desc *metadata.ShaderDesc) (metadata.GPUHandle, error) {
	return r.track(func() (metadata.GPUHandle, error) { return r.backend.CreateShader(desc) })
}

func (r *Renderer) CreateBuffer(desc *metadata.BufferDesc) (metadata.GPUHandle, error) {
	return r.track(func() (metadata.GPUHandle, error) { return r.backend.CreateBuffer(desc) })
}

// CreateFramebuffer creates an offscreen render target, e.g. a shadow map.
func (r *Renderer) CreateFramebuffer(desc *metadata.RenderTargetDesc) (*Framebuffer, error) {
	h, err := r.track(func() (metadata.GPUHandle, error) { return r.backend.CreateRenderTarget(desc) })
	if err != nil {
		return nil, err
	}
	return &Framebuffer{
		renderer: r,
		handle:   h,
		name:     desc.Name,
		width:    desc.Width,
		height:   desc.Height,
	}, nil
}

// Destroy releases a GPU resource. Destroying after Shutdown is a no-op that
// only warns: the backend is gone and already released everything.
func (r *Renderer) Destroy(handle metadata.GPUHandle) error {
	r.mu.Lock()
	if r.shutdown {
		r.mu.Unlock()
		core.LogWarn("destroy of %s after renderer shutdown ignored", handle)
		return nil
	}
	if _, ok := r.live[handle]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("destroy of unknown GPU resource %s", handle)
	}
	delete(r.live, handle)
	r.mu.Unlock()
	return r.backend.Destroy(handle)
}

// LiveResources returns the number of GPU resources not yet destroyed.
func (r *Renderer) LiveResources() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func (r *Renderer) track(create func() (metadata.GPUHandle, error)) (metadata.GPUHandle, error) {
	r.mu.Lock()
	if r.shutdown {
		r.mu.Unlock()
		return metadata.InvalidGPUHandle, fmt.Errorf("renderer already shut down")
	}
	r.mu.Unlock()

	h, err := create()
	if err != nil {
		return metadata.InvalidGPUHandle, err
	}
	r.mu.Lock()
	r.live[h] = struct{}{}
	r.mu.Unlock()
	return h, nil
}

func (r *Renderer) bind(target metadata.GPUHandle) error {
	if err := r.backend.BindRenderTarget(target); err != nil {
		return err
	}
	r.bound = target
	return nil
}

// BoundTarget returns the handle of the target draws currently go to.
func (r *Renderer) BoundTarget() metadata.GPUHandle {
	return r.bound
}
