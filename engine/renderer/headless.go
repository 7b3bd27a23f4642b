package renderer

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

// DrawRecord is one draw call as seen by the headless backend.
type DrawRecord struct {
	Frame  uint64
	Target metadata.GPUHandle
	Cmd    metadata.DrawCommand
}

type headlessResource struct {
	kind   metadata.GPUResourceType
	name   string
	width  uint32
	height uint32
	bytes  int
}

// Headless is a backend without a GPU. Resources live in host memory and
// draw calls are recorded, which makes it the backend for tools and tests.
type Headless struct {
	mu        sync.Mutex
	nextID    metadata.GPUHandle
	resources map[metadata.GPUHandle]*headlessResource
	destroyed map[metadata.GPUHandle]int

	frame   uint64
	inFrame bool
	bound   metadata.GPUHandle
	draws   []DrawRecord

	width  uint32
	height uint32
}

var _ RendererBackend = (*Headless)(nil)

func NewHeadless() *Headless {
	return &Headless{
		resources: make(map[metadata.GPUHandle]*headlessResource),
		destroyed: make(map[metadata.GPUHandle]int),
	}
}

func (h *Headless) Initialize(appName string, appWidth, appHeight uint32) error {
	h.width = appWidth
	h.height = appHeight
	return nil
}

func (h *Headless) Shutdown() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resources = make(map[metadata.GPUHandle]*headlessResource)
	return nil
}

func (h *Headless) Resized(width, height uint32) error {
	h.width = width
	h.height = height
	return nil
}

func (h *Headless) BeginFrame(deltaTime float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inFrame {
		return fmt.Errorf("BeginFrame called twice without EndFrame")
	}
	h.inFrame = true
	h.draws = h.draws[:0]
	return nil
}

func (h *Headless) EndFrame(deltaTime float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.inFrame {
		return fmt.Errorf("EndFrame called without BeginFrame")
	}
	h.inFrame = false
	h.frame++
	return nil
}

func (h *Headless) CreateTexture(desc *metadata.TextureDesc) (metadata.GPUHandle, error) {
	want := 1
	kind := metadata.GPUResourceTexture
	if desc.Cubemap {
		want = 6
		kind = metadata.GPUResourceCubemap
	}
	if len(desc.Layers) != want {
		return metadata.InvalidGPUHandle, fmt.Errorf("texture '%s' expects %d layers, got %d", desc.Name, want, len(desc.Layers))
	}
	size := int(desc.Width) * int(desc.Height) * int(desc.ChannelCount)
	total := 0
	for i, layer := range desc.Layers {
		if len(layer) != size {
			return metadata.InvalidGPUHandle, fmt.Errorf("texture '%s' layer %d has %d bytes, expected %d", desc.Name, i, len(layer), size)
		}
		total += len(layer)
	}
	return h.add(&headlessResource{kind: kind, name: desc.Name, width: desc.Width, height: desc.Height, bytes: total}), nil
}

func (h *Headless) CreateShader(desc *metadata.ShaderDesc) (metadata.GPUHandle, error) {
	if len(desc.Code) == 0 {
		return metadata.InvalidGPUHandle, fmt.Errorf("shader '%s' has no code", desc.Name)
	}
	return h.add(&headlessResource{kind: metadata.GPUResourceShader, name: desc.Name, bytes: len(desc.Code) * 4}), nil
}

func (h *Headless) CreateBuffer(desc *metadata.BufferDesc) (metadata.GPUHandle, error) {
	return h.add(&headlessResource{kind: metadata.GPUResourceBuffer, name: desc.Name, bytes: len(desc.Data)}), nil
}

func (h *Headless) CreateRenderTarget(desc *metadata.RenderTargetDesc) (metadata.GPUHandle, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return metadata.InvalidGPUHandle, fmt.Errorf("render target '%s' has zero size", desc.Name)
	}
	return h.add(&headlessResource{kind: metadata.GPUResourceRenderTarget, name: desc.Name, width: desc.Width, height: desc.Height}), nil
}

func (h *Headless) BindRenderTarget(target metadata.GPUHandle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if target.IsValid() {
		res, ok := h.resources[target]
		if !ok || res.kind != metadata.GPUResourceRenderTarget {
			return fmt.Errorf("%s is not a render target", target)
		}
	}
	h.bound = target
	return nil
}

func (h *Headless) Draw(cmd *metadata.DrawCommand) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.inFrame {
		return fmt.Errorf("draw outside of a frame")
	}
	if cmd.Shader.IsValid() {
		if _, ok := h.resources[cmd.Shader]; !ok {
			return fmt.Errorf("draw with unknown shader %s", cmd.Shader)
		}
	}
	for _, t := range cmd.Textures {
		if _, ok := h.resources[t]; !ok {
			return fmt.Errorf("draw with unknown texture %s", t)
		}
	}
	h.draws = append(h.draws, DrawRecord{Frame: h.frame, Target: h.bound, Cmd: *cmd})
	return nil
}

func (h *Headless) Destroy(handle metadata.GPUHandle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.resources[handle]; !ok {
		return fmt.Errorf("destroy of unknown resource %s", handle)
	}
	delete(h.resources, handle)
	h.destroyed[handle]++
	return nil
}

// Draws returns the draw calls recorded in the current (or last) frame.
func (h *Headless) Draws() []DrawRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]DrawRecord, len(h.draws))
	copy(out, h.draws)
	return out
}

// Live reports whether the handle still refers to a resource.
func (h *Headless) Live(handle metadata.GPUHandle) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.resources[handle]
	return ok
}

// DestroyCount returns how many times the handle was destroyed.
func (h *Headless) DestroyCount(handle metadata.GPUHandle) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.destroyed[handle]
}

func (h *Headless) ResourceCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.resources)
}

func (h *Headless) add(res *headlessResource) metadata.GPUHandle {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.resources[h.nextID] = res
	return h.nextID
}
