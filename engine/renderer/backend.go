package renderer

import "github.com/spaghettifunk/sdengine/engine/renderer/metadata"

// RendererBackend is implemented once per graphics API.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	CreateTexture(desc *metadata.TextureDesc) (metadata.GPUHandle, error)
	CreateShader(desc *metadata.ShaderDesc) (metadata.GPUHandle, error)
	CreateBuffer(desc *metadata.BufferDesc) (metadata.GPUHandle, error)
	CreateRenderTarget(desc *metadata.RenderTargetDesc) (metadata.GPUHandle, error)
	// BindRenderTarget makes the target current. InvalidGPUHandle selects the
	// swapchain/back buffer.
	BindRenderTarget(target metadata.GPUHandle) error
	Draw(cmd *metadata.DrawCommand) error
	Destroy(handle metadata.GPUHandle) error
}

// Device is the slice of the renderer that asset loaders need: creating and
// tearing down GPU resources.
type Device interface {
	CreateTexture(desc *metadata.TextureDesc) (metadata.GPUHandle, error)
	CreateShader(desc *metadata.ShaderDesc) (metadata.GPUHandle, error)
	CreateBuffer(desc *metadata.BufferDesc) (metadata.GPUHandle, error)
	Destroy(handle metadata.GPUHandle) error
}
