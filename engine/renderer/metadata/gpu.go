package metadata

import "fmt"

/** @brief Identifies an object living on the GPU backend. Zero is invalid. */
type GPUHandle uint64

const InvalidGPUHandle GPUHandle = 0

func (h GPUHandle) IsValid() bool {
	return h != InvalidGPUHandle
}

func (h GPUHandle) String() string {
	return fmt.Sprintf("gpu#%d", uint64(h))
}

/** @brief The kind of GPU object behind a handle. */
type GPUResourceType uint8

const (
	GPUResourceTexture GPUResourceType = iota
	GPUResourceCubemap
	GPUResourceShader
	GPUResourceBuffer
	GPUResourceRenderTarget
)

func (t GPUResourceType) String() string {
	switch t {
	case GPUResourceTexture:
		return "texture"
	case GPUResourceCubemap:
		return "cubemap"
	case GPUResourceShader:
		return "shader"
	case GPUResourceBuffer:
		return "buffer"
	case GPUResourceRenderTarget:
		return "render_target"
	default:
		return "unknown"
	}
}

/** @brief Pixel data handed to the backend when creating a texture. */
type TextureDesc struct {
	Name         string
	Width        uint32
	Height       uint32
	ChannelCount uint8
	/** @brief One entry for 2D textures, six (+X,-X,+Y,-Y,+Z,-Z) for cubemaps. */
	Layers [][]uint8
	Cubemap bool
}

/** @brief Pipeline stage a shader module belongs to. */
type ShaderStage uint8

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
	ShaderStageCompute
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vert"
	case ShaderStageFragment:
		return "frag"
	case ShaderStageCompute:
		return "comp"
	default:
		return "unknown"
	}
}

/** @brief Compiled shader bytecode (SPIR-V words). */
type ShaderDesc struct {
	Name  string
	Stage ShaderStage
	Code  []uint32
}

/** @brief What a GPU buffer is used for. */
type BufferUsage uint8

const (
	BufferUsageVertex BufferUsage = iota
	BufferUsageIndex
	BufferUsageUniform
)

type BufferDesc struct {
	Name  string
	Usage BufferUsage
	Data  []byte
}

type RenderTargetDesc struct {
	Name   string
	Width  uint32
	Height uint32
	/** @brief Depth-only targets are used for shadow maps. */
	DepthOnly bool
}
