package metadata

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/sdengine/engine/math"
)

type RendererType uint8

const (
	RendererTypeHeadless RendererType = iota
	RendererTypeVulkan
	RendererTypeOpenGL
	RendererTypeDirectX
	RendererTypeMetal
)

func (t RendererType) String() string {
	switch t {
	case RendererTypeHeadless:
		return "headless"
	case RendererTypeVulkan:
		return "vulkan"
	case RendererTypeOpenGL:
		return "opengl"
	case RendererTypeDirectX:
		return "directx"
	case RendererTypeMetal:
		return "metal"
	default:
		return fmt.Sprintf("renderer(%d)", uint8(t))
	}
}

// ParseRendererType maps a configuration name to a RendererType.
func ParseRendererType(name string) (RendererType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "headless", "null":
		return RendererTypeHeadless, nil
	case "vulkan", "vk":
		return RendererTypeVulkan, nil
	case "opengl", "gl":
		return RendererTypeOpenGL, nil
	case "directx", "dx", "d3d":
		return RendererTypeDirectX, nil
	case "metal":
		return RendererTypeMetal, nil
	}
	return 0, fmt.Errorf("unknown renderer type '%s'", name)
}

/**
 * @brief The surface systems draw into during a pass. Its lifetime is owned
 * outside the systems that draw into it.
 */
type RenderTarget interface {
	Bind() error
	Size() (uint32, uint32)
}

/** @brief Which pass produced a draw call. */
type DrawPass uint8

const (
	DrawPassShadow DrawPass = iota
	DrawPassWorld
	DrawPassSkybox
	DrawPassSprite
	DrawPassOverlay
)

func (p DrawPass) String() string {
	switch p {
	case DrawPassShadow:
		return "shadow"
	case DrawPassWorld:
		return "world"
	case DrawPassSkybox:
		return "skybox"
	case DrawPassSprite:
		return "sprite"
	case DrawPassOverlay:
		return "overlay"
	default:
		return "unknown"
	}
}

/**
 * @brief A single draw call issued against the currently bound render target.
 */
type DrawCommand struct {
	Pass       DrawPass
	Shader     GPUHandle
	Textures   []GPUHandle
	Model      math.Mat4
	View       math.Mat4
	Projection math.Mat4
	/** @brief Number of indices (or vertices when not indexed). */
	ElementCount uint32
	/** @brief Sprite quads: UV rectangle and tint. */
	UVMin math.Vec2
	UVMax math.Vec2
	Tint  math.Vec4
	/** @brief Free-form label, used by overlay text and debugging. */
	Label string
}

/**
 * @brief The window-side collaborator a GPU backend needs to create its
 * presentation surface.
 */
type WindowSurface interface {
	GetRequiredExtensionNames() []string
	/** @brief Creates a presentation surface for the given API instance. */
	CreateSurface(instance interface{}) (uintptr, error)
}
