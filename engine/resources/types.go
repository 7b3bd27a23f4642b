package resources

import (
	"github.com/gopxl/beep"
	"golang.org/x/image/font/opentype"

	"github.com/spaghettifunk/sdengine/engine/math"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

/**
 * @brief Decoded pixel data. Pixels are tightly packed rows of
 * ChannelCount bytes each, top row first.
 */
type Image struct {
	/** @brief The number of channels. */
	ChannelCount uint8
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief The pixel data of the image. */
	Pixels []uint8
}

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
	/** @brief A cube texture, used for cubemaps. */
	TextureTypeCube
)

/**
 * @brief Represents a texture living on the GPU.
 */
type Texture struct {
	/** @brief The texture Name. */
	Name string
	/** @brief The texture type. */
	TextureType TextureType
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief Whether any pixel has an alpha below 255. */
	HasTransparency bool
	/** @brief Backend handle of the uploaded texture. */
	Handle metadata.GPUHandle
}

/** @brief A compiled shader module uploaded to the backend. */
type Shader struct {
	Name   string
	Stage  metadata.ShaderStage
	Handle metadata.GPUHandle
	/** @brief Size of the SPIR-V code in bytes. */
	CodeSize int
}

/**
 * @brief Geometry with one material. Several meshes make up a Model.
 */
type Mesh struct {
	Name     string
	Vertices []math.Vertex3D
	Indices  []uint32
	/** @brief The center of the geometry in local coordinates. */
	Center math.Vec3
	/** @brief The extents of the geometry in local coordinates. */
	Extents math.Extents3D
	/** @brief Material name from the model file (usemtl), may be empty. */
	MaterialName string
}

type Model struct {
	Name    string
	Meshes  []*Mesh
	Extents math.Extents3D
}

/** @brief Total number of indices across every mesh. */
func (m *Model) IndexCount() uint32 {
	var n uint32
	for _, mesh := range m.Meshes {
		n += uint32(len(mesh.Indices))
	}
	return n
}

/**
 * @brief A material, which represents various properties
 * of a surface in the world such as texture, colour and shininess.
 * Map names are asset paths relative to the asset base path.
 */
type Material struct {
	Name string
	/** @brief Path of the compiled shader used to draw this material. */
	ShaderName string
	/** @brief The diffuse colour. */
	DiffuseColour math.Vec4
	/** @brief The material shininess, determines how concentrated the specular lighting is. */
	Shininess       float32
	DiffuseMapName  string
	SpecularMapName string
	NormalMapName   string
}

/**
 * @brief Six faces of a cubemap and the texture built from them.
 * Faces are ordered +X, -X, +Y, -Y, +Z, -Z.
 */
type Skybox struct {
	Name    string
	Faces   [6]string
	Cubemap *Texture
}

/** @brief A named sub-rectangle of a sprite sheet, in pixels and UVs. */
type SpriteFrame struct {
	Name   string
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
	UVMin  math.Vec2
	UVMax  math.Vec2
}

/** @brief An ordered run of frames played at a fixed rate. */
type SpriteAnimation struct {
	Name   string
	Frames []string
	FPS    float32
	Loop   bool
}

/**
 * @brief A texture atlas with named frames and animations.
 */
type SpriteSheet struct {
	Name       string
	Texture    *Texture
	Frames     map[string]SpriteFrame
	Animations map[string]SpriteAnimation
}

/** @brief Frame looks up a frame by name. */
func (s *SpriteSheet) Frame(name string) (SpriteFrame, bool) {
	f, ok := s.Frames[name]
	return f, ok
}

/**
 * @brief FrameAt returns the frame an animation shows after elapsed seconds.
 * Non-looping animations hold their last frame.
 */
func (s *SpriteSheet) FrameAt(animation string, elapsed float64) (SpriteFrame, bool) {
	anim, ok := s.Animations[animation]
	if !ok || len(anim.Frames) == 0 || anim.FPS <= 0 {
		return SpriteFrame{}, false
	}
	idx := max(int(elapsed*float64(anim.FPS)), 0)
	if anim.Loop {
		idx %= len(anim.Frames)
	} else if idx >= len(anim.Frames) {
		idx = len(anim.Frames) - 1
	}
	return s.Frame(anim.Frames[idx])
}

type FontGlyph struct {
	Codepoint rune
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

type FontKerning struct {
	Codepoint0 rune
	Codepoint1 rune
	Amount     int16
}

type BitmapFontPage struct {
	ID   int8
	File string
}

type BitmapFont struct {
	Face       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasSizeX int32
	AtlasSizeY int32
	Glyphs     []FontGlyph
	Kernings   []FontKerning
	Pages      []BitmapFontPage
}

/** @brief One face from a system font collection. */
type SystemFontFace struct {
	Name  string
	Index int
}

/**
 * @brief A parsed TrueType/OpenType collection and the faces it offers.
 */
type SystemFont struct {
	Collection *opentype.Collection
	Faces      []SystemFontFace
	BinarySize uint64
}

/** @brief A decoded sound, ready to be streamed. */
type Sound struct {
	Format beep.Format
	Buffer *beep.Buffer
}

/** @brief Duration of the sound in seconds. */
func (s *Sound) Seconds() float64 {
	if s.Buffer == nil || s.Format.SampleRate == 0 {
		return 0
	}
	return float64(s.Buffer.Len()) / float64(s.Format.SampleRate)
}
