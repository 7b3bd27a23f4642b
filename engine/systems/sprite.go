package systems

import (
	"sort"

	"github.com/spaghettifunk/sdengine/engine/assets"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/math"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
	"github.com/spaghettifunk/sdengine/engine/resources"
	"github.com/spaghettifunk/sdengine/engine/scene"
)

// spriteIndexCount is one quad.
const spriteIndexCount uint32 = 6

type spriteDraw struct {
	layer int
	cmd   metadata.DrawCommand
}

/**
 * @brief The 2D pass. Advances sprite animations on tick and draws one quad
 * per Sprite, lowest layer first, in screen space over the main target.
 * Position is in pixels from the bottom-left corner.
 */
type SpriteSystem struct {
	Base
	renderer   Renderer
	shaderPath string
	shaders    *handleCache[*resources.Shader]
	sheets     *handleCache[*resources.SpriteSheet]

	queue []spriteDraw
}

func NewSpriteSystem(r Renderer, m *assets.Manager, shaderPath string) *SpriteSystem {
	return &SpriteSystem{
		Base:       NewBase("sprite"),
		renderer:   r,
		shaderPath: shaderPath,
		shaders:    newHandleCache[*resources.Shader](m),
		sheets:     newHandleCache[*resources.SpriteSheet](m),
	}
}

func (ss *SpriteSystem) OnTick(deltaTime float64) error {
	sc := ss.Scene()
	if sc == nil {
		return nil
	}
	scene.View(sc, func(_ scene.Entity, sp *scene.Sprite) {
		if sp.Animation != "" {
			sp.Elapsed += deltaTime
		}
	})
	return nil
}

func (ss *SpriteSystem) OnRender() error {
	sc := ss.Scene()
	if sc == nil || scene.Count[scene.Sprite](sc) == 0 {
		return nil
	}

	shader := metadata.InvalidGPUHandle
	if ss.shaderPath != "" {
		s, err := ss.shaders.byPath(ss.shaderPath)
		if err != nil {
			return err
		}
		shader = s.Handle
	}

	target := ss.renderer.MainTarget()
	w, h := target.Size()
	projection := math.NewMat4Orthographic(0, float32(w), 0, float32(h), -100, 100)

	ss.queue = ss.queue[:0]
	scene.View2(sc, func(e scene.Entity, tr *scene.Transform, sp *scene.Sprite) {
		sheet, err := ss.sheets.get(sp.Sheet)
		if err != nil {
			core.LogWarn("sprite pass skips entity %d: %s", e, err)
			return
		}
		var frame resources.SpriteFrame
		var ok bool
		if sp.Animation != "" {
			frame, ok = sheet.FrameAt(sp.Animation, sp.Elapsed)
		} else {
			frame, ok = sheet.Frame(sp.Frame)
		}
		if !ok {
			core.LogWarn("sprite pass skips entity %d: sheet '%s' has no frame '%s%s'", e, sheet.Name, sp.Frame, sp.Animation)
			return
		}

		size := sp.Size
		if size.X == 0 || size.Y == 0 {
			size = math.NewVec2(float32(frame.Width), float32(frame.Height))
		}
		model := math.NewMat4Scale(math.NewVec3(size.X, size.Y, 1)).Mul(tr.GetWorld())
		ss.queue = append(ss.queue, spriteDraw{
			layer: sp.Layer,
			cmd: metadata.DrawCommand{
				Pass:         metadata.DrawPassSprite,
				Shader:       shader,
				Textures:     []metadata.GPUHandle{sheet.Texture.Handle},
				Model:        model,
				View:         math.NewMat4Identity(),
				Projection:   projection,
				ElementCount: spriteIndexCount,
				UVMin:        frame.UVMin,
				UVMax:        frame.UVMax,
				Tint:         sp.Tint,
				Label:        frame.Name,
			},
		})
	})
	if len(ss.queue) == 0 {
		return nil
	}

	sort.SliceStable(ss.queue, func(i, j int) bool {
		return ss.queue[i].layer < ss.queue[j].layer
	})
	if err := target.Bind(); err != nil {
		return err
	}
	for i := range ss.queue {
		if err := ss.renderer.Draw(&ss.queue[i].cmd); err != nil {
			return err
		}
	}
	return nil
}

func (ss *SpriteSystem) OnSceneChange(*scene.Scene) {
	ss.sheets.releaseAll()
}

func (ss *SpriteSystem) OnDestroy() {
	ss.sheets.releaseAll()
	ss.shaders.releaseAll()
}
