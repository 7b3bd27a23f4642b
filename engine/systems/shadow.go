package systems

import (
	"fmt"

	"github.com/spaghettifunk/sdengine/engine/assets"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/math"
	"github.com/spaghettifunk/sdengine/engine/renderer"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
	"github.com/spaghettifunk/sdengine/engine/resources"
	"github.com/spaghettifunk/sdengine/engine/scene"
)

type ShadowSystemConfig struct {
	/** @brief Width and height of the square shadow map. */
	MapSize uint32
	/** @brief Path of the depth-only shader. Empty draws without a shader. */
	ShaderPath string
}

/**
 * @brief Renders scene depth from the primary light into an offscreen
 * shadow map. Must run before the passes that sample it.
 */
type ShadowSystem struct {
	Base
	config   ShadowSystemConfig
	renderer Renderer

	target  *renderer.Framebuffer
	shaders *handleCache[*resources.Shader]
	models  *handleCache[*resources.Model]

	LightView       math.Mat4
	LightProjection math.Mat4
}

func NewShadowSystem(config ShadowSystemConfig, r Renderer, m *assets.Manager) *ShadowSystem {
	if config.MapSize == 0 {
		config.MapSize = 2048
	}
	return &ShadowSystem{
		Base:            NewBase("shadow"),
		config:          config,
		renderer:        r,
		shaders:         newHandleCache[*resources.Shader](m),
		models:          newHandleCache[*resources.Model](m),
		LightView:       math.NewMat4Identity(),
		LightProjection: math.NewMat4Identity(),
	}
}

func (ss *ShadowSystem) OnInit() error {
	fb, err := ss.renderer.CreateFramebuffer(&metadata.RenderTargetDesc{
		Name:      "shadow_map",
		Width:     ss.config.MapSize,
		Height:    ss.config.MapSize,
		DepthOnly: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create shadow map: %w", err)
	}
	ss.target = fb
	return nil
}

// ShadowMap is the depth target, nil before OnInit.
func (ss *ShadowSystem) ShadowMap() *renderer.Framebuffer {
	return ss.target
}

func (ss *ShadowSystem) OnRender() error {
	sc := ss.Scene()
	light, ok := primaryLight(sc)
	if !ok {
		return nil
	}

	extent := light.ShadowExtent
	if extent <= 0 {
		extent = 20
	}
	eye := light.Direction.MulScalar(-extent)
	up := math.NewVec3Up()
	if abs32(light.Direction.Normalized().Dot(up)) > 0.99 {
		up = math.NewVec3(0, 0, 1)
	}
	ss.LightView = math.NewMat4LookAt(eye, math.NewVec3Zero(), up)
	ss.LightProjection = math.NewMat4Orthographic(-extent, extent, -extent, extent, 0.1, extent*2)

	shader := metadata.InvalidGPUHandle
	if ss.config.ShaderPath != "" {
		s, err := ss.shaders.byPath(ss.config.ShaderPath)
		if err != nil {
			return err
		}
		shader = s.Handle
	}

	if err := ss.target.Bind(); err != nil {
		return err
	}
	var drawErr error
	scene.View2(sc, func(e scene.Entity, tr *scene.Transform, mr *scene.MeshRenderer) {
		if drawErr != nil || !mr.CastShadows {
			return
		}
		model, err := ss.models.get(mr.Model)
		if err != nil {
			core.LogWarn("shadow pass skips entity %d: %s", e, err)
			return
		}
		drawErr = ss.renderer.Draw(&metadata.DrawCommand{
			Pass:         metadata.DrawPassShadow,
			Shader:       shader,
			Model:        tr.GetWorld(),
			View:         ss.LightView,
			Projection:   ss.LightProjection,
			ElementCount: model.IndexCount(),
			Label:        model.Name,
		})
	})
	return drawErr
}

func (ss *ShadowSystem) OnSceneChange(*scene.Scene) {
	ss.models.releaseAll()
}

func (ss *ShadowSystem) OnDestroy() {
	ss.models.releaseAll()
	ss.shaders.releaseAll()
	if ss.target != nil {
		if err := ss.target.Destroy(); err != nil {
			core.LogError(err.Error())
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
