package systems

import (
	"github.com/spaghettifunk/sdengine/engine/assets"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
	"github.com/spaghettifunk/sdengine/engine/resources"
	"github.com/spaghettifunk/sdengine/engine/scene"
)

// skyboxIndexCount is a unit cube drawn from the inside.
const skyboxIndexCount uint32 = 36

/**
 * @brief Draws the cubemap of the scene's first SkyboxComponent around the
 * primary camera. Runs after the opaque passes.
 */
type SkyboxSystem struct {
	Base
	renderer   Renderer
	shaderPath string
	shaders    *handleCache[*resources.Shader]
	skyboxes   *handleCache[*resources.Skybox]
}

func NewSkyboxSystem(r Renderer, m *assets.Manager, shaderPath string) *SkyboxSystem {
	return &SkyboxSystem{
		Base:       NewBase("skybox"),
		renderer:   r,
		shaderPath: shaderPath,
		shaders:    newHandleCache[*resources.Shader](m),
		skyboxes:   newHandleCache[*resources.Skybox](m),
	}
}

func (ss *SkyboxSystem) OnRender() error {
	sc := ss.Scene()
	cam, ok := primaryCamera(sc)
	if !ok {
		return nil
	}
	var comp *scene.SkyboxComponent
	scene.View(sc, func(_ scene.Entity, c *scene.SkyboxComponent) {
		if comp == nil {
			comp = c
		}
	})
	if comp == nil {
		return nil
	}

	skybox, err := ss.skyboxes.get(comp.Skybox)
	if err != nil {
		return err
	}
	shader := metadata.InvalidGPUHandle
	if ss.shaderPath != "" {
		s, err := ss.shaders.byPath(ss.shaderPath)
		if err != nil {
			return err
		}
		shader = s.Handle
	}

	// the sky follows the camera, so drop the view translation
	view := cam.View
	view.Data[12], view.Data[13], view.Data[14] = 0, 0, 0

	if err := ss.renderer.MainTarget().Bind(); err != nil {
		return err
	}
	return ss.renderer.Draw(&metadata.DrawCommand{
		Pass:         metadata.DrawPassSkybox,
		Shader:       shader,
		Textures:     []metadata.GPUHandle{skybox.Cubemap.Handle},
		View:         view,
		Projection:   cam.Projection,
		ElementCount: skyboxIndexCount,
		Label:        skybox.Name,
	})
}

func (ss *SkyboxSystem) OnSceneChange(*scene.Scene) {
	ss.skyboxes.releaseAll()
}

func (ss *SkyboxSystem) OnDestroy() {
	ss.skyboxes.releaseAll()
	ss.shaders.releaseAll()
}
