package systems

import (
	"github.com/spaghettifunk/sdengine/engine/assets"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
	"github.com/spaghettifunk/sdengine/engine/resources"
	"github.com/spaghettifunk/sdengine/engine/scene"
)

/**
 * @brief The lit geometry pass. Draws every mesh of every MeshRenderer into
 * the main target with its material's shader and diffuse map. When a shadow
 * system is given, its shadow map is bound as the last texture.
 */
type MeshSystem struct {
	Base
	renderer Renderer
	shadow   *ShadowSystem

	models    *handleCache[*resources.Model]
	materials *handleCache[*resources.Material]
	shaders   *handleCache[*resources.Shader]
	textures  *handleCache[*resources.Texture]

	drawn int
}

func NewMeshSystem(r Renderer, m *assets.Manager, shadow *ShadowSystem) *MeshSystem {
	return &MeshSystem{
		Base:      NewBase("mesh"),
		renderer:  r,
		shadow:    shadow,
		models:    newHandleCache[*resources.Model](m),
		materials: newHandleCache[*resources.Material](m),
		shaders:   newHandleCache[*resources.Shader](m),
		textures:  newHandleCache[*resources.Texture](m),
	}
}

func (ms *MeshSystem) OnRender() error {
	ms.drawn = 0
	sc := ms.Scene()
	cam, ok := primaryCamera(sc)
	if !ok {
		return nil
	}
	if err := ms.renderer.MainTarget().Bind(); err != nil {
		return err
	}

	var drawErr error
	scene.View2(sc, func(e scene.Entity, tr *scene.Transform, mr *scene.MeshRenderer) {
		if drawErr != nil {
			return
		}
		cmd, model, err := ms.prepare(mr)
		if err != nil {
			core.LogWarn("mesh pass skips entity %d: %s", e, err)
			return
		}
		cmd.Model = tr.GetWorld()
		cmd.View = cam.View
		cmd.Projection = cam.Projection
		for _, mesh := range model.Meshes {
			cmd.ElementCount = uint32(len(mesh.Indices))
			cmd.Label = mesh.Name
			if drawErr = ms.renderer.Draw(&cmd); drawErr != nil {
				return
			}
			ms.drawn++
		}
	})
	return drawErr
}

// prepare resolves everything a MeshRenderer needs except its transform.
func (ms *MeshSystem) prepare(mr *scene.MeshRenderer) (metadata.DrawCommand, *resources.Model, error) {
	cmd := metadata.DrawCommand{Pass: metadata.DrawPassWorld}
	model, err := ms.models.get(mr.Model)
	if err != nil {
		return cmd, nil, err
	}
	material, err := ms.materials.get(mr.Material)
	if err != nil {
		return cmd, nil, err
	}
	shader, err := ms.shaders.byPath(material.ShaderName)
	if err != nil {
		return cmd, nil, err
	}
	cmd.Shader = shader.Handle
	cmd.Tint = material.DiffuseColour

	if material.DiffuseMapName != "" {
		tex, err := ms.textures.byPath(material.DiffuseMapName)
		if err != nil {
			return cmd, nil, err
		}
		cmd.Textures = append(cmd.Textures, tex.Handle)
	}
	if ms.shadow != nil && ms.shadow.ShadowMap() != nil {
		cmd.Textures = append(cmd.Textures, ms.shadow.ShadowMap().Handle())
	}
	return cmd, model, nil
}

// DrawCount is the number of meshes drawn in the last render.
func (ms *MeshSystem) DrawCount() int {
	return ms.drawn
}

func (ms *MeshSystem) OnSceneChange(*scene.Scene) {
	ms.releaseAll()
}

func (ms *MeshSystem) OnDestroy() {
	ms.releaseAll()
}

func (ms *MeshSystem) releaseAll() {
	ms.models.releaseAll()
	ms.materials.releaseAll()
	ms.shaders.releaseAll()
	ms.textures.releaseAll()
}
