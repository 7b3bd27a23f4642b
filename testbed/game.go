package testbed

import (
	"context"
	"fmt"

	"github.com/spaghettifunk/sdengine/engine"
	"github.com/spaghettifunk/sdengine/engine/assets"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/math"
	"github.com/spaghettifunk/sdengine/engine/scene"
	"github.com/spaghettifunk/sdengine/engine/systems"
)

const (
	crateModel    = "models/crate.obj"
	crateMaterial = "materials/crate.toml"
	daySkybox     = "skybox/day.toml"
	heroSheet     = "sprites/hero.yaml"

	shadowShader = "shaders/shadow.vert.spv"
	skyboxShader = "shaders/skybox.vert.spv"
	spriteShader = "shaders/sprite.vert.spv"
)

// TestGame is the demo layer: three spinning crates under a directional
// light, a skybox, an animated sprite and the profiling overlay.
type TestGame struct {
	*engine.SystemLayer

	ctx    *engine.Context
	scene  *scene.Scene
	world  *systems.SystemManager
	hud    *systems.SystemManager
	crates []scene.Entity
}

func NewTestGame() *TestGame {
	return &TestGame{SystemLayer: engine.NewSystemLayer("testbed")}
}

func (g *TestGame) OnAttach(ctx *engine.Context) error {
	core.LogDebug("TestGame OnAttach....")
	g.ctx = ctx

	if err := g.preload(); err != nil {
		return err
	}
	sc, err := g.buildScene()
	if err != nil {
		return err
	}
	g.scene = sc

	shadow := systems.NewShadowSystem(systems.ShadowSystemConfig{ShaderPath: shadowShader}, ctx.Renderer, ctx.Assets)
	g.world = systems.NewSystemManager("world", systems.WithSceneEvents(ctx.Events))
	g.world.SetScene(sc)
	for _, s := range []systems.System{
		systems.NewCameraSystem(ctx.Renderer.MainTarget(), ctx.Input),
		shadow,
		systems.NewMeshSystem(ctx.Renderer, ctx.Assets, shadow),
		systems.NewSkyboxSystem(ctx.Renderer, ctx.Assets, skyboxShader),
		systems.NewSpriteSystem(ctx.Renderer, ctx.Assets, spriteShader),
	} {
		if _, err := g.world.AddSystem(s); err != nil {
			return err
		}
	}

	g.hud = systems.NewSystemManager("hud")
	if _, err := g.hud.AddSystem(systems.NewProfileSystem(ctx.Renderer, ctx.Metrics)); err != nil {
		return err
	}

	g.AddManager(g.world)
	g.AddManager(g.hud)

	ctx.Events.Register(core.EVENT_CODE_ASSET_CHANGED, g, g.onAssetChanged)
	ctx.Events.Register(core.EVENT_CODE_KEY_PRESSED, g, g.onKey)
	return nil
}

// preload warms the cache with everything the scene references so the first
// frame does not stall on disk reads.
func (g *TestGame) preload() error {
	workers := g.ctx.Config.Assets.PreloadWorkers
	batches := []struct {
		kind  assets.Kind
		paths []string
	}{
		{assets.KindShader, []string{shadowShader, skyboxShader, spriteShader, "shaders/world.vert.spv"}},
		{assets.KindTexture, []string{"textures/crate.png"}},
		{assets.KindModel, []string{crateModel}},
		{assets.KindMaterial, []string{crateMaterial}},
		{assets.KindSkybox, []string{daySkybox}},
		{assets.KindSprite, []string{heroSheet}},
	}
	for _, b := range batches {
		if _, err := g.ctx.Assets.Preload(context.Background(), workers, b.kind, b.paths...); err != nil {
			return fmt.Errorf("failed to preload %s assets: %w", b.kind, err)
		}
	}
	return nil
}

func (g *TestGame) buildScene() (*scene.Scene, error) {
	m := g.ctx.Assets
	load := func(kind assets.Kind, path string) (core.ResourceID, error) {
		return m.Load(kind, path)
	}
	model, err := load(assets.KindModel, crateModel)
	if err != nil {
		return nil, err
	}
	material, err := load(assets.KindMaterial, crateMaterial)
	if err != nil {
		return nil, err
	}
	sky, err := load(assets.KindSkybox, daySkybox)
	if err != nil {
		return nil, err
	}
	sheet, err := load(assets.KindSprite, heroSheet)
	if err != nil {
		return nil, err
	}

	sc := scene.NewScene("testbed")

	cam := sc.CreateEntity()
	scene.Add(sc, cam, scene.NewTransform(math.NewVec3(0, 2, 12)))
	camera := scene.NewCamera()
	camera.Fly = true
	scene.Add(sc, cam, camera)

	sun := sc.CreateEntity()
	scene.Add(sc, sun, scene.NewDirectionalLight(math.NewVec3(-0.3, -1, -0.5)))

	g.crates = g.crates[:0]
	for i, pos := range []math.Vec3{math.NewVec3(0, 0, 0), math.NewVec3(3, 0, 0), math.NewVec3(-3, 0, 0)} {
		e := sc.CreateEntity()
		tr := scene.NewTransform(pos)
		tr.SetScale(math.NewVec3One().MulScalar(1 + float32(i)*0.5))
		scene.Add(sc, e, tr)
		scene.Add(sc, e, scene.MeshRenderer{Model: model, Material: material, CastShadows: true})
		g.crates = append(g.crates, e)
	}

	scene.Add(sc, sc.CreateEntity(), scene.SkyboxComponent{Skybox: sky})

	hero := sc.CreateEntity()
	scene.Add(sc, hero, scene.NewTransform(math.NewVec3(32, 32, 0)))
	scene.Add(sc, hero, scene.Sprite{
		Sheet:     sheet,
		Animation: "walk",
		Tint:      math.NewVec4One(),
		Size:      math.NewVec2(64, 64),
	})
	return sc, nil
}

func (g *TestGame) OnTick(deltaTime float64) error {
	rotation := math.NewQuatFromAxisAngle(math.NewVec3Up(), float32(0.5*deltaTime), false)
	for _, e := range g.crates {
		if tr, ok := scene.Get[scene.Transform](g.scene, e); ok {
			tr.Rotate(rotation)
		}
	}
	return g.SystemLayer.OnTick(deltaTime)
}

func (g *TestGame) OnDetach() {
	g.ctx.Events.Unregister(core.EVENT_CODE_ASSET_CHANGED, g)
	g.ctx.Events.Unregister(core.EVENT_CODE_KEY_PRESSED, g)
	g.SystemLayer.OnDetach()
}

func (g *TestGame) onAssetChanged(evt core.EventContext) bool {
	if ae, ok := evt.Data.(core.AssetEvent); ok {
		core.LogInfo("reloading '%s' on next use", ae.Path)
	}
	return false
}

// R rebuilds the scene from the asset cache.
func (g *TestGame) onKey(evt core.EventContext) bool {
	ke, ok := evt.Data.(*core.KeyEvent)
	if !ok || ke.KeyCode != core.KEY_R {
		return false
	}
	sc, err := g.buildScene()
	if err != nil {
		core.LogError("failed to rebuild scene: %s", err)
		return true
	}
	g.scene = sc
	g.world.SetScene(sc)
	return true
}
