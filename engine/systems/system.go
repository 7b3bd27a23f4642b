package systems

import "github.com/spaghettifunk/sdengine/engine/scene"

// System is a unit of per-frame work owned by a SystemManager. Every other
// hook is optional: a system implements only the interfaces it needs.
type System interface {
	Name() string
	SetScene(sc *scene.Scene)
}

// Initializer runs once when the system is added to a manager. An error keeps
// the system out of the manager.
type Initializer interface {
	OnInit() error
}

// Pusher runs when the owning manager becomes active.
type Pusher interface {
	OnPush()
}

// Popper runs when the owning manager is deactivated.
type Popper interface {
	OnPop()
}

type Ticker interface {
	OnTick(deltaTime float64) error
}

// RenderPass issues draw calls. Passes run in registration order.
type RenderPass interface {
	OnRender() error
}

type ImGuiDrawer interface {
	OnImGui()
}

// Destroyer runs once, when the system is removed or the manager shuts down.
type Destroyer interface {
	OnDestroy()
}

// SceneObserver is told after the manager switched to a new scene.
type SceneObserver interface {
	OnSceneChange(sc *scene.Scene)
}

// Base carries the name and scene every system needs. Embed it by value.
type Base struct {
	name  string
	scene *scene.Scene
}

func NewBase(name string) Base {
	return Base{name: name}
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) SetScene(sc *scene.Scene) {
	b.scene = sc
}

func (b *Base) Scene() *scene.Scene {
	return b.scene
}
