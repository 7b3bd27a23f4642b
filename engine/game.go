package engine

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/systems"
)

// Layer is a slice of the application driven by the frame loop. Layers run
// in stack order; overlays always run after regular layers.
type Layer interface {
	Name() string
	OnAttach(ctx *Context) error
	OnDetach()
	OnTick(deltaTime float64) error
	OnRender() error
	OnImGui()
}

type LayerStack struct {
	layers []Layer
	insert int
}

func NewLayerStack() *LayerStack {
	return &LayerStack{}
}

// Push adds l after the other regular layers and before every overlay.
func (ls *LayerStack) Push(l Layer) {
	ls.layers = append(ls.layers, nil)
	copy(ls.layers[ls.insert+1:], ls.layers[ls.insert:])
	ls.layers[ls.insert] = l
	ls.insert++
}

func (ls *LayerStack) PushOverlay(l Layer) {
	ls.layers = append(ls.layers, l)
}

// Pop detaches l and removes it. Unknown layers are ignored.
func (ls *LayerStack) Pop(l Layer) bool {
	for i, existing := range ls.layers {
		if existing != l {
			continue
		}
		l.OnDetach()
		ls.layers = append(ls.layers[:i], ls.layers[i+1:]...)
		if i < ls.insert {
			ls.insert--
		}
		return true
	}
	return false
}

func (ls *LayerStack) Layers() []Layer {
	out := make([]Layer, len(ls.layers))
	copy(out, ls.layers)
	return out
}

func (ls *LayerStack) Len() int {
	return len(ls.layers)
}

func (ls *LayerStack) Tick(deltaTime float64) error {
	for _, l := range ls.Layers() {
		if err := l.OnTick(deltaTime); err != nil {
			return fmt.Errorf("layer '%s' tick: %w", l.Name(), err)
		}
	}
	return nil
}

func (ls *LayerStack) Render() error {
	for _, l := range ls.Layers() {
		if err := l.OnRender(); err != nil {
			return fmt.Errorf("layer '%s' render: %w", l.Name(), err)
		}
	}
	return nil
}

func (ls *LayerStack) ImGui() {
	for _, l := range ls.Layers() {
		l.OnImGui()
	}
}

// Clear detaches every layer, top of the stack first.
func (ls *LayerStack) Clear() {
	for i := len(ls.layers) - 1; i >= 0; i-- {
		ls.layers[i].OnDetach()
	}
	ls.layers = nil
	ls.insert = 0
}

/**
 * @brief A layer that drives one or more SystemManagers. Managers are
 * activated on attach and shut down on detach. Embed it to build a game
 * layer and add systems from OnAttach.
 */
type SystemLayer struct {
	name     string
	managers []*systems.SystemManager
}

func NewSystemLayer(name string, managers ...*systems.SystemManager) *SystemLayer {
	return &SystemLayer{name: name, managers: managers}
}

func (sl *SystemLayer) Name() string {
	return sl.name
}

// AddManager appends a manager. It is activated right away.
func (sl *SystemLayer) AddManager(sm *systems.SystemManager) {
	sl.managers = append(sl.managers, sm)
	sm.Push()
}

func (sl *SystemLayer) Managers() []*systems.SystemManager {
	return sl.managers
}

func (sl *SystemLayer) OnAttach(ctx *Context) error {
	for _, sm := range sl.managers {
		sm.Push()
	}
	return nil
}

func (sl *SystemLayer) OnDetach() {
	var errs []error
	for i := len(sl.managers) - 1; i >= 0; i-- {
		errs = append(errs, sl.managers[i].Shutdown())
	}
	sl.managers = nil
	if err := errors.Join(errs...); err != nil {
		core.LogError("failed to shut down system managers of layer '%s': %s", sl.name, err)
	}
}

func (sl *SystemLayer) OnTick(deltaTime float64) error {
	for _, sm := range sl.managers {
		if err := sm.Tick(deltaTime); err != nil {
			return err
		}
	}
	return nil
}

func (sl *SystemLayer) OnRender() error {
	for _, sm := range sl.managers {
		if err := sm.Render(); err != nil {
			return err
		}
	}
	return nil
}

func (sl *SystemLayer) OnImGui() {
	for _, sm := range sl.managers {
		sm.ImGui()
	}
}
