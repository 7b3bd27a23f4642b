package systems

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/scene"
)

type ManagerOption func(*SystemManager)

// WithSceneEvents makes SetScene fire EVENT_CODE_SCENE_CHANGED.
func WithSceneEvents(events *core.EventBus) ManagerOption {
	return func(sm *SystemManager) {
		sm.events = events
	}
}

func WithManagerLogger(logger *log.Logger) ManagerOption {
	return func(sm *SystemManager) {
		sm.logger = logger
	}
}

// SystemManager runs an ordered list of systems. Registration order is the
// execution order for every hook; the manager never reorders systems.
// Errors and panics from systems are not isolated.
type SystemManager struct {
	name    string
	systems []System
	active  bool
	scene   *scene.Scene
	events  *core.EventBus
	logger  *log.Logger
}

func NewSystemManager(name string, opts ...ManagerOption) *SystemManager {
	sm := &SystemManager{
		name:   name,
		logger: core.Logger().WithPrefix("systems"),
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

func (sm *SystemManager) Name() string {
	return sm.name
}

func (sm *SystemManager) Active() bool {
	return sm.active
}

func (sm *SystemManager) Scene() *scene.Scene {
	return sm.scene
}

func (sm *SystemManager) indexOf(s System) int {
	for i, existing := range sm.systems {
		if existing == s {
			return i
		}
	}
	return -1
}

// AddSystem initializes s and appends it. Adding the same instance twice
// only warns and reports false. When the manager is active the new system
// is pushed right away.
func (sm *SystemManager) AddSystem(s System) (bool, error) {
	if s == nil {
		sm.logger.Warn("nil system ignored", "manager", sm.name)
		return false, nil
	}
	if sm.indexOf(s) >= 0 {
		sm.logger.Warn("duplicate system ignored", "manager", sm.name, "system", s.Name(), "err", core.ErrDuplicateSystem)
		return false, nil
	}
	if i, ok := s.(Initializer); ok {
		if err := i.OnInit(); err != nil {
			err = fmt.Errorf("failed to initialize system '%s': %w", s.Name(), err)
			sm.logger.Error(err.Error())
			return false, err
		}
	}
	s.SetScene(sm.scene)
	sm.systems = append(sm.systems, s)
	if sm.active {
		if p, ok := s.(Pusher); ok {
			p.OnPush()
		}
	}
	sm.logger.Debug("system added", "manager", sm.name, "system", s.Name())
	return true, nil
}

// RemoveSystem pops (when active) and destroys s, then removes it keeping
// the order of the others. Removing an unknown system only warns.
func (sm *SystemManager) RemoveSystem(s System) bool {
	i := sm.indexOf(s)
	if i < 0 {
		name := "<nil>"
		if s != nil {
			name = s.Name()
		}
		sm.logger.Warn("removal of unregistered system ignored", "manager", sm.name, "system", name, "err", core.ErrMissingSystem)
		return false
	}
	if sm.active {
		if p, ok := s.(Popper); ok {
			p.OnPop()
		}
	}
	if d, ok := s.(Destroyer); ok {
		d.OnDestroy()
	}
	sm.systems = append(sm.systems[:i], sm.systems[i+1:]...)
	sm.logger.Debug("system removed", "manager", sm.name, "system", s.Name())
	return true
}

// Push activates the manager. Pushing an active manager does nothing.
func (sm *SystemManager) Push() {
	if sm.active {
		return
	}
	sm.active = true
	for _, s := range sm.snapshot() {
		if p, ok := s.(Pusher); ok {
			p.OnPush()
		}
	}
}

// Pop deactivates the manager. Popping an inactive manager does nothing.
func (sm *SystemManager) Pop() {
	if !sm.active {
		return
	}
	for _, s := range sm.snapshot() {
		if p, ok := s.(Popper); ok {
			p.OnPop()
		}
	}
	sm.active = false
}

// Tick runs OnTick in order. The first error stops the frame and is
// returned. An inactive manager does not tick.
func (sm *SystemManager) Tick(deltaTime float64) error {
	if !sm.active {
		return nil
	}
	for _, s := range sm.snapshot() {
		if t, ok := s.(Ticker); ok {
			if err := t.OnTick(deltaTime); err != nil {
				return fmt.Errorf("system '%s' tick: %w", s.Name(), err)
			}
		}
	}
	return nil
}

// Render runs OnRender in order, stopping at the first error.
func (sm *SystemManager) Render() error {
	if !sm.active {
		return nil
	}
	for _, s := range sm.snapshot() {
		if r, ok := s.(RenderPass); ok {
			if err := r.OnRender(); err != nil {
				return fmt.Errorf("system '%s' render: %w", s.Name(), err)
			}
		}
	}
	return nil
}

func (sm *SystemManager) ImGui() {
	if !sm.active {
		return
	}
	for _, s := range sm.snapshot() {
		if d, ok := s.(ImGuiDrawer); ok {
			d.OnImGui()
		}
	}
}

// SetScene hands sc to every system first and only then notifies them, so
// an observer can rely on its peers already seeing the new scene.
func (sm *SystemManager) SetScene(sc *scene.Scene) {
	sm.scene = sc
	systems := sm.snapshot()
	for _, s := range systems {
		s.SetScene(sc)
	}
	for _, s := range systems {
		if o, ok := s.(SceneObserver); ok {
			o.OnSceneChange(sc)
		}
	}

	name := ""
	if sc != nil {
		name = sc.Name()
	}
	sm.logger.Info("scene changed", "manager", sm.name, "scene", name)
	if sm.events != nil {
		sm.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_SCENE_CHANGED,
			Data: core.SceneEvent{Manager: sm.name, Scene: name},
		})
	}
}

// Systems returns the registered systems in execution order.
func (sm *SystemManager) Systems() []System {
	return sm.snapshot()
}

func (sm *SystemManager) Len() int {
	return len(sm.systems)
}

// Shutdown pops the manager and destroys every system, last added first.
func (sm *SystemManager) Shutdown() error {
	sm.Pop()
	for i := len(sm.systems) - 1; i >= 0; i-- {
		if d, ok := sm.systems[i].(Destroyer); ok {
			d.OnDestroy()
		}
	}
	sm.systems = nil
	return nil
}

// snapshot lets hooks add or remove systems while the manager iterates.
func (sm *SystemManager) snapshot() []System {
	out := make([]System, len(sm.systems))
	copy(out, sm.systems)
	return out
}
