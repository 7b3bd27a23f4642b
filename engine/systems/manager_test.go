package systems

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/math"
	"github.com/spaghettifunk/sdengine/engine/scene"
)

// recorder implements every hook and appends "<name>.<hook>" to a shared log.
type recorder struct {
	Base
	log     *[]string
	initErr error
	tickErr error
	seen    *scene.Scene
}

func newRecorder(name string, log *[]string) *recorder {
	return &recorder{Base: NewBase(name), log: log}
}

func (r *recorder) add(hook string) { *r.log = append(*r.log, r.Name()+"."+hook) }

func (r *recorder) OnInit() error { r.add("init"); return r.initErr }
func (r *recorder) OnPush()       { r.add("push") }
func (r *recorder) OnPop()        { r.add("pop") }
func (r *recorder) OnTick(float64) error {
	r.add("tick")
	return r.tickErr
}
func (r *recorder) OnRender() error { r.add("render"); return nil }
func (r *recorder) OnImGui()        { r.add("imgui") }
func (r *recorder) OnDestroy()      { r.add("destroy") }
func (r *recorder) OnSceneChange(sc *scene.Scene) {
	r.seen = sc
	r.add("scene")
}

// mover writes the x position of every transform; reader records it.
type mover struct{ Base }

func (m *mover) OnTick(float64) error {
	scene.View(m.Scene(), func(_ scene.Entity, tr *scene.Transform) {
		tr.SetPosition(math.NewVec3(5, 0, 0))
	})
	return nil
}

type reader struct {
	Base
	x []float32
}

func (r *reader) OnTick(float64) error {
	scene.View(r.Scene(), func(_ scene.Entity, tr *scene.Transform) {
		r.x = append(r.x, tr.Position().X)
	})
	return nil
}

func sceneWithTransform() *scene.Scene {
	sc := scene.NewScene("test")
	scene.Add(sc, sc.CreateEntity(), scene.NewTransform(math.NewVec3Zero()))
	return sc
}

func TestRegistrationOrderIsExecutionOrder(t *testing.T) {
	run := func(first, second System) *reader {
		sm := NewSystemManager("order")
		sm.SetScene(sceneWithTransform())
		for _, s := range []System{first, second} {
			ok, err := sm.AddSystem(s)
			require.NoError(t, err)
			require.True(t, ok)
		}
		sm.Push()
		require.NoError(t, sm.Tick(0.016))
		for _, s := range sm.Systems() {
			if r, ok := s.(*reader); ok {
				return r
			}
		}
		t.Fatal("reader not registered")
		return nil
	}

	r := run(&mover{Base: NewBase("mover")}, &reader{Base: NewBase("reader")})
	assert.Equal(t, []float32{5}, r.x)

	r = run(&reader{Base: NewBase("reader")}, &mover{Base: NewBase("mover")})
	assert.Equal(t, []float32{0}, r.x)
}

func TestLifecycleOrder(t *testing.T) {
	var log []string
	sm := NewSystemManager("life")
	a, b := newRecorder("a", &log), newRecorder("b", &log)

	_, err := sm.AddSystem(a)
	require.NoError(t, err)
	sm.Push()
	_, err = sm.AddSystem(b)
	require.NoError(t, err)

	require.NoError(t, sm.Tick(0.1))
	require.NoError(t, sm.Render())
	sm.ImGui()
	require.NoError(t, sm.Shutdown())

	assert.Equal(t, []string{
		"a.init", "a.push",
		"b.init", "b.push",
		"a.tick", "b.tick",
		"a.render", "b.render",
		"a.imgui", "b.imgui",
		"a.pop", "b.pop",
		"b.destroy", "a.destroy",
	}, log)
	assert.Equal(t, 0, sm.Len())
	assert.False(t, sm.Active())
}

func TestInactiveManagerDoesNothing(t *testing.T) {
	var log []string
	sm := NewSystemManager("idle")
	_, err := sm.AddSystem(newRecorder("a", &log))
	require.NoError(t, err)

	require.NoError(t, sm.Tick(0.1))
	require.NoError(t, sm.Render())
	sm.ImGui()
	sm.Pop()
	assert.Equal(t, []string{"a.init"}, log)

	sm.Push()
	sm.Push()
	assert.Equal(t, []string{"a.init", "a.push"}, log)
}

func TestAddSystemTwiceIsIgnored(t *testing.T) {
	var log []string
	sm := NewSystemManager("dup")
	a := newRecorder("a", &log)

	ok, err := sm.AddSystem(a)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = sm.AddSystem(a)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, sm.Len())
	assert.Equal(t, []string{"a.init"}, log)
}

func TestAddNilSystemIsIgnored(t *testing.T) {
	var log []string
	sm := NewSystemManager("nil")
	sm.Push()
	require.NoError(t, func() error {
		ok, err := sm.AddSystem(nil)
		assert.False(t, ok)
		return err
	}())
	assert.False(t, sm.RemoveSystem(nil))

	ok, err := sm.AddSystem(newRecorder("a", &log))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, sm.Len())
}

func TestFailedInitKeepsSystemOut(t *testing.T) {
	var log []string
	sm := NewSystemManager("fail")
	a := newRecorder("a", &log)
	a.initErr = errors.New("no gpu")

	ok, err := sm.AddSystem(a)
	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, a.initErr)
	assert.Equal(t, 0, sm.Len())
}

func TestRemoveSystemKeepsOrder(t *testing.T) {
	var log []string
	sm := NewSystemManager("remove")
	a, b, c := newRecorder("a", &log), newRecorder("b", &log), newRecorder("c", &log)
	for _, s := range []System{a, b, c} {
		_, err := sm.AddSystem(s)
		require.NoError(t, err)
	}
	sm.Push()

	assert.False(t, sm.RemoveSystem(newRecorder("stranger", &log)))
	assert.False(t, sm.RemoveSystem(nil))
	assert.Equal(t, []System{a, b, c}, sm.Systems())

	log = log[:0]
	assert.True(t, sm.RemoveSystem(b))
	assert.Equal(t, []string{"b.pop", "b.destroy"}, log)
	assert.Equal(t, []System{a, c}, sm.Systems())

	log = log[:0]
	require.NoError(t, sm.Tick(0))
	assert.Equal(t, []string{"a.tick", "c.tick"}, log)
}

func TestTickStopsAtFirstError(t *testing.T) {
	var log []string
	sm := NewSystemManager("tick")
	a, b := newRecorder("a", &log), newRecorder("b", &log)
	a.tickErr = errors.New("boom")
	for _, s := range []System{a, b} {
		_, err := sm.AddSystem(s)
		require.NoError(t, err)
	}
	sm.Push()
	log = log[:0]

	err := sm.Tick(0.1)
	require.Error(t, err)
	assert.ErrorIs(t, err, a.tickErr)
	assert.Contains(t, err.Error(), "system 'a'")
	assert.Equal(t, []string{"a.tick"}, log)
}

func TestSetSceneReachesEverySystem(t *testing.T) {
	bus := core.NewEventBus()
	var events []core.SceneEvent
	bus.Register(core.EVENT_CODE_SCENE_CHANGED, t, func(ctx core.EventContext) bool {
		events = append(events, ctx.Data.(core.SceneEvent))
		return true
	})

	var log []string
	sm := NewSystemManager("world", WithSceneEvents(bus))
	a, b := newRecorder("a", &log), newRecorder("b", &log)
	_, err := sm.AddSystem(a)
	require.NoError(t, err)

	sc := scene.NewScene("level1")
	sm.SetScene(sc)
	assert.Same(t, sc, a.Scene())
	assert.Same(t, sc, a.seen)
	assert.Same(t, sc, sm.Scene())

	// systems added later start on the current scene
	_, err = sm.AddSystem(b)
	require.NoError(t, err)
	assert.Same(t, sc, b.Scene())

	require.Len(t, events, 1)
	assert.Equal(t, core.SceneEvent{Manager: "world", Scene: "level1"}, events[0])
}
