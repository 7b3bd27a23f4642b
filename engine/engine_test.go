package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/sdengine/engine/config"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/systems"
)

const step = 16 * time.Millisecond

type recordingLayer struct {
	name     string
	log      *[]string
	ticks    int
	deltas   []float64
	renders  int
	imguis   int
	onTick   func(n int) error
	detached bool
}

func (l *recordingLayer) Name() string { return l.name }
func (l *recordingLayer) OnAttach(*Context) error {
	if l.log != nil {
		*l.log = append(*l.log, l.name+".attach")
	}
	return nil
}
func (l *recordingLayer) OnDetach() {
	l.detached = true
	if l.log != nil {
		*l.log = append(*l.log, l.name+".detach")
	}
}
func (l *recordingLayer) OnTick(dt float64) error {
	l.ticks++
	l.deltas = append(l.deltas, dt)
	if l.log != nil {
		*l.log = append(*l.log, l.name+".tick")
	}
	if l.onTick != nil {
		return l.onTick(l.ticks)
	}
	return nil
}
func (l *recordingLayer) OnRender() error { l.renders++; return nil }
func (l *recordingLayer) OnImGui()        { l.imguis++ }

func fixedStep() *core.Clock {
	now := time.Unix(0, 0)
	return core.NewClockWithSource(func() time.Time {
		now = now.Add(step)
		return now
	})
}

func newHeadlessEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Renderer.Backend = "headless"
	cfg.Assets.BasePath = t.TempDir()

	ctx, err := NewContext(cfg, nil)
	require.NoError(t, err)
	e := New(ctx, WithClock(fixedStep()))
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })
	return e
}

func TestLayerStackOrder(t *testing.T) {
	var log []string
	a := &recordingLayer{name: "a", log: &log}
	b := &recordingLayer{name: "b", log: &log}
	c := &recordingLayer{name: "c", log: &log}
	overlay := &recordingLayer{name: "overlay", log: &log}

	ls := NewLayerStack()
	ls.Push(a)
	ls.PushOverlay(overlay)
	ls.Push(b)
	assert.Equal(t, []Layer{a, b, overlay}, ls.Layers())

	assert.True(t, ls.Pop(b))
	assert.True(t, b.detached)
	assert.False(t, ls.Pop(b))
	ls.Push(c)
	assert.Equal(t, []Layer{a, c, overlay}, ls.Layers())

	log = log[:0]
	require.NoError(t, ls.Tick(0.1))
	assert.Equal(t, []string{"a.tick", "c.tick", "overlay.tick"}, log)

	log = log[:0]
	ls.Clear()
	assert.Equal(t, []string{"overlay.detach", "c.detach", "a.detach"}, log)
	assert.Equal(t, 0, ls.Len())
}

func TestRunFramesDrivesLayers(t *testing.T) {
	e := newHeadlessEngine(t)
	l := &recordingLayer{name: "game"}
	require.NoError(t, e.PushLayer(l))

	require.NoError(t, e.RunFrames(3))
	assert.Equal(t, 3, l.ticks)
	assert.Equal(t, 3, l.renders)
	assert.Equal(t, 3, l.imguis)
	for _, dt := range l.deltas {
		assert.InDelta(t, step.Seconds(), dt, 1e-9)
	}
	assert.EqualValues(t, 3, e.Context().Metrics.TotalFrames())
	assert.EqualValues(t, 3, e.Context().Renderer.FrameNumber())
	assert.Equal(t, EngineStageRunning, e.Stage())
}

func TestQuitEventStopsRun(t *testing.T) {
	e := newHeadlessEngine(t)
	l := &recordingLayer{name: "game"}
	l.onTick = func(n int) error {
		if n == 2 {
			e.Context().Events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		}
		return nil
	}
	require.NoError(t, e.PushLayer(l))

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 2, l.ticks)
}

func TestEscapeQuits(t *testing.T) {
	e := newHeadlessEngine(t)
	l := &recordingLayer{name: "game"}
	l.onTick = func(int) error {
		e.Context().Input.ProcessKey(core.KEY_ESCAPE, true)
		return nil
	}
	require.NoError(t, e.PushLayer(l))

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 1, l.ticks)
}

func TestRunStopsWhenContextIsCancelled(t *testing.T) {
	e := newHeadlessEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	l := &recordingLayer{name: "game"}
	l.onTick = func(n int) error {
		if n == 3 {
			cancel()
		}
		return nil
	}
	require.NoError(t, e.PushLayer(l))

	require.NoError(t, e.Run(ctx))
	assert.Equal(t, 3, l.ticks)
}

func TestTickErrorStopsRun(t *testing.T) {
	e := newHeadlessEngine(t)
	boom := errors.New("boom")
	l := &recordingLayer{name: "game", onTick: func(int) error { return boom }}
	require.NoError(t, e.PushLayer(l))

	err := e.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "layer 'game'")
	assert.Zero(t, l.renders)
}

func TestMinimizedWindowSuspendsFrames(t *testing.T) {
	e := newHeadlessEngine(t)
	l := &recordingLayer{name: "game"}
	require.NoError(t, e.PushLayer(l))
	events := e.Context().Events

	events.Fire(core.EventContext{Type: core.EVENT_CODE_RESIZED, Data: &core.SystemEvent{}})
	require.NoError(t, e.RunFrames(2))
	assert.Zero(t, l.ticks)

	events.Fire(core.EventContext{Type: core.EVENT_CODE_RESIZED, Data: &core.SystemEvent{WindowWidth: 640, WindowHeight: 480}})
	require.NoError(t, e.RunFrames(1))
	assert.Equal(t, 1, l.ticks)
	w, h := e.Context().Renderer.MainTarget().Size()
	assert.EqualValues(t, 640, w)
	assert.EqualValues(t, 480, h)
}

func TestUnsupportedBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Renderer.Backend = "opengl"
	cfg.Assets.BasePath = t.TempDir()

	_, err := NewContext(cfg, nil)
	assert.ErrorIs(t, err, core.ErrUnsupportedBackend)
}

func TestSystemLayerRunsManagers(t *testing.T) {
	e := newHeadlessEngine(t)
	ctx := e.Context()

	sm := systems.NewSystemManager("hud")
	profile := systems.NewProfileSystem(ctx.Renderer, ctx.Metrics)
	_, err := sm.AddSystem(profile)
	require.NoError(t, err)

	layer := NewSystemLayer("hud", sm)
	require.NoError(t, e.PushOverlay(layer))
	assert.True(t, sm.Active())

	require.NoError(t, e.RunFrames(2))
	assert.Len(t, profile.History(), 2)
	assert.Contains(t, profile.Overlay(), "fps")

	require.NoError(t, e.Shutdown())
	assert.Equal(t, 0, sm.Len())
	assert.False(t, sm.Active())
	assert.Equal(t, EngineStageShutdown, e.Stage())
}
