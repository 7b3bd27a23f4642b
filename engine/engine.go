package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/spaghettifunk/sdengine/engine/config"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released every subsystem
	EngineStageShutdown
)

// Window is the platform window the engine pumps once per frame.
type Window interface {
	metadata.WindowSurface
	Startup(app config.Application, input *core.Input, events *core.EventBus) error
	PumpMessages() bool
	Shutdown() error
}

type Option func(*Engine)

// WithWindow attaches a platform window. Without one the engine runs
// headless until stopped.
func WithWindow(w Window) Option {
	return func(e *Engine) {
		e.window = w
	}
}

// WithClock replaces the wall clock, e.g. to drive frames with a fixed step.
func WithClock(c *core.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

type Engine struct {
	currentStage Stage
	ctx          *Context
	layers       *LayerStack
	window       Window
	isRunning    bool
	isSuspended  bool
	clock        *core.Clock
	lastTime     float64
	logger       *log.Logger
}

func New(ctx *Context, opts ...Option) *Engine {
	e := &Engine{
		currentStage: EngineStageUninitialized,
		ctx:          ctx,
		layers:       NewLayerStack(),
		clock:        core.NewClock(),
		logger:       core.Logger().WithPrefix("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Context() *Context {
	return e.ctx
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	cfg := e.ctx.Config

	e.ctx.Events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onQuit)
	e.ctx.Events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.ctx.Events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	if e.window != nil {
		if err := e.window.Startup(cfg.Application, e.ctx.Input, e.ctx.Events); err != nil {
			return err
		}
	}
	if err := e.ctx.Renderer.Initialize(cfg.Application.Name); err != nil {
		return err
	}
	if cfg.Assets.HotReload {
		if err := e.ctx.Assets.Watch("."); err != nil {
			e.logger.Warn("asset hot reload disabled", "err", err)
		}
	}

	e.currentStage = EngineStageInitialized
	e.logger.Info("engine initialized", "renderer", e.ctx.Renderer.Type(), "assets", e.ctx.Assets.BasePath())
	return nil
}

// PushLayer attaches l and runs it after the layers already pushed.
func (e *Engine) PushLayer(l Layer) error {
	if err := l.OnAttach(e.ctx); err != nil {
		return fmt.Errorf("failed to attach layer '%s': %w", l.Name(), err)
	}
	e.layers.Push(l)
	return nil
}

// PushOverlay attaches l and runs it after every regular layer.
func (e *Engine) PushOverlay(l Layer) error {
	if err := l.OnAttach(e.ctx); err != nil {
		return fmt.Errorf("failed to attach overlay '%s': %w", l.Name(), err)
	}
	e.layers.PushOverlay(l)
	return nil
}

func (e *Engine) PopLayer(l Layer) bool {
	return e.layers.Pop(l)
}

func (e *Engine) Layers() *LayerStack {
	return e.layers
}

// Run drives frames until the window closes, a quit event is fired, a
// frame fails or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.start()
	for e.isRunning {
		if err := ctx.Err(); err != nil {
			e.isRunning = false
			break
		}
		if err := e.frame(); err != nil {
			e.isRunning = false
			return err
		}
	}
	return nil
}

// RunFrames drives at most n frames and stops early like Run does.
func (e *Engine) RunFrames(n int) error {
	e.start()
	for i := 0; i < n && e.isRunning; i++ {
		if err := e.frame(); err != nil {
			e.isRunning = false
			return err
		}
	}
	return nil
}

// Stop ends Run after the current frame.
func (e *Engine) Stop() {
	e.isRunning = false
}

func (e *Engine) start() {
	if e.currentStage == EngineStageRunning {
		return
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()
}

func (e *Engine) frame() error {
	if e.window != nil && !e.window.PumpMessages() {
		e.isRunning = false
		return nil
	}
	if e.isSuspended {
		return nil
	}

	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime

	e.ctx.Assets.ProcessChanges()

	if err := e.layers.Tick(delta); err != nil {
		e.logger.Error("update failed, shutting down", "err", err)
		return err
	}

	r := e.ctx.Renderer
	if err := r.BeginFrame(delta); err != nil {
		e.logger.Error("failed to begin frame", "err", err)
		return err
	}
	renderErr := e.layers.Render()
	if renderErr == nil {
		e.layers.ImGui()
	}
	if err := r.EndFrame(delta); err != nil {
		return errors.Join(renderErr, err)
	}
	if renderErr != nil {
		e.logger.Error("render failed, shutting down", "err", renderErr)
		return renderErr
	}

	e.ctx.Metrics.Update(delta)
	// NOTE: input state is copied last so that everything recorded during
	// this frame is visible as "previous" in the next one.
	e.ctx.Input.Update(delta)
	e.lastTime = currentTime
	return nil
}

// Shutdown detaches every layer and releases assets before the renderer,
// then closes the window.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	e.layers.Clear()

	var errs []error
	errs = append(errs, e.ctx.Assets.Shutdown())
	errs = append(errs, e.ctx.Renderer.Shutdown())
	errs = append(errs, e.ctx.Events.Shutdown())
	if e.window != nil {
		errs = append(errs, e.window.Shutdown())
	}
	e.currentStage = EngineStageShutdown
	return errors.Join(errs...)
}

func (e *Engine) onQuit(evt core.EventContext) bool {
	e.logger.Info("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
	e.isRunning = false
	return true
}

func (e *Engine) onKey(evt core.EventContext) bool {
	ke, ok := evt.Data.(*core.KeyEvent)
	if !ok {
		e.logger.Error("wrong event data", "code", evt.Type)
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.ctx.Events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		return true
	}
	return false
}

func (e *Engine) onResized(evt core.EventContext) bool {
	se, ok := evt.Data.(*core.SystemEvent)
	if !ok {
		e.logger.Error("wrong event data", "code", evt.Type)
		return false
	}
	width, height := se.WindowWidth, se.WindowHeight
	if width == 0 || height == 0 {
		e.logger.Info("Window minimized, suspending application.")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		e.logger.Info("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.logger.Debug("window resized", "width", width, "height", height)
	if err := e.ctx.Renderer.OnResize(width, height); err != nil {
		e.logger.Error("renderer resize failed", "err", err)
	}
	return false
}
