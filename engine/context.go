package engine

import (
	"github.com/google/wire"

	"github.com/spaghettifunk/sdengine/engine/assets"
	"github.com/spaghettifunk/sdengine/engine/assets/loaders"
	"github.com/spaghettifunk/sdengine/engine/config"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/renderer"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

// Context owns every engine subsystem. Layers receive it on attach; nothing
// in the engine is reachable through package globals.
type Context struct {
	Config   *config.Config
	Events   *core.EventBus
	Input    *core.Input
	Metrics  *core.FrameMetrics
	Assets   *assets.Manager
	Renderer *renderer.Renderer
}

var ProviderSet = wire.NewSet(
	ProvideEvents,
	ProvideInput,
	ProvideMetrics,
	ProvideRenderer,
	ProvideAssets,
	wire.Struct(new(Context), "*"),
)

func ProvideEvents() *core.EventBus {
	return core.NewEventBus()
}

func ProvideInput(events *core.EventBus) *core.Input {
	return core.NewInput(events)
}

func ProvideMetrics() *core.FrameMetrics {
	return core.NewFrameMetrics()
}

// ProvideRenderer creates, but does not initialize, the configured backend.
// window may be nil for the headless backend.
func ProvideRenderer(cfg *config.Config, window metadata.WindowSurface) (*renderer.Renderer, error) {
	return renderer.New(renderer.Config{
		Type:    cfg.RendererType(),
		AppName: cfg.Application.Name,
		Width:   cfg.Application.Width,
		Height:  cfg.Application.Height,
		Window:  window,
	})
}

// ProvideAssets creates the asset manager with a loader for every built-in
// kind. GPU-backed loaders upload through r.
func ProvideAssets(cfg *config.Config, events *core.EventBus, r *renderer.Renderer) (*assets.Manager, error) {
	m, err := assets.NewManager(assets.ManagerConfig{BasePath: cfg.Assets.BasePath}, assets.WithEvents(events))
	if err != nil {
		return nil, err
	}
	if err := loaders.RegisterDefaults(m, r); err != nil {
		return nil, err
	}
	return m, nil
}
