/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/sdengine/engine"
	"github.com/spaghettifunk/sdengine/engine/config"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/platform"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
	"github.com/spaghettifunk/sdengine/testbed"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the engine configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogFatal("%s", err)
	}
	core.SetLogLevel(core.ParseLogLevel(cfg.Log.Level))

	var opts []engine.Option
	var window *platform.Platform
	if cfg.RendererType() != metadata.RendererTypeHeadless {
		window = platform.New()
		opts = append(opts, engine.WithWindow(window))
	}

	// a nil *Platform must not reach the renderer as a non-nil surface
	var surface metadata.WindowSurface
	if window != nil {
		surface = window
	}
	ctx, err := engine.NewContext(cfg, surface)
	if errors.Is(err, core.ErrUnsupportedBackend) {
		core.LogFatal("renderer backend '%s' is not supported: %s", cfg.Renderer.Backend, err)
	}
	if err != nil {
		core.LogFatal("failed to create engine context: %s", err)
	}

	e := engine.New(ctx, opts...)
	if err := e.Initialize(); err != nil {
		core.LogFatal("failed to initialize engine: %s", err)
	}
	if err := e.PushLayer(testbed.NewTestGame()); err != nil {
		core.LogFatal("%s", err)
	}

	// stop on SIGTERM/SIGINT/SIGQUIT
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	runErr := e.Run(runCtx)
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		core.LogFatal("%s", runErr)
	}
}
