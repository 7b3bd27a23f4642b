package testbed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/sdengine/engine"
	"github.com/spaghettifunk/sdengine/engine/config"
	"github.com/spaghettifunk/sdengine/engine/renderer"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

func TestTestGameRunsHeadless(t *testing.T) {
	cfg := config.Default()
	cfg.Renderer.Backend = "headless"
	cfg.Assets.BasePath = "../assets"

	ctx, err := engine.NewContext(cfg, nil)
	require.NoError(t, err)
	e := engine.New(ctx)
	require.NoError(t, e.Initialize())

	game := NewTestGame()
	require.NoError(t, e.PushLayer(game))
	require.NoError(t, e.RunFrames(3))

	backend := ctx.Renderer.Backend().(*renderer.Headless)
	count := map[metadata.DrawPass]int{}
	for _, d := range backend.Draws() {
		count[d.Cmd.Pass]++
	}
	assert.Equal(t, 3, count[metadata.DrawPassShadow])
	assert.Equal(t, 3, count[metadata.DrawPassWorld])
	assert.Equal(t, 1, count[metadata.DrawPassSkybox])
	assert.Equal(t, 1, count[metadata.DrawPassSprite])
	assert.Equal(t, 1, count[metadata.DrawPassOverlay])

	require.NoError(t, e.Shutdown())
	assert.Equal(t, engine.EngineStageShutdown, e.Stage())
	assert.Zero(t, ctx.Assets.Len())
}
