package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

func newHeadlessRenderer(t *testing.T) (*Renderer, *Headless) {
	t.Helper()
	r, err := New(Config{Type: metadata.RendererTypeHeadless, Width: 1280, Height: 720})
	require.NoError(t, err)
	require.NoError(t, r.Initialize("test"))
	return r, r.Backend().(*Headless)
}

func TestNewUnsupportedBackend(t *testing.T) {
	for _, rt := range []metadata.RendererType{metadata.RendererTypeOpenGL, metadata.RendererTypeDirectX, metadata.RendererTypeMetal} {
		_, err := New(Config{Type: rt})
		assert.ErrorIs(t, err, core.ErrUnsupportedBackend, rt.String())
	}
}

func TestNewVulkanRequiresWindow(t *testing.T) {
	_, err := New(Config{Type: metadata.RendererTypeVulkan})
	assert.Error(t, err)
}

func TestParseRendererType(t *testing.T) {
	rt, err := metadata.ParseRendererType("Vulkan")
	require.NoError(t, err)
	assert.Equal(t, metadata.RendererTypeVulkan, rt)

	_, err = metadata.ParseRendererType("software")
	assert.Error(t, err)
}

func TestDrawsAreRecordedAgainstBoundTarget(t *testing.T) {
	r, hl := newHeadlessRenderer(t)

	shadow, err := r.CreateFramebuffer(&metadata.RenderTargetDesc{Name: "shadow", Width: 512, Height: 512, DepthOnly: true})
	require.NoError(t, err)

	require.NoError(t, r.BeginFrame(0.016))
	require.NoError(t, shadow.Bind())
	require.NoError(t, r.Draw(&metadata.DrawCommand{Pass: metadata.DrawPassShadow}))
	require.NoError(t, r.MainTarget().Bind())
	require.NoError(t, r.Draw(&metadata.DrawCommand{Pass: metadata.DrawPassWorld}))
	require.NoError(t, r.EndFrame(0.016))

	draws := hl.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, shadow.Handle(), draws[0].Target)
	assert.Equal(t, metadata.InvalidGPUHandle, draws[1].Target)
	assert.Equal(t, uint64(1), r.FrameNumber())
}

func TestDrawOutsideFrameFails(t *testing.T) {
	r, _ := newHeadlessRenderer(t)
	assert.Error(t, r.Draw(&metadata.DrawCommand{}))
}

func TestTextureLayerValidation(t *testing.T) {
	r, _ := newHeadlessRenderer(t)

	_, err := r.CreateTexture(&metadata.TextureDesc{Name: "bad", Width: 2, Height: 2, ChannelCount: 4, Layers: [][]uint8{make([]uint8, 3)}})
	assert.Error(t, err)

	_, err = r.CreateTexture(&metadata.TextureDesc{Name: "cube", Width: 1, Height: 1, ChannelCount: 4, Cubemap: true, Layers: [][]uint8{make([]uint8, 4)}})
	assert.Error(t, err)

	h, err := r.CreateTexture(&metadata.TextureDesc{Name: "ok", Width: 1, Height: 1, ChannelCount: 4, Layers: [][]uint8{make([]uint8, 4)}})
	require.NoError(t, err)
	assert.True(t, h.IsValid())
	assert.Equal(t, 1, r.LiveResources())
}

func TestShutdownDestroysLeakedResourcesOnce(t *testing.T) {
	r, hl := newHeadlessRenderer(t)

	h, err := r.CreateShader(&metadata.ShaderDesc{Name: "s", Code: []uint32{0x07230203}})
	require.NoError(t, err)

	require.NoError(t, r.Shutdown())
	assert.Equal(t, 1, hl.DestroyCount(h))

	// late teardown from a straggling holder must not reach the backend
	require.NoError(t, r.Destroy(h))
	assert.Equal(t, 1, hl.DestroyCount(h))

	_, err = r.CreateBuffer(&metadata.BufferDesc{Name: "late"})
	assert.Error(t, err)
}

func TestDestroyUnknownHandle(t *testing.T) {
	r, _ := newHeadlessRenderer(t)
	assert.Error(t, r.Destroy(metadata.GPUHandle(42)))
}

func TestResizeUpdatesMainTarget(t *testing.T) {
	r, _ := newHeadlessRenderer(t)
	require.NoError(t, r.OnResize(800, 400))
	w, h := r.MainTarget().Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(400), h)
	assert.InDelta(t, 2.0, r.MainTarget().Aspect(), 1e-6)
}
