package systems

import (
	"fmt"

	"github.com/spaghettifunk/sdengine/engine/containers"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

/** @brief Number of frame times kept for the overlay. */
const ProfileHistorySize = 120

/**
 * @brief Keeps a short frame-time history and draws a one-line overlay with
 * the current frame rate. The engine feeds the FrameMetrics; this system
 * only reads them.
 */
type ProfileSystem struct {
	Base
	renderer Renderer
	metrics  *core.FrameMetrics
	history  *containers.RingQueue[float64]
	overlay  string
}

func NewProfileSystem(r Renderer, metrics *core.FrameMetrics) *ProfileSystem {
	return &ProfileSystem{
		Base:     NewBase("profile"),
		renderer: r,
		metrics:  metrics,
		history:  containers.NewRingQueue[float64](ProfileHistorySize),
	}
}

func (ps *ProfileSystem) OnTick(deltaTime float64) error {
	ps.history.Push(deltaTime * 1000)
	return nil
}

// History returns the recorded frame times in milliseconds, oldest first.
func (ps *ProfileSystem) History() []float64 {
	return ps.history.Values()
}

// Peak returns the slowest recorded frame time in milliseconds.
func (ps *ProfileSystem) Peak() float64 {
	peak := 0.0
	for _, ms := range ps.history.Values() {
		peak = max(peak, ms)
	}
	return peak
}

func (ps *ProfileSystem) Overlay() string {
	return ps.overlay
}

func (ps *ProfileSystem) OnImGui() {
	fps, avg := ps.metrics.Frame()
	ps.overlay = fmt.Sprintf("%.0f fps | %.2f ms avg | %.2f ms peak | frame %d", fps, avg, ps.Peak(), ps.metrics.TotalFrames())
	if ps.renderer == nil {
		return
	}
	if err := ps.renderer.MainTarget().Bind(); err != nil {
		core.LogError(err.Error())
		return
	}
	if err := ps.renderer.Draw(&metadata.DrawCommand{
		Pass:  metadata.DrawPassOverlay,
		Label: ps.overlay,
	}); err != nil {
		core.LogError(err.Error())
	}
}

func (ps *ProfileSystem) OnPop() {
	ps.history = containers.NewRingQueue[float64](ProfileHistorySize)
}
