package core

const AVG_COUNT uint8 = 30

// FrameMetrics keeps a rolling frame-time average and a frames-per-second
// counter. Owned by the engine context and fed once per frame.
type FrameMetrics struct {
	frameAVGCounter    uint8
	msTimes            [AVG_COUNT]float64
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
	totalFrames        uint64
}

func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{}
}

// Update records one frame that took frameElapsedTime seconds.
func (m *FrameMetrics) Update(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0
	m.msTimes[m.frameAVGCounter] = frameMS
	if m.frameAVGCounter == AVG_COUNT-1 {
		sum := 0.0
		for i := uint8(0); i < AVG_COUNT; i++ {
			sum += m.msTimes[i]
		}
		m.msAvg = sum / float64(AVG_COUNT)
	}
	m.frameAVGCounter++
	m.frameAVGCounter %= AVG_COUNT

	m.accumulatedFrameMS += frameMS
	m.frames++
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}
	m.totalFrames++
}

func (m *FrameMetrics) FPS() float64 {
	return m.fps
}

// FrameTime is the average frame time in milliseconds over the last
// AVG_COUNT frames.
func (m *FrameMetrics) FrameTime() float64 {
	return m.msAvg
}

func (m *FrameMetrics) Frame() (float64, float64) {
	return m.fps, m.msAvg
}

func (m *FrameMetrics) TotalFrames() uint64 {
	return m.totalFrames
}
