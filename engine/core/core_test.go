package core

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathIDIsStable(t *testing.T) {
	a := NewPathID("/assets/textures/crate.png")
	b := NewPathID("/assets/textures/crate.png")
	c := NewPathID("/assets/textures/crate2.png")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, a.IsValid())
}

func TestNewRandomIDIsUnique(t *testing.T) {
	seen := make(map[ResourceID]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewRandomID()
		require.True(t, id.IsValid())
		_, dup := seen[id]
		require.False(t, dup, "random id repeated: %s", id)
		seen[id] = struct{}{}
	}
}

func TestResourceIDString(t *testing.T) {
	assert.Equal(t, "00000000000000ff", ResourceID(0xff).String())
}

func TestLoadErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("bad header")
	err := fmt.Errorf("wrapped: %w", &LoadError{Kind: "image", Path: "/a.png", Err: cause})

	assert.ErrorIs(t, err, ErrLoadFailure)
	assert.ErrorIs(t, err, cause)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "/a.png", le.Path)
}

func TestEventBusDispatchOrderAndHandled(t *testing.T) {
	bus := NewEventBus()
	var calls []string

	first := "first"
	second := "second"
	require.True(t, bus.Register(EVENT_CODE_RESIZED, first, func(EventContext) bool {
		calls = append(calls, first)
		return false
	}))
	require.True(t, bus.Register(EVENT_CODE_RESIZED, second, func(EventContext) bool {
		calls = append(calls, second)
		return true
	}))
	assert.False(t, bus.Register(EVENT_CODE_RESIZED, first, func(EventContext) bool { return false }))

	handled := bus.Fire(EventContext{Type: EVENT_CODE_RESIZED})
	assert.True(t, handled)
	assert.Equal(t, []string{"first", "second"}, calls)

	assert.True(t, bus.Unregister(EVENT_CODE_RESIZED, second))
	assert.False(t, bus.Unregister(EVENT_CODE_RESIZED, second))
	assert.False(t, bus.Fire(EventContext{Type: EVENT_CODE_RESIZED}))
}

func TestInputFiresOnlyOnChange(t *testing.T) {
	bus := NewEventBus()
	pressed := 0
	bus.Register(EVENT_CODE_KEY_PRESSED, "test", func(ctx EventContext) bool {
		ke := ctx.Data.(*KeyEvent)
		assert.Equal(t, KEY_W, ke.KeyCode)
		pressed++
		return false
	})

	in := NewInput(bus)
	in.ProcessKey(KEY_W, true)
	in.ProcessKey(KEY_W, true)
	assert.Equal(t, 1, pressed)
	assert.True(t, in.IsKeyDown(KEY_W))
	assert.False(t, in.WasKeyDown(KEY_W))

	in.Update(0)
	assert.True(t, in.WasKeyDown(KEY_W))
}

func TestFrameMetricsFPS(t *testing.T) {
	m := NewFrameMetrics()
	for i := 0; i < 61; i++ {
		m.Update(1.0 / 60.0)
	}
	assert.InDelta(t, 60, m.FPS(), 1)
	assert.InDelta(t, 1000.0/60.0, m.FrameTime(), 0.01)
	assert.Equal(t, uint64(61), m.TotalFrames())
}

func TestClockWithSource(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewClockWithSource(func() time.Time { return now })
	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	now = now.Add(1500 * time.Millisecond)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)

	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("nonsense"))
}

func TestScopedLoggerReportsItsCaller(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)
	SetLogLevel(LogLevelDebug)

	Logger().WithPrefix("scoped").Info("from child")
	LogInfo("from helper")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "core_test.go")
	assert.Contains(t, lines[0], "from child")
	assert.Contains(t, lines[1], "core_test.go")
	assert.Contains(t, lines[1], "from helper")
}
