package platform

import (
	"runtime"
	"time"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/sdengine/engine/config"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform owns the glfw window and translates its callbacks into input
// state changes and engine events.
type Platform struct {
	Window    *glfw.Window
	input     *core.Input
	events    *core.EventBus
	startTime float64
}

var _ metadata.WindowSurface = (*Platform)(nil)

func New() *Platform {
	return &Platform{}
}

// Startup opens the window. Input changes are written to input and window
// events are fired on events.
func (p *Platform) Startup(app config.Application, input *core.Input, events *core.EventBus) error {
	p.input = input
	p.events = events
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(app.Width), int(app.Height), app.Name, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetPos(int(app.PosX), int(app.PosY))
	p.Window.Show()

	p.startTime = glfw.GetTime()
	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. It returns false once the
// window was asked to close.
func (p *Platform) PumpMessages() bool {
	if p.Window == nil {
		return false
	}
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

// GetAbsoluteTime returns seconds since Startup.
func (p *Platform) GetAbsoluteTime() float64 {
	return glfw.GetTime() - p.startTime
}

func (p *Platform) Sleep(ms float64) {
	time.Sleep(time.Duration(ms * float64(time.Millisecond)))
}

func (p *Platform) GetRequiredExtensionNames() []string {
	if p.Window == nil {
		return nil
	}
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateSurface creates a Vulkan surface for the window. instance is the
// backend's VkInstance.
func (p *Platform) CreateSurface(instance interface{}) (uintptr, error) {
	return p.Window.CreateWindowSurface(instance, unsafe.Pointer(nil))
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code, ok := translateKey(key)
	if !ok || action == glfw.Repeat {
		return
	}
	p.input.ProcessKey(code, action == glfw.Press)
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		b = core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		b = core.BUTTON_MIDDLE
	default:
		return
	}
	p.input.ProcessButton(b, action == glfw.Press)
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	p.input.ProcessMouseMove(uint16(max(xpos, 0)), uint16(max(ypos, 0)))
}

func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	var z int8
	switch {
	case yoff > 0:
		z = 1
	case yoff < 0:
		z = -1
	}
	p.input.ProcessMouseWheel(z)
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.events.Fire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: uint32(width), WindowHeight: uint32(height)},
	})
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
}
