package platform

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/sdengine/engine/core"
)

// translateKey maps a glfw key to the engine's virtual-key codes. Letters,
// digits and space share their ASCII value in both.
func translateKey(key glfw.Key) (core.KeyCode, bool) {
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ,
		key >= glfw.Key0 && key <= glfw.Key9,
		key == glfw.KeySpace:
		return core.KeyCode(key), true
	case key >= glfw.KeyF1 && key <= glfw.KeyF12:
		return core.KEY_F1 + core.KeyCode(key-glfw.KeyF1), true
	}
	switch key {
	case glfw.KeyEscape:
		return core.KEY_ESCAPE, true
	case glfw.KeyEnter:
		return core.KEY_ENTER, true
	case glfw.KeyTab:
		return core.KEY_TAB, true
	case glfw.KeyBackspace:
		return core.KEY_BACKSPACE, true
	case glfw.KeyLeftShift, glfw.KeyRightShift:
		return core.KEY_SHIFT, true
	case glfw.KeyLeft:
		return core.KEY_LEFT, true
	case glfw.KeyRight:
		return core.KEY_RIGHT, true
	case glfw.KeyUp:
		return core.KEY_UP, true
	case glfw.KeyDown:
		return core.KEY_DOWN, true
	}
	return 0, false
}
