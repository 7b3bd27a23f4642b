package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key codes follow the virtual-key numbering used by the platform layer.
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_SHIFT     KeyCode = 0x10
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_A         KeyCode = 0x41
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_W         KeyCode = 0x57
	KEY_F1        KeyCode = 0x70
	KEY_F5        KeyCode = 0x74
	KEYS_MAX_KEYS KeyCode = 0x100
)

type MouseState struct {
	X       uint16
	Y       uint16
	Buttons [BUTTON_MAX_BUTTONS]bool
}

type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// Input holds the current and previous keyboard/mouse state. State changes
// are forwarded to the event bus as they happen.
type Input struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState

	events *EventBus
}

func NewInput(events *EventBus) *Input {
	return &Input{events: events}
}

// Update copies the current state into the previous one. Call once at the
// very end of a frame.
func (in *Input) Update(deltaTime float64) {
	in.KeyboardPrevious = in.KeyboardCurrent
	in.MousePrevious = in.MouseCurrent
}

func (in *Input) IsKeyDown(key KeyCode) bool {
	return key < KEYS_MAX_KEYS && in.KeyboardCurrent.Keys[key]
}

func (in *Input) IsKeyUp(key KeyCode) bool {
	return !in.IsKeyDown(key)
}

func (in *Input) WasKeyDown(key KeyCode) bool {
	return key < KEYS_MAX_KEYS && in.KeyboardPrevious.Keys[key]
}

func (in *Input) ProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS || in.KeyboardCurrent.Keys[key] == pressed {
		return
	}
	in.KeyboardCurrent.Keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	in.fire(code, &KeyEvent{KeyCode: key})
}

func (in *Input) IsButtonDown(button Button) bool {
	return button < BUTTON_MAX_BUTTONS && in.MouseCurrent.Buttons[button]
}

func (in *Input) WasButtonDown(button Button) bool {
	return button < BUTTON_MAX_BUTTONS && in.MousePrevious.Buttons[button]
}

func (in *Input) MousePosition() (int32, int32) {
	return int32(in.MouseCurrent.X), int32(in.MouseCurrent.Y)
}

func (in *Input) PreviousMousePosition() (int32, int32) {
	return int32(in.MousePrevious.X), int32(in.MousePrevious.Y)
}

func (in *Input) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS || in.MouseCurrent.Buttons[button] == pressed {
		return
	}
	in.MouseCurrent.Buttons[button] = pressed

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	in.fire(code, &MouseEvent{Button: button})
}

func (in *Input) ProcessMouseMove(x, y uint16) {
	if in.MouseCurrent.X == x && in.MouseCurrent.Y == y {
		return
	}
	in.MouseCurrent.X = x
	in.MouseCurrent.Y = y
	in.fire(EVENT_CODE_MOUSE_MOVED, &MouseEvent{PosX: x, PosY: y})
}

func (in *Input) ProcessMouseWheel(zDelta int8) {
	in.fire(EVENT_CODE_MOUSE_WHEEL, &MouseEvent{Scroll: zDelta})
}

func (in *Input) fire(code EventCode, data interface{}) {
	if in.events == nil {
		return
	}
	in.events.Fire(EventContext{Type: code, Data: data})
}
