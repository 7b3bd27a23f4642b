package core

import "sync"

// System internal event codes. Application should use codes beyond 255.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01
	// Keyboard key pressed. Data: *KeyEvent
	EVENT_CODE_KEY_PRESSED EventCode = 0x02
	// Keyboard key released. Data: *KeyEvent
	EVENT_CODE_KEY_RELEASED EventCode = 0x03
	// Mouse button pressed. Data: *MouseEvent
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04
	// Mouse button released. Data: *MouseEvent
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05
	// Mouse moved. Data: *MouseEvent
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06
	// Mouse wheel. Data: *MouseEvent
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07
	// Resized/resolution changed from the OS. Data: *SystemEvent
	EVENT_CODE_RESIZED EventCode = 0x08
	// A cached asset changed on disk and was evicted. Data: AssetEvent
	EVENT_CODE_ASSET_CHANGED EventCode = 0x09
	// A system manager switched to a new scene. Data: SceneEvent
	EVENT_CODE_SCENE_CHANGED EventCode = 0x0A

	MAX_EVENT_CODE EventCode = 0xFF
)

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   uint16
	PosY   uint16
	Scroll int8
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type AssetEvent struct {
	ID   ResourceID
	Path string
}

type SceneEvent struct {
	Manager string
	Scene   string
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches events synchronously on the caller's goroutine. The
// registration table is guarded so the platform layer may register from its
// own callbacks.
type EventBus struct {
	mu         sync.RWMutex
	registered map[EventCode][]*registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[EventCode][]*registeredEvent),
	}
}

// Register to listen for when events are sent with the provided code. Events
// with duplicate listeners will not be registered again and will cause this
// to return false.
func (eb *EventBus) Register(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for _, e := range eb.registered[code] {
		if listener != nil && e.listener == listener {
			LogWarn("event code %d already has this listener registered", code)
			return false
		}
	}
	eb.registered[code] = append(eb.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// Unregister removes the listener from the given code. Returns false when no
// registration matched.
func (eb *EventBus) Unregister(code EventCode, listener interface{}) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	events := eb.registered[code]
	for i, e := range events {
		if e.listener == listener {
			eb.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// Fire sends the event to listeners of its code, in registration order. If a
// handler returns true the event is considered handled and is not passed on.
func (eb *EventBus) Fire(context EventContext) bool {
	eb.mu.RLock()
	events := make([]*registeredEvent, len(eb.registered[context.Type]))
	copy(events, eb.registered[context.Type])
	eb.mu.RUnlock()

	for _, e := range events {
		if e.callback(context) {
			return true
		}
	}
	return false
}

// Shutdown drops every registration.
func (eb *EventBus) Shutdown() error {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.registered = make(map[EventCode][]*registeredEvent)
	return nil
}
