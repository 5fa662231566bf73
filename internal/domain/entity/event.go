package entity

// EventKind selects the DOM event constructor used when dispatching.
type EventKind string

const (
	EventPlain    EventKind = "event"
	EventInput    EventKind = "input"
	EventKeyboard EventKind = "keyboard"
	EventPointer  EventKind = "pointer"
	EventMouse    EventKind = "mouse"
)

// DOMEvent is a synthetic event to be fired on an element in the page.
type DOMEvent struct {
	Kind       EventKind `json:"kind"`
	Type       string    `json:"type"`
	Bubbles    bool      `json:"bubbles"`
	Cancelable bool      `json:"cancelable"`

	InputType string  `json:"inputType,omitempty"`
	Data      *string `json:"data,omitempty"`

	Key     string `json:"key,omitempty"`
	Code    string `json:"code,omitempty"`
	KeyCode int    `json:"keyCode,omitempty"`
	Ctrl    bool   `json:"ctrlKey,omitempty"`
	Meta    bool   `json:"metaKey,omitempty"`

	X       float64 `json:"clientX,omitempty"`
	Y       float64 `json:"clientY,omitempty"`
	Buttons int     `json:"buttons,omitempty"`
}

func InputEvent(typ, inputType string, data *string) DOMEvent {
	return DOMEvent{
		Kind:       EventInput,
		Type:       typ,
		Bubbles:    true,
		Cancelable: typ == "beforeinput",
		InputType:  inputType,
		Data:       data,
	}
}

func PlainEvent(typ string, cancelable bool) DOMEvent {
	return DOMEvent{Kind: EventPlain, Type: typ, Bubbles: true, Cancelable: cancelable}
}

func EnterKey(typ string, ctrl, meta bool) DOMEvent {
	return DOMEvent{
		Kind:       EventKeyboard,
		Type:       typ,
		Bubbles:    true,
		Cancelable: true,
		Key:        "Enter",
		Code:       "Enter",
		KeyCode:    13,
		Ctrl:       ctrl,
		Meta:       meta,
	}
}

func PointerAt(kind EventKind, typ string, x, y float64, buttons int) DOMEvent {
	return DOMEvent{
		Kind:       kind,
		Type:       typ,
		Bubbles:    true,
		Cancelable: true,
		X:          x,
		Y:          y,
		Buttons:    buttons,
	}
}
