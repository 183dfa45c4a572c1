// Package input turns SDL2 events into viewer input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies what an Event carries.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventResize
	EventKeyDown
	EventDrag
	EventWheel
)

// Event is the subset of SDL input the viewer reacts to.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	DX     int // relative motion for EventDrag, wheel steps for EventWheel
	DY     int
	Held   bool // left button held during a drag
}

// Input polls SDL once per frame.
type Input struct {
	events []Event
}

func New() *Input {
	return &Input{events: make([]Event, 0, 16)}
}

// Update drains the SDL queue. It reports true once the window was closed.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	for raw := sdl.PollEvent(); raw != nil; raw = sdl.PollEvent() {
		ev, ok := Translate(raw)
		if !ok {
			continue
		}
		i.events = append(i.events, ev)
		if ev.Type == EventQuit {
			return true
		}
	}
	return false
}

// Events returns the events collected by the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Translate maps one SDL event. Events the viewer ignores report false.
func Translate(raw sdl.Event) (Event, bool) {
	switch e := raw.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true
	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED {
			return Event{Type: EventResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}
	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
			return Event{Type: EventKeyDown, Key: e.Keysym.Scancode}, true
		}
	case *sdl.MouseMotionEvent:
		return Event{
			Type: EventDrag,
			DX:   int(e.XRel),
			DY:   int(e.YRel),
			Held: e.State&sdl.ButtonLMask() != 0,
		}, true
	case *sdl.MouseWheelEvent:
		return Event{Type: EventWheel, DX: int(e.X), DY: int(e.Y)}, true
	}
	return Event{}, false
}
