// Package input polls SDL2 events into a per-frame queue and exposes
// held-key state for continuous movement.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseLook
	EventMouseDown
	EventMouseUp
)

// Event is one processed input event. MouseLook events carry relative
// motion; button events carry absolute coordinates.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int32
	Height int32
	XRel   int32
	YRel   int32
	MouseX int32
	MouseY int32
	Button uint8
}

// Input drains the SDL event queue once per frame.
type Input struct {
	events   []Event
	keyState []uint8
}

// New creates the input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls pending SDL events. Returns true when the application
// should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  e.Data1,
					Height: e.Data2,
				})
			}

		case *sdl.KeyboardEvent:
			t := EventKeyDown
			if e.Type == sdl.KEYUP {
				t = EventKeyUp
			}
			if e.Repeat == 0 {
				i.events = append(i.events, Event{Type: t, Key: e.Keysym.Scancode})
			}

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type: EventMouseLook,
				XRel: e.XRel,
				YRel: e.YRel,
			})

		case *sdl.MouseButtonEvent:
			t := EventMouseDown
			if e.Type == sdl.MOUSEBUTTONUP {
				t = EventMouseUp
			}
			i.events = append(i.events, Event{
				Type:   t,
				MouseX: e.X,
				MouseY: e.Y,
				Button: e.Button,
			})
		}
	}

	i.keyState = sdl.GetKeyboardState()
	return quit
}

// Events returns the events drained by the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed reports a key-down edge this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// IsKeyHeld reports whether a key is currently down, for continuous
// actions like camera movement.
func (i *Input) IsKeyHeld(scancode sdl.Scancode) bool {
	if int(scancode) >= len(i.keyState) {
		return false
	}
	return i.keyState[scancode] != 0
}
