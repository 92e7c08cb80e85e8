package platform

import (
	"image"

	"sketches/internal/render"
)

type WindowConfig struct {
	Title      string
	WidthPx    int
	HeightPx   int
	Fullscreen bool
}

type EventType int

const (
	EventUnknown EventType = iota
	EventClose
	EventResize
	EventKeyDown
	EventKeyUp
)

func (t EventType) String() string {
	switch t {
	case EventClose:
		return "close"
	case EventResize:
		return "resize"
	case EventKeyDown:
		return "keydown"
	case EventKeyUp:
		return "keyup"
	default:
		return "unknown"
	}
}

type Event struct {
	Type   EventType
	Width  int
	Height int
	Key    string
}

// KeyEscape is the key name that ends the loop.
const KeyEscape = "Escape"

type Platform interface {
	Name() string
	CreateWindow(cfg WindowConfig) (Window, error)
}

type Window interface {
	PollEvents() []Event
	SizePx() (int, int)
	Scale() float32
	Present(fb *render.FrameBuffer) error
	PresentImage(img image.Image) error
	SetTitle(title string)
	Title() string
	Close()
}
