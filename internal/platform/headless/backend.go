// Package headless provides a scripted window with no display. Events are
// queued by the caller and presents are recorded.
package headless

import (
	"image"
	"image/draw"

	"sketches/internal/platform"
	"sketches/internal/render"
)

type Backend struct{}

func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "headless" }

func (b *Backend) CreateWindow(cfg platform.WindowConfig) (platform.Window, error) {
	return NewWindow(cfg), nil
}

type Window struct {
	title  string
	w      int
	h      int
	scale  float32
	closed bool
	queue  []platform.Event

	Titles   []string
	Presents int
	Last     *image.RGBA
}

func NewWindow(cfg platform.WindowConfig) *Window {
	return &Window{
		title: cfg.Title,
		w:     cfg.WidthPx,
		h:     cfg.HeightPx,
		scale: 1.0,
	}
}

// Push queues events for the next PollEvents call.
func (w *Window) Push(events ...platform.Event) {
	w.queue = append(w.queue, events...)
}

func (w *Window) PollEvents() []platform.Event {
	out := w.queue
	w.queue = nil
	if w.closed {
		out = append(out, platform.Event{Type: platform.EventClose})
	}
	return out
}

func (w *Window) SizePx() (int, int) { return w.w, w.h }
func (w *Window) Scale() float32     { return w.scale }
func (w *Window) Title() string      { return w.title }

func (w *Window) SetTitle(title string) {
	w.title = title
	w.Titles = append(w.Titles, title)
}

// Resize changes the surface size and queues the matching event.
func (w *Window) Resize(width, height int) {
	w.w, w.h = width, height
	w.Push(platform.Event{Type: platform.EventResize, Width: width, Height: height})
}

func (w *Window) Present(fb *render.FrameBuffer) error {
	w.Presents++
	src := fb.Image()
	w.Last = image.NewRGBA(src.Rect)
	copy(w.Last.Pix, src.Pix)
	return nil
}

func (w *Window) PresentImage(img image.Image) error {
	w.Presents++
	w.Last = image.NewRGBA(img.Bounds())
	draw.Draw(w.Last, w.Last.Rect, img, img.Bounds().Min, draw.Src)
	return nil
}

func (w *Window) Close() { w.closed = true }
