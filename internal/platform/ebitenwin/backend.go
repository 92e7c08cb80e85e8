// Package ebitenwin is the ebiten-backed window. ebiten owns the OS window
// and the event loop; this package adapts it to platform.Window.
package ebitenwin

import (
	"image"
	"image/draw"

	"sketches/internal/platform"
	"sketches/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type Backend struct{}

func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "ebiten" }

// CreateWindow configures the ebiten window. Full-screen windows take the
// primary monitor's size.
func (b *Backend) CreateWindow(cfg platform.WindowConfig) (platform.Window, error) {
	w := &Window{title: cfg.Title, w: cfg.WidthPx, h: cfg.HeightPx}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	if cfg.Fullscreen {
		w.w, w.h = MonitorSize()
		ebiten.SetFullscreen(true)
	} else {
		ebiten.SetWindowSize(cfg.WidthPx, cfg.HeightPx)
	}
	return w, nil
}

// MonitorSize reports the primary display size in device-independent pixels.
func MonitorSize() (int, int) {
	return ebiten.Monitor().Size()
}

type Window struct {
	title  string
	w      int
	h      int
	closed bool

	canvas  *ebiten.Image
	scratch *image.RGBA
	keys    []ebiten.Key
	events  []platform.Event

	layoutW int
	layoutH int
}

func (w *Window) PollEvents() []platform.Event {
	w.events = w.events[:0]
	if w.closed || ebiten.IsWindowBeingClosed() {
		w.events = append(w.events, platform.Event{Type: platform.EventClose})
	}
	w.keys = inpututil.AppendJustPressedKeys(w.keys[:0])
	for _, k := range w.keys {
		w.events = append(w.events, platform.Event{Type: platform.EventKeyDown, Key: k.String()})
	}
	w.keys = inpututil.AppendJustReleasedKeys(w.keys[:0])
	for _, k := range w.keys {
		w.events = append(w.events, platform.Event{Type: platform.EventKeyUp, Key: k.String()})
	}
	if ev, ok := resizeEvent(w.w, w.h, w.layoutW, w.layoutH); ok {
		w.w, w.h = ev.Width, ev.Height
		w.events = append(w.events, ev)
	}
	return w.events
}

// resizeEvent compares the current surface size with the last layout size.
// A zero layout means ebiten has not laid out the window yet.
func resizeEvent(curW, curH, layoutW, layoutH int) (platform.Event, bool) {
	if layoutW <= 0 || layoutH <= 0 || (layoutW == curW && layoutH == curH) {
		return platform.Event{}, false
	}
	return platform.Event{Type: platform.EventResize, Width: layoutW, Height: layoutH}, true
}

// Layout records the outside size ebiten reports; the next poll emits a
// resize event if it changed.
func (w *Window) Layout(outsideWidth, outsideHeight int) {
	w.layoutW, w.layoutH = outsideWidth, outsideHeight
}

func (w *Window) SizePx() (int, int) { return w.w, w.h }

func (w *Window) Scale() float32 {
	return float32(ebiten.Monitor().DeviceScaleFactor())
}

func (w *Window) Title() string { return w.title }

func (w *Window) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

func (w *Window) ensureCanvas(width, height int) {
	if w.canvas != nil {
		b := w.canvas.Bounds()
		if b.Dx() == width && b.Dy() == height {
			return
		}
		w.canvas.Deallocate()
	}
	w.canvas = ebiten.NewImage(width, height)
}

// Present uploads a software back buffer; Blit shows it.
func (w *Window) Present(fb *render.FrameBuffer) error {
	w.ensureCanvas(fb.W, fb.H)
	w.canvas.WritePixels(fb.Pixels)
	return nil
}

func (w *Window) PresentImage(img image.Image) error {
	b := img.Bounds()
	w.ensureCanvas(b.Dx(), b.Dy())
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*b.Dx() && b.Min == (image.Point{}) {
		w.canvas.WritePixels(rgba.Pix)
		return nil
	}
	if w.scratch == nil || w.scratch.Rect.Dx() != b.Dx() || w.scratch.Rect.Dy() != b.Dy() {
		w.scratch = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Draw(w.scratch, w.scratch.Rect, img, b.Min, draw.Src)
	w.canvas.WritePixels(w.scratch.Pix)
	return nil
}

// Blit draws the last presented canvas onto the screen.
func (w *Window) Blit(screen *ebiten.Image) {
	if w.canvas == nil {
		return
	}
	screen.DrawImage(w.canvas, nil)
}

func (w *Window) Close() {
	w.closed = true
	if w.canvas != nil {
		w.canvas.Deallocate()
		w.canvas = nil
	}
}
