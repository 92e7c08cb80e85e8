package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

var ErrFrameState = errors.New("frame not begun")

// kappa places cubic control points so four segments approximate a quarter
// circle each.
const kappa = 0.5522847498307936

// Presenter receives a finished back buffer.
type Presenter interface {
	Present(fb *FrameBuffer) error
}

// FrameBuffer is a software back buffer. Pixels are premultiplied RGBA, the
// layout expected by image.RGBA and ebiten's WritePixels.
type FrameBuffer struct {
	W      int
	H      int
	Pixels []uint8 // RGBA

	presenter Presenter
	clip      image.Rectangle
	inFrame   bool
	z         vector.Rasterizer
}

func NewFrameBuffer(w, h int) *FrameBuffer {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	fb := &FrameBuffer{W: w, H: h, Pixels: make([]uint8, w*h*4)}
	fb.clip = fb.bounds()
	fb.z.DrawOp = draw.Over
	return fb
}

// SetPresenter wires the buffer to the surface that shows it.
func (fb *FrameBuffer) SetPresenter(p Presenter) {
	fb.presenter = p
}

// Resize reallocates the pixel store when the resolution changes. Contents
// are discarded.
func (fb *FrameBuffer) Resize(w, h int) {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	if w == fb.W && h == fb.H {
		return
	}
	fb.W, fb.H = w, h
	fb.Pixels = make([]uint8, w*h*4)
	fb.clip = fb.bounds()
}

func (fb *FrameBuffer) bounds() image.Rectangle {
	return image.Rect(0, 0, fb.W, fb.H)
}

// Image returns a view over the pixel store. It aliases Pixels.
func (fb *FrameBuffer) Image() *image.RGBA {
	return &image.RGBA{Pix: fb.Pixels, Stride: fb.W * 4, Rect: fb.bounds()}
}

func (fb *FrameBuffer) BeginFrame() error {
	fb.inFrame = true
	return nil
}

func (fb *FrameBuffer) EndFrame() error {
	if !fb.inFrame {
		return ErrFrameState
	}
	fb.inFrame = false
	return nil
}

func (fb *FrameBuffer) Present() error {
	if fb.inFrame {
		return errors.New("present inside an open frame")
	}
	if fb.presenter == nil {
		return nil
	}
	return fb.presenter.Present(fb)
}

// Clear overwrites every pixel, ignoring the clip.
func (fb *FrameBuffer) Clear(c color.Color) {
	r, g, b, a := c.RGBA()
	px := [4]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
	for i := 0; i < len(fb.Pixels); i += 4 {
		copy(fb.Pixels[i:i+4], px[:])
	}
}

func (fb *FrameBuffer) SetClip(r image.Rectangle) {
	fb.clip = r.Intersect(fb.bounds())
}

func (fb *FrameBuffer) ResetClip() {
	fb.clip = fb.bounds()
}

func (fb *FrameBuffer) FillCircle(cx, cy, r float32, c color.Color) {
	fb.FillEllipse(cx, cy, r, r, c)
}

func (fb *FrameBuffer) FillEllipse(cx, cy, rx, ry float32, c color.Color) {
	if rx <= 0 || ry <= 0 {
		return
	}
	area, ok := fb.prepare(cx, cy, rx, ry)
	if !ok {
		return
	}
	ellipsePath(&fb.z, cx-float32(area.Min.X), cy-float32(area.Min.Y), rx, ry, false)
	fb.z.Draw(fb.Image(), area, image.NewUniform(c), image.Point{})
}

// StrokeCircle paints the ring between r-width/2 and r+width/2.
func (fb *FrameBuffer) StrokeCircle(cx, cy, r, width float32, c color.Color) {
	if r <= 0 || width <= 0 {
		return
	}
	outer := r + width/2
	inner := r - width/2
	area, ok := fb.prepare(cx, cy, outer, outer)
	if !ok {
		return
	}
	ox, oy := cx-float32(area.Min.X), cy-float32(area.Min.Y)
	ellipsePath(&fb.z, ox, oy, outer, outer, false)
	if inner > 0 {
		// Opposite winding cancels coverage inside the inner edge.
		ellipsePath(&fb.z, ox, oy, inner, inner, true)
	}
	fb.z.Draw(fb.Image(), area, image.NewUniform(c), image.Point{})
}

// prepare sizes the rasterizer to the shape's bounding box within the clip.
// Shapes with non-finite geometry are skipped.
func (fb *FrameBuffer) prepare(cx, cy, rx, ry float32) (image.Rectangle, bool) {
	minX, minY := float64(cx-rx), float64(cy-ry)
	maxX, maxY := float64(cx+rx), float64(cy+ry)
	for _, v := range [...]float64{minX, minY, maxX, maxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return image.Rectangle{}, false
		}
	}
	lo, hi := fb.clip.Min, fb.clip.Max
	box := image.Rect(
		int(math.Floor(clampTo(minX, lo.X-1, hi.X+1)))-1,
		int(math.Floor(clampTo(minY, lo.Y-1, hi.Y+1)))-1,
		int(math.Ceil(clampTo(maxX, lo.X-1, hi.X+1)))+1,
		int(math.Ceil(clampTo(maxY, lo.Y-1, hi.Y+1)))+1,
	).Intersect(fb.clip)
	if box.Empty() {
		return box, false
	}
	fb.z.Reset(box.Dx(), box.Dy())
	fb.z.DrawOp = draw.Over
	return box, true
}

func clampTo(v float64, lo, hi int) float64 {
	return math.Max(float64(lo), math.Min(float64(hi), v))
}

func ellipsePath(z *vector.Rasterizer, cx, cy, rx, ry float32, reverse bool) {
	ox, oy := rx*kappa, ry*kappa
	if !reverse {
		z.MoveTo(cx+rx, cy)
		z.CubeTo(cx+rx, cy+oy, cx+ox, cy+ry, cx, cy+ry)
		z.CubeTo(cx-ox, cy+ry, cx-rx, cy+oy, cx-rx, cy)
		z.CubeTo(cx-rx, cy-oy, cx-ox, cy-ry, cx, cy-ry)
		z.CubeTo(cx+ox, cy-ry, cx+rx, cy-oy, cx+rx, cy)
	} else {
		z.MoveTo(cx+rx, cy)
		z.CubeTo(cx+rx, cy-oy, cx+ox, cy-ry, cx, cy-ry)
		z.CubeTo(cx-ox, cy-ry, cx-rx, cy-oy, cx-rx, cy)
		z.CubeTo(cx-rx, cy+oy, cx-ox, cy+ry, cx, cy+ry)
		z.CubeTo(cx+ox, cy+ry, cx+rx, cy+oy, cx+rx, cy)
	}
	z.ClosePath()
}
