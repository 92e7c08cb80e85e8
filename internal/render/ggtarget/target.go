// Package ggtarget draws frames into an offscreen gogpu/gg context.
package ggtarget

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"sketches/internal/render"

	"github.com/gogpu/gg"
)

// Presenter shows a finished offscreen image.
type Presenter interface {
	PresentImage(img image.Image) error
}

type Target struct {
	dc        *gg.Context
	presenter Presenter
	inFrame   bool
	err       error
}

func New(w, h int) *Target {
	return &Target{dc: gg.NewContext(w, h)}
}

func (t *Target) SetPresenter(p Presenter) {
	t.presenter = p
}

func (t *Target) Size() (int, int) {
	return t.dc.Width(), t.dc.Height()
}

// Resize recreates the surface for a new resolution.
func (t *Target) Resize(w, h int) error {
	if w == t.dc.Width() && h == t.dc.Height() {
		return nil
	}
	if err := t.dc.Resize(w, h); err != nil {
		return fmt.Errorf("resize gg context to %dx%d: %w", w, h, err)
	}
	return nil
}

func (t *Target) BeginFrame() error {
	t.inFrame = true
	t.err = nil
	return nil
}

func (t *Target) Clear(c color.Color) {
	t.dc.ResetClip()
	t.dc.ClearWithColor(toRGBA(c))
}

func (t *Target) SetClip(r image.Rectangle) {
	t.dc.ClipRect(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
}

func (t *Target) ResetClip() {
	t.dc.ResetClip()
}

func (t *Target) FillCircle(cx, cy, r float32, c color.Color) {
	t.FillEllipse(cx, cy, r, r, c)
}

func (t *Target) FillEllipse(cx, cy, rx, ry float32, c color.Color) {
	setColor(t.dc, c)
	if rx == ry {
		t.dc.DrawCircle(float64(cx), float64(cy), float64(rx))
	} else {
		t.dc.DrawEllipse(float64(cx), float64(cy), float64(rx), float64(ry))
	}
	t.keep("fill", t.dc.Fill())
}

func (t *Target) StrokeCircle(cx, cy, r, width float32, c color.Color) {
	setColor(t.dc, c)
	t.dc.SetLineWidth(float64(width))
	t.dc.DrawCircle(float64(cx), float64(cy), float64(r))
	t.keep("stroke", t.dc.Stroke())
}

func (t *Target) keep(op string, err error) {
	if err != nil && t.err == nil {
		t.err = fmt.Errorf("gg %s: %w", op, err)
	}
}

func (t *Target) EndFrame() error {
	if !t.inFrame {
		return render.ErrFrameState
	}
	t.inFrame = false
	if err := t.dc.FlushGPU(); err != nil {
		t.keep("flush", err)
	}
	return t.err
}

func (t *Target) Present() error {
	if t.presenter == nil {
		return nil
	}
	return t.presenter.PresentImage(t.dc.Image())
}

func (t *Target) Image() image.Image {
	return t.dc.Image()
}

func (t *Target) EncodePNG(w io.Writer) error {
	return t.dc.EncodePNG(w)
}

func (t *Target) Close() error {
	return t.dc.Close()
}

func setColor(dc *gg.Context, c color.Color) {
	v := toRGBA(c)
	dc.SetRGBA(v.R, v.G, v.B, v.A)
}

// toRGBA converts to gg's straight-alpha float color.
func toRGBA(c color.Color) gg.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return gg.RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}
